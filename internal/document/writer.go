// Package document renders selected files as one Markdown document.
//
// Each file becomes a section:
//
//	### path/relative/to/root
//
//	```go
//	<content>
//	```
//
// Sections are separated by a blank line, a "---" rule and another blank
// line. A file that cannot be read gets a placeholder body instead of
// aborting the document.
package document

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/hayeah/dircat/internal/metrics"
	"github.com/hayeah/dircat/internal/selection"
)

const (
	sectionSeparator  = "\n---\n\n"
	binaryPlaceholder = "[binary file omitted]"
)

// Writer writes Markdown documents for a list of selected files.
type Writer struct {
	Logger  *slog.Logger
	Metrics *metrics.OutputMetrics // optional; receives each rendered section
}

// NewWriter returns a Writer that logs read failures to logger.
func NewWriter(logger *slog.Logger, m *metrics.OutputMetrics) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{Logger: logger, Metrics: m}
}

// Write renders files, in the given order, to out. Only errors writing to
// out are returned.
func (dw *Writer) Write(out io.Writer, files []selection.SelectedFile) error {
	bw := bufio.NewWriter(out)
	var section strings.Builder

	for i, f := range files {
		section.Reset()
		dw.writeSection(&section, f)
		if i+1 < len(files) {
			section.WriteString(sectionSeparator)
		}

		if dw.Metrics != nil {
			dw.Metrics.Add(f.RelPath, section.String())
		}
		if _, err := bw.WriteString(section.String()); err != nil {
			return fmt.Errorf("failed to write section for %s: %w", f.RelPath, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (dw *Writer) writeSection(sb *strings.Builder, f selection.SelectedFile) {
	fmt.Fprintf(sb, "### %s\n\n", f.RelPath)
	fmt.Fprintf(sb, "```%s\n", LanguageHint(f.RelPath))

	content, err := os.ReadFile(f.Path)
	switch {
	case err != nil:
		dw.Logger.Warn("failed to read file", "path", f.RelPath, "error", err)
		fmt.Fprintf(sb, "[Error reading file: %v]\n", readErrorCause(err))
	case isBinary(content):
		dw.Logger.Debug("omitting binary file", "path", f.RelPath)
		sb.WriteString(binaryPlaceholder + "\n")
	default:
		sb.Write(content)
		if len(content) == 0 || content[len(content)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("```\n")
}

// readErrorCause drops the path from fs errors; the section header already
// names the file.
func readErrorCause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// WriteList writes the relative paths of files, one per line.
func WriteList(out io.Writer, files []selection.SelectedFile) error {
	bw := bufio.NewWriter(out)
	for _, f := range files {
		if _, err := fmt.Fprintln(bw, f.RelPath); err != nil {
			return err
		}
	}
	return bw.Flush()
}
