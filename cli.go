package dircat

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/atotto/clipboard"

	"github.com/hayeah/dircat/internal/document"
	"github.com/hayeah/dircat/internal/metrics"
	"github.com/hayeah/dircat/internal/selection"
	"github.com/hayeah/dircat/match"
)

// ErrNoIncludePatterns is returned when the include list is empty after
// splitting and trimming.
var ErrNoIncludePatterns = errors.New("no include patterns specified")

// Args defines the command-line arguments for dircat
type Args struct {
	Directory      string   `arg:"positional,required" help:"base directory to search in"`
	Patterns       string   `arg:"positional" help:"comma separated file patterns to include, e.g. '*.py,*.md'"`
	Exclude        []string `arg:"-e,--exclude,separate" help:"pattern to exclude (repeatable); matches names or paths relative to the directory"`
	Output         string   `arg:"-o,--output" help:"write the document to this file instead of stdout"`
	Clipboard      bool     `arg:"-c,--clipboard" help:"copy the document to the clipboard (stdout is skipped unless --output is set)"`
	GitIgnore      bool     `arg:"--gitignore" help:"also skip paths ignored by .gitignore files"`
	List           bool     `arg:"-l,--list" help:"print the selected paths instead of the document"`
	Stats          bool     `arg:"--stats" help:"print a token breakdown to stderr"`
	TokenEstimator string   `arg:"--token-estimator,env:DIRCAT_TOKEN_ESTIMATOR" default:"simple" help:"token estimator for --stats: simple or tiktoken"`
	Config         string   `arg:"--config,env:DIRCAT_CONFIG" help:"config file (default: <directory>/.dircat.toml)"`
	Verbose        bool     `arg:"-v,--verbose" help:"log skipped entries"`
	Quiet          bool     `arg:"-q,--quiet" help:"only log errors"`
}

// Description is shown at the top of --help.
func (Args) Description() string {
	return "Recursively concatenates files matching glob patterns into a single Markdown document.\n"
}

// ParseArgs parses os.Args, exiting on --help or a usage error.
func ParseArgs() *Args {
	args := &Args{}
	arg.MustParse(args)
	return args
}

// ScanRoot is the absolute directory the selection walks.
type ScanRoot string

// Options are the CLI arguments merged with the config file.
type Options struct {
	Root           ScanRoot
	Include        []string
	Exclude        []string // user excludes; defaults are added when compiling
	GitIgnore      bool
	Stats          bool
	List           bool
	Clipboard      bool
	Output         string
	TokenEstimator string
	ConfigPath     string // config file in use, if any
}

// CLI is the wired dircat application.
type CLI struct {
	Options  *Options
	Selector *selection.Selector
	Writer   *document.Writer
	Metrics  *metrics.OutputMetrics
	Logger   *slog.Logger

	Stdout io.Writer
	Stderr io.Writer
}

// Run selects files and writes the document or path list.
func (c *CLI) Run() error {
	if c.Options.ConfigPath != "" {
		c.Logger.Debug("loaded config", "path", c.Options.ConfigPath)
	}
	files, err := c.Selector.Select()
	if err != nil {
		return err
	}
	c.Logger.Debug("selection complete", "root", c.Selector.Root, "files", len(files))
	if len(files) == 0 {
		c.Logger.Warn("no files matched", "root", c.Selector.Root, "include", strings.Join(c.Options.Include, ","))
	}

	var clip bytes.Buffer
	var dest io.Writer
	switch {
	case c.Options.Output != "":
		f, err := os.Create(c.Options.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		dest = f
	case c.Options.Clipboard:
		dest = io.Discard
	default:
		dest = c.Stdout
	}
	if c.Options.Clipboard {
		dest = io.MultiWriter(dest, &clip)
	}

	if c.Options.List {
		err = document.WriteList(dest, files)
	} else {
		err = c.Writer.Write(dest, files)
	}
	if err != nil {
		return err
	}

	if c.Options.Output != "" {
		fmt.Fprintf(c.Stderr, "Wrote %d files to %s\n", len(files), c.Options.Output)
	}
	if c.Options.Clipboard {
		if err := clipboard.WriteAll(clip.String()); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(c.Stderr, "Output copied to clipboard")
	}

	if c.Options.Stats && !c.Options.List {
		return metrics.PrintSummary(c.Stderr, c.Metrics, metrics.SummaryOptions{})
	}
	c.Metrics.Wait()
	return nil
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// compilePatterns compiles the include list and the exclude list merged
// with the defaults. Both must succeed before any traversal.
func compilePatterns(include, exclude []string) (*match.PatternSet, *match.PatternSet, error) {
	inc, err := match.Compile(include)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exc, err := match.Compile(match.WithDefaultExcludes(exclude...))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	return inc, exc, nil
}
