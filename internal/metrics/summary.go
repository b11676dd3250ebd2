package metrics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// SummaryOptions controls the layout of PrintSummary.
type SummaryOptions struct {
	Width    int  // total columns; 0 = terminal width of stderr, or 80
	BarWidth int  // 0 = 35% of Width
	FillRune rune // default '█'
}

var totalStyle = lipgloss.NewStyle().Bold(true)

// TermWidth returns the column count of f, or 80 when f is not a terminal.
func TermWidth(f *os.File) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// trimPrefix returns s unchanged if it fits in max bytes; otherwise it keeps
// the suffix, starting on a rune boundary, and marks the cut with "…".
func trimPrefix(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := len(s) - max + 1
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return "…" + s[cut:]
}

// PrintSummary waits for m and writes one bar per file, in document order,
// followed by a totals row. Bars are normalized to the largest file.
func PrintSummary(w io.Writer, m *OutputMetrics, opt SummaryOptions) error {
	const (
		pctW    = 6
		tokensW = 7
		gapW    = 2
	)

	m.Wait()
	files := m.Files()
	total := m.Total()

	if len(files) == 0 || total.Tokens == 0 {
		_, err := fmt.Fprintf(w, "Summary: %d files, %d tokens\n", len(files), total.Tokens)
		return err
	}

	width := opt.Width
	if width <= 0 {
		width = TermWidth(os.Stderr)
	}
	barW := opt.BarWidth
	if barW <= 0 {
		barW = int(float64(width) * 0.35)
	}
	keyW := width - (barW + pctW + tokensW + gapW*3)
	if keyW < 8 {
		keyW = 8
	}
	fill := opt.FillRune
	if fill == 0 {
		fill = '█'
	}

	maxTokens := 0
	for _, f := range files {
		maxTokens = max(maxTokens, f.Tokens)
	}

	for _, f := range files {
		barLen := int(float64(f.Tokens)/float64(maxTokens)*float64(barW) + 0.5)
		if barLen == 0 && f.Tokens > 0 {
			barLen = 1
		}
		bar := strings.Repeat(string(fill), barLen) + strings.Repeat(" ", barW-barLen)
		pct := float64(f.Tokens) * 100 / float64(total.Tokens)
		if _, err := fmt.Fprintf(w, "%s  %5.1f%%  %*d  %s\n", bar, pct, tokensW, f.Tokens, trimPrefix(f.Path, keyW)); err != nil {
			return err
		}
	}

	sep := strings.Repeat("─", barW)
	row := fmt.Sprintf("%s  %5.1f%%  %*d  %s", sep, 100.0, tokensW, total.Tokens, "TOTAL")
	if _, err := fmt.Fprintln(w, totalStyle.Render(row)); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nSummary: %d files, %d tokens, %d lines, %d bytes\n",
		len(files), total.Tokens, total.Lines, total.Bytes)
	return err
}
