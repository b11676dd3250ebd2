package dircat

import (
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/wire"

	"github.com/hayeah/dircat/ignore"
	"github.com/hayeah/dircat/internal/document"
	"github.com/hayeah/dircat/internal/metrics"
	"github.com/hayeah/dircat/internal/selection"
	"github.com/hayeah/dircat/match"
)

// Wires collects the providers for InitCLI.
var Wires = wire.NewSet(
	ProvideLogger,
	ProvideScanRoot,
	ProvideConfig,
	ProvideOptions,
	ProvidePatterns,
	ProvideIgnore,
	ProvideSelector,
	ProvideCounter,
	ProvideMetrics,
	ProvideDocumentWriter,
	ProvideCLI,
)

// ProvideLogger builds an slog.Logger writing to stderr through charm's
// log handler.
func ProvideLogger(args *Args) *slog.Logger {
	level := log.InfoLevel
	switch {
	case args.Verbose:
		level = log.DebugLevel
	case args.Quiet:
		level = log.ErrorLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "dircat",
	})
	return slog.New(handler)
}

// ProvideScanRoot expands and validates the directory argument.
func ProvideScanRoot(args *Args) (ScanRoot, error) {
	root, err := selection.CheckRoot(expandHome(args.Directory))
	if err != nil {
		return "", err
	}
	return ScanRoot(root), nil
}

// ProvideOptions merges the arguments over the config file. CLI include
// patterns replace the config's; CLI excludes are added to the config's.
func ProvideOptions(args *Args, cfg *Config, root ScanRoot) (*Options, error) {
	include := match.SplitList(args.Patterns)
	if len(include) == 0 {
		include = cleanList(cfg.Include)
	}
	if len(include) == 0 {
		return nil, ErrNoIncludePatterns
	}

	exclude := append(cleanList(cfg.Exclude), cleanList(args.Exclude)...)

	return &Options{
		Root:           root,
		Include:        include,
		Exclude:        exclude,
		GitIgnore:      args.GitIgnore || cfg.GitIgnore,
		Stats:          args.Stats || cfg.Stats,
		List:           args.List,
		Clipboard:      args.Clipboard,
		Output:         args.Output,
		TokenEstimator: args.TokenEstimator,
		ConfigPath:     cfg.Path,
	}, nil
}

func cleanList(patterns []string) []string {
	var out []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ProvideIgnore enables gitignore filtering when --gitignore is set, nil
// otherwise. The .gitignore files themselves are read during selection.
func ProvideIgnore(opts *Options, logger *slog.Logger) *ignore.Ignore {
	if !opts.GitIgnore {
		return nil
	}
	ig, err := ignore.NewIgnore(string(opts.Root))
	if err != nil {
		logger.Warn("skipping .git/info/exclude", "error", err)
	}
	return ig
}

// Patterns holds the compiled include and exclude sets.
type Patterns struct {
	Include *match.PatternSet
	Exclude *match.PatternSet
}

// ProvidePatterns compiles the include list and the exclude list merged
// with the defaults.
func ProvidePatterns(opts *Options) (*Patterns, error) {
	include, exclude, err := compilePatterns(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	return &Patterns{Include: include, Exclude: exclude}, nil
}

func ProvideSelector(opts *Options, p *Patterns, ig *ignore.Ignore, logger *slog.Logger) (*selection.Selector, error) {
	return selection.New(string(opts.Root), p.Include, p.Exclude,
		selection.WithIgnore(ig),
		selection.WithLogger(logger),
	)
}

// ProvideCounter picks the token estimator, falling back to the simple one
// when the tiktoken encoding cannot be loaded.
func ProvideCounter(opts *Options, logger *slog.Logger) (metrics.Counter, error) {
	c, err := metrics.NewCounter(opts.TokenEstimator)
	if err != nil && opts.TokenEstimator == metrics.EstimatorTiktoken {
		logger.Warn("falling back to simple token estimator", "error", err)
		return metrics.SimpleCounter{}, nil
	}
	return c, err
}

func ProvideMetrics(counter metrics.Counter) *metrics.OutputMetrics {
	return metrics.NewOutputMetrics(counter, runtime.NumCPU())
}

// ProvideDocumentWriter only feeds metrics when --stats is on.
func ProvideDocumentWriter(opts *Options, logger *slog.Logger, m *metrics.OutputMetrics) *document.Writer {
	if !opts.Stats {
		return document.NewWriter(logger, nil)
	}
	return document.NewWriter(logger, m)
}

func ProvideCLI(opts *Options, sel *selection.Selector, w *document.Writer, m *metrics.OutputMetrics, logger *slog.Logger) *CLI {
	return &CLI{
		Options:  opts,
		Selector: sel,
		Writer:   w,
		Metrics:  m,
		Logger:   logger,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}
