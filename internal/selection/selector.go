// Package selection walks a scan root once and picks the files to
// concatenate.
//
// Directories are pruned before descent when their base name starts with
// ".", or when the exclude set matches their base name, their path relative
// to the root, or that path prefixed with "./". The root itself is never
// pruned. A regular file is selected when the include set matches its base
// name or relative path and the exclude set matches neither. The result is
// sorted by relative path, component by component.
package selection

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hayeah/dircat/ignore"
	"github.com/hayeah/dircat/match"
)

// ErrInvalidRoot is the sentinel wrapped by InvalidRootError.
var ErrInvalidRoot = errors.New("invalid scan root")

// InvalidRootError reports a scan root that is missing or not a directory.
type InvalidRootError struct {
	Root string
	Err  error
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("%s is not a valid directory: %v", e.Root, e.Err)
}

func (e *InvalidRootError) Unwrap() []error {
	return []error{ErrInvalidRoot, e.Err}
}

var errNotDir = errors.New("not a directory")

// SelectedFile is a file chosen for output.
type SelectedFile struct {
	Path    string // absolute path
	RelPath string // path relative to the scan root, "/" separated
}

// Selector holds the policy for one selection run.
type Selector struct {
	Root    string
	Include *match.PatternSet
	Exclude *match.PatternSet
	Ignore  *ignore.Ignore // optional gitignore rules
	Logger  *slog.Logger
	FS      fs.FS // tree rooted at Root; os.DirFS(Root) by default
}

// Option configures a Selector.
type Option func(*Selector)

// WithIgnore adds gitignore filtering on top of the exclude set.
func WithIgnore(ig *ignore.Ignore) Option {
	return func(s *Selector) { s.Ignore = ig }
}

// WithFS reads the tree from fsys instead of the disk under the root.
func WithFS(fsys fs.FS) Option {
	return func(s *Selector) { s.FS = fsys }
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) { s.Logger = logger }
}

// New validates root and returns a Selector for it. The root is made
// absolute and, if it is a symlink, resolved.
func New(root string, include, exclude *match.PatternSet, opts ...Option) (*Selector, error) {
	abs, err := CheckRoot(root)
	if err != nil {
		return nil, err
	}

	s := &Selector{
		Root:    abs,
		Include: include,
		Exclude: exclude,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}
	if s.FS == nil {
		s.FS = os.DirFS(abs)
	}
	return s, nil
}

// CheckRoot returns the absolute, symlink-resolved form of root, or an
// InvalidRootError if it does not exist or is not a directory.
func CheckRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &InvalidRootError{Root: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &InvalidRootError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return "", &InvalidRootError{Root: root, Err: errNotDir}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &InvalidRootError{Root: root, Err: err}
	}
	return resolved, nil
}

// Select walks the root and returns the selected files in order. Entries
// that cannot be read are skipped; Select only fails if the root has become
// invalid since New.
//
// With gitignore filtering on, each directory's .gitignore is read when the
// walk enters it, so pruned directories are never read.
func (s *Selector) Select() ([]SelectedFile, error) {
	if _, err := CheckRoot(s.Root); err != nil {
		return nil, err
	}

	ig := s.Ignore.Fork()
	prune := func(e Entry) bool { return s.shouldPrune(e, ig) }

	var files []SelectedFile
	for entry, err := range Walk(s.FS, prune) {
		if err != nil {
			s.Logger.Debug("skipping entry", "error", err)
			continue
		}
		if entry.IsDir() {
			s.loadGitignore(ig, entry.Path)
			continue
		}
		if !entry.IsRegular() || !fs.ValidPath(entry.Path) {
			continue
		}

		if s.selectFile(entry.Name, entry.Path, ig) {
			files = append(files, SelectedFile{
				Path:    filepath.Join(s.Root, filepath.FromSlash(entry.Path)),
				RelPath: entry.Path,
			})
		}
	}

	SortFiles(files)
	s.Logger.Debug("selection done", "files", len(files), "gitignore_rules", ig.PatternCount())
	return files, nil
}

func (s *Selector) loadGitignore(ig *ignore.Ignore, dir string) {
	if ig == nil {
		return
	}
	name := path.Join(dir, ignore.FileName)
	data, err := fs.ReadFile(s.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.Logger.Debug("skipping unreadable gitignore", "path", name, "error", err)
		return
	}
	if n := ig.Add(dir, data); n > 0 {
		s.Logger.Debug("loaded gitignore", "path", name, "rules", n)
	}
}

// shouldPrune decides whether to skip a directory and everything below it.
func (s *Selector) shouldPrune(e Entry, ig *ignore.Ignore) bool {
	rel := e.Path
	if rel == "." {
		return false
	}
	if !fs.ValidPath(rel) {
		// not a path under the root: keep walking rather than hide files
		return false
	}
	if strings.HasPrefix(e.Name, ".") {
		s.Logger.Debug("pruning hidden directory", "path", rel)
		return true
	}
	if s.Exclude.Matches(e.Name) || s.Exclude.Matches(rel) || s.Exclude.Matches("./"+rel) {
		s.Logger.Debug("pruning excluded directory", "path", rel)
		return true
	}
	if ig.IsIgnored(rel, true) {
		s.Logger.Debug("pruning gitignored directory", "path", rel)
		return true
	}
	return false
}

func (s *Selector) selectFile(name, rel string, ig *ignore.Ignore) bool {
	if !s.Include.Matches(name) && !s.Include.Matches(rel) {
		return false
	}
	if s.Exclude.Matches(name) || s.Exclude.Matches(rel) {
		return false
	}
	return !ig.IsIgnored(rel, false)
}

// ComparePaths orders slash separated relative paths component by
// component, comparing components byte-wise.
func ComparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}

// SortFiles sorts files in place by relative path.
func SortFiles(files []SelectedFile) {
	SortPaths(files, func(f SelectedFile) string { return f.RelPath })
}

// SortPaths sorts items in place by the relative path key returns.
func SortPaths[T any](items []T, key func(T) string) {
	slices.SortFunc(items, func(a, b T) int {
		return ComparePaths(key(a), key(b))
	})
}
