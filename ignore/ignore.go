// Package ignore answers whether a path under a scan root is excluded by
// .gitignore rules.
//
// Rules are added one directory at a time as a walk enters it, so that
// directories the walk prunes are never read. A rule only applies below the
// directory whose .gitignore declared it.
package ignore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// FileName is the per-directory ignore file.
const FileName = ".gitignore"

var infoExclude = []string{".git", "info", "exclude"}

// Ignore holds the gitignore rules collected for one root.
type Ignore struct {
	patterns []gitignore.Pattern
	base     int // patterns read by NewIgnore, kept by Fork
	matcher  gitignore.Matcher
}

// NewIgnore returns an Ignore seeded with the root's .git/info/exclude, if
// there is one. A missing file is not an error. On a read error the returned
// Ignore is still usable; it just lacks those rules.
func NewIgnore(rootPath string) (*Ignore, error) {
	ig := &Ignore{matcher: gitignore.NewMatcher(nil)}

	fs := osfs.New(rootPath)
	f, err := fs.Open(fs.Join(infoExclude...))
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		// no repository, or a worktree whose .git is a file
		return ig, nil
	}
	if err != nil {
		return ig, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ig, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	ig.Add(".", data)
	ig.base = len(ig.patterns)
	return ig, nil
}

// Fork returns a copy holding only the rules read by NewIgnore, for a fresh
// walk of the same root.
func (ig *Ignore) Fork() *Ignore {
	if ig == nil {
		return nil
	}
	patterns := make([]gitignore.Pattern, ig.base)
	copy(patterns, ig.patterns[:ig.base])
	return &Ignore{
		patterns: patterns,
		base:     ig.base,
		matcher:  gitignore.NewMatcher(patterns),
	}
}

// Add parses the contents of a .gitignore found in dir, a slash separated
// path relative to the root ("." for the root), and returns how many rules
// it contributed.
func (ig *Ignore) Add(dir string, data []byte) int {
	if ig == nil {
		return 0
	}

	var domain []string
	if dir != "." && dir != "" {
		domain = strings.Split(dir, "/")
	}

	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		ig.patterns = append(ig.patterns, gitignore.ParsePattern(line, domain))
		n++
	}
	if n > 0 {
		ig.matcher = gitignore.NewMatcher(ig.patterns)
	}
	return n
}

// PatternCount returns the number of gitignore rules loaded.
func (ig *Ignore) PatternCount() int {
	if ig == nil {
		return 0
	}
	return len(ig.patterns)
}

// IsIgnored reports whether relPath, a slash separated path relative to the
// root, is ignored. The root itself ("." or "") is never ignored.
func (ig *Ignore) IsIgnored(relPath string, isDir bool) bool {
	if ig == nil || relPath == "." || relPath == "" {
		return false
	}
	parts := strings.Split(relPath, "/")
	return ig.matcher.Match(parts, isDir)
}
