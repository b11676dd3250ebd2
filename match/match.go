// Package match compiles lists of glob patterns into immutable pattern sets.
//
// # Pattern Syntax
//
// Patterns use doublestar syntax:
//
//   - "*" matches any run of characters except "/"
//   - "**" matches any number of path components, including none
//   - "?" matches a single character except "/"
//   - "[abc]", "[a-z]", "[^a]" match character classes
//   - "{a,b}" matches either alternative
//
// A pattern is matched against the whole candidate string. A pattern with no
// "/" can therefore only match a candidate with no "/", so callers that want
// "match anywhere by name" try the base name as well as the relative
// path. The set never rewrites candidates.
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is the sentinel wrapped by InvalidPatternError.
var ErrInvalidPattern = errors.New("invalid pattern")

// InvalidPatternError reports a pattern that failed to parse.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap lets errors.Is match both ErrInvalidPattern and the parser error.
func (e *InvalidPatternError) Unwrap() []error {
	return []error{ErrInvalidPattern, e.Err}
}

// PatternSet is a compiled, read-only list of glob patterns.
type PatternSet struct {
	patterns []string
}

// Compile validates every pattern and returns a PatternSet. A single bad
// pattern fails the whole set. An empty list yields a set that matches
// nothing.
func Compile(patterns []string) (*PatternSet, error) {
	compiled := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, &InvalidPatternError{Pattern: p, Err: describeBadPattern(p)}
		}
		compiled = append(compiled, p)
	}
	return &PatternSet{patterns: compiled}, nil
}

// describeBadPattern names the unbalanced construct in a pattern doublestar
// rejected, when it is an unclosed "[" or "{" or a trailing backslash.
func describeBadPattern(p string) error {
	inClass := false
	braces := 0
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c == '\\':
			if i+1 == len(p) {
				return fmt.Errorf("%w: trailing escape", doublestar.ErrBadPattern)
			}
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '{':
			braces++
		case c == '}' && braces > 0:
			braces--
		}
	}
	switch {
	case inClass:
		return fmt.Errorf("%w: unclosed '['", doublestar.ErrBadPattern)
	case braces > 0:
		return fmt.Errorf("%w: unclosed '{'", doublestar.ErrBadPattern)
	}
	return doublestar.ErrBadPattern
}

// MustCompile is like Compile but panics on error.
func MustCompile(patterns ...string) *PatternSet {
	set, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return set
}

// Matches reports whether candidate matches any pattern in the set.
func (s *PatternSet) Matches(candidate string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.patterns {
		// patterns were validated in Compile, so an error here cannot happen
		if ok, _ := doublestar.Match(p, candidate); ok {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the source patterns.
func (s *PatternSet) Patterns() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.patterns...)
}

// Len returns the number of patterns in the set.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// SplitList splits a comma separated pattern list, trimming whitespace
// around each entry and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

var defaultExcludes = []string{
	"target",
	"node_modules",
	"__pycache__",
	".git",
	"dist",
	"build",
	"vendor",
	"*.lock",
}

// DefaultExcludes returns the baseline exclude patterns.
//
// The bare names match by base name at any depth, so a plain file called
// "build" or "target" is excluded along with directories of that name.
func DefaultExcludes() []string {
	return append([]string(nil), defaultExcludes...)
}

// WithDefaultExcludes returns the default excludes followed by extra.
func WithDefaultExcludes(extra ...string) []string {
	return append(DefaultExcludes(), extra...)
}
