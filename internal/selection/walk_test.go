package selection

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hayeah/dircat/internal/assert"
)

// failFS fails every open at or below the listed paths and records what was
// opened.
type failFS struct {
	fs.FS
	fail   []string
	opened []string
}

func (f *failFS) Open(name string) (fs.File, error) {
	f.opened = append(f.opened, name)
	for _, p := range f.fail {
		if name == p || strings.HasPrefix(name, p+"/") {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
		}
	}
	return f.FS.Open(name)
}

func (f *failFS) openedUnder(dir string) []string {
	var hits []string
	for _, name := range f.opened {
		if name == dir || strings.HasPrefix(name, dir+"/") {
			hits = append(hits, name)
		}
	}
	return hits
}

func TestWalkPrunesBeforeDescent(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"keep/a.txt":      "x",
		"skip/b.txt":      "x",
		"skip/deep/c.txt": "x",
	})

	fsys := &failFS{FS: os.DirFS(root)}
	var visited []string
	for e, err := range Walk(fsys, func(e Entry) bool { return e.Name == "skip" }) {
		assert.NoError(err)
		visited = append(visited, e.Path)
	}

	assert.ElementsMatch([]string{".", "keep", "keep/a.txt"}, visited)
	assert.Empty(fsys.openedUnder("skip"))
}

func TestWalkYieldsReadErrorsAndContinues(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"a/x.txt":      "x",
		"locked/y.txt": "y",
		"z.txt":        "z",
	})

	var visited []string
	var errs []error
	for e, err := range Walk(&failFS{FS: os.DirFS(root), fail: []string{"locked"}}, nil) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		visited = append(visited, e.Path)
	}

	assert.ElementsMatch([]string{".", "a", "a/x.txt", "locked", "z.txt"}, visited)
	if assert.Len(errs, 1) {
		assert.True(errors.Is(errs[0], fs.ErrPermission))
		var perr *fs.PathError
		assert.True(errors.As(errs[0], &perr))
		assert.Equal("locked", perr.Path)
	}
}

func TestWalkStopsWhenLoopBreaks(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"a.txt": "x",
		"b.txt": "x",
		"c.txt": "x",
	})

	count := 0
	for range Walk(os.DirFS(root), nil) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}

func TestWalkMissingRootYieldsError(t *testing.T) {
	assert := assert.New(t)
	root := filepath.Join(t.TempDir(), "missing")

	var errs []error
	for _, err := range Walk(os.DirFS(root), nil) {
		errs = append(errs, err)
	}
	assert.Len(errs, 1)
	assert.Error(errs[0])
}
