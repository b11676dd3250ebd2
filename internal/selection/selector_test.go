package selection

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/hayeah/dircat/ignore"
	"github.com/hayeah/dircat/internal/assert"
	"github.com/hayeah/dircat/match"
)

func newSelector(a *assert.Assert, root string, include, exclude []string, opts ...Option) *Selector {
	a.T.Helper()
	inc, err := match.Compile(include)
	a.NoError(err)
	exc, err := match.Compile(exclude)
	a.NoError(err)
	s, err := New(root, inc, exc, opts...)
	if err != nil {
		a.T.Fatalf("New: %v", err)
	}
	return s
}

func relPaths(files []SelectedFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.RelPath)
	}
	return paths
}

func TestSelectHiddenDirectoryPruned(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"a.txt":         "a",
		"b.md":          "b",
		".hidden/c.txt": "c",
	})

	s := newSelector(assert, root, []string{"*.txt"}, nil)
	files, err := s.Select()
	assert.NoError(err)
	assert.Equal([]string{"a.txt"}, relPaths(files))
	assert.Equal(filepath.Join(s.Root, "a.txt"), files[0].Path)
}

func TestSelectHiddenFilesAreNotPruned(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		".env.txt":         "x",
		"sub/.notes.txt":   "y",
		"sub/.cache/z.txt": "z",
	})

	files, err := newSelector(assert, root, []string{"*.txt"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{".env.txt", "sub/.notes.txt"}, relPaths(files))
}

func TestSelectExcludeIsNotSubstring(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"target/compiled.rs":  "x",
		"src/target_file.rs":  "y",
		"src/nested/target/a": "z",
	})

	files, err := newSelector(assert, root, []string{"*.rs"}, []string{"target"}).Select()
	assert.NoError(err)
	assert.Equal([]string{"src/target_file.rs"}, relPaths(files))
}

func TestSelectDefaultExcludes(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"main.go":                    "package main",
		"node_modules/dep/index.go":  "x",
		"vendor/lib/lib.go":          "x",
		"pkg/build/gen.go":           "x",
		"pkg/__pycache__/x.go":       "x",
		"pkg/util.go":                "x",
		"build":                      "a plain file named build",
		"Cargo.lock":                 "x",
		"docs/dist/bundle.go":        "x",
		"deep/a/b/target/release.go": "x",
	})

	files, err := newSelector(assert, root, []string{"*.go", "build", "*.lock"}, match.DefaultExcludes()).Select()
	assert.NoError(err)
	assert.Equal([]string{"main.go", "pkg/util.go"}, relPaths(files))
}

func TestSelectExcludeByRelativePath(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"src/temp/a.py":    "x",
		"src/keep/b.py":    "x",
		"tools/gen.py":     "x",
		"other/tools/c.py": "x",
		"lib/skip_me.py":   "x",
	})

	files, err := newSelector(assert, root,
		[]string{"*.py"},
		[]string{"src/temp", "./tools", "lib/skip_me.py"},
	).Select()
	assert.NoError(err)
	assert.Equal([]string{"other/tools/c.py", "src/keep/b.py"}, relPaths(files))
}

func TestSelectIncludeByRelativePath(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"cmd/main.go":     "x",
		"cmd/sub/deep.go": "x",
		"internal/x.go":   "x",
		"README.md":       "x",
	})

	files, err := newSelector(assert, root, []string{"cmd/*.go", "README.md"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{"README.md", "cmd/main.go"}, relPaths(files))

	files, err = newSelector(assert, root, []string{"cmd/**/*.go"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{"cmd/main.go", "cmd/sub/deep.go"}, relPaths(files))
}

func TestSelectExcludeFileByName(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"a.go":      "x",
		"a_test.go": "x",
		"b/c.go":    "x",
	})

	files, err := newSelector(assert, root, []string{"*.go"}, []string{"*_test.go"}).Select()
	assert.NoError(err)
	assert.Equal([]string{"a.go", "b/c.go"}, relPaths(files))
}

func TestSelectRootNeverPruned(t *testing.T) {
	assert := assert.New(t)
	parent := assert.Tree(map[string]string{
		".project/build/a.txt": "x",
		".project/b.txt":       "x",
	})
	root := filepath.Join(parent, ".project", "build")

	// root's own name is hidden-free here but matches "build"
	files, err := newSelector(assert, root, []string{"*.txt"}, match.DefaultExcludes()).Select()
	assert.NoError(err)
	assert.Equal([]string{"a.txt"}, relPaths(files))

	// root whose name starts with "."
	files, err = newSelector(assert, filepath.Join(parent, ".project"), []string{"*.txt"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{"b.txt", "build/a.txt"}, relPaths(files))
}

func TestSelectOrdering(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"b.txt":     "x",
		"a.txt":     "x",
		"a/z.txt":   "x",
		"a-b/y.txt": "x",
		"Z.txt":     "x",
		"a/b/c.txt": "x",
	})

	s := newSelector(assert, root, []string{"*.txt"}, nil)
	first, err := s.Select()
	assert.NoError(err)
	assert.Equal([]string{
		"Z.txt",
		"a/b/c.txt",
		"a/z.txt",
		"a-b/y.txt",
		"a.txt",
		"b.txt",
	}, relPaths(first))

	second, err := s.Select()
	assert.NoError(err)
	assert.Equal(first, second)
}

func TestSelectEmptyResult(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{"a.txt": "x", "empty/": ""})

	files, err := newSelector(assert, root, []string{"*.rs"}, nil).Select()
	assert.NoError(err)
	assert.Empty(files)
}

func TestSelectSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	assert := assert.New(t)
	outside := assert.Tree(map[string]string{"linked/far.txt": "x"})
	root := assert.Tree(map[string]string{"near.txt": "x"})

	assert.NoError(os.Symlink(filepath.Join(outside, "linked"), filepath.Join(root, "dirlink")))
	assert.NoError(os.Symlink(filepath.Join(root, "near.txt"), filepath.Join(root, "filelink.txt")))

	files, err := newSelector(assert, root, []string{"*.txt"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{"near.txt"}, relPaths(files))
}

func TestSelectSkipsUnreadableDirectory(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"ok/a.txt":     "x",
		"locked/b.txt": "x",
		"z.txt":        "x",
	})
	fsys := &failFS{FS: os.DirFS(root), fail: []string{"locked"}}

	files, err := newSelector(assert, root, []string{"*.txt"}, nil, WithFS(fsys)).Select()
	assert.NoError(err)
	assert.Equal([]string{"ok/a.txt", "z.txt"}, relPaths(files))
}

func TestSelectSkipsUnreadableDirectoryOnDisk(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"ok/a.txt":     "x",
		"locked/b.txt": "x",
		"z.txt":        "x",
	})
	locked := filepath.Join(root, "locked")
	assert.NoError(os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	files, err := newSelector(assert, root, []string{"*.txt"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{"ok/a.txt", "z.txt"}, relPaths(files))
}

func TestSelectWithGitignore(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		".gitignore":           "generated/\n*.tmp.go\n",
		"main.go":              "x",
		"scratch.tmp.go":       "x",
		"generated/a.go":       "x",
		"lib/.gitignore":       "local.go\n",
		"lib/lib.go":           "x",
		"lib/local.go":         "x",
		"lib/sub/local.go":     "x",
		"other/local.go":       "x",
		"generated/.gitignore": "!a.go\n",
	})

	ig, err := ignore.NewIgnore(root)
	assert.NoError(err)

	s := newSelector(assert, root, []string{"*.go"}, nil, WithIgnore(ig))
	files, err := s.Select()
	assert.NoError(err)
	want := []string{"lib/lib.go", "main.go", "other/local.go"}
	assert.Equal(want, relPaths(files))

	// rules from one walk do not leak into the next
	files, err = s.Select()
	assert.NoError(err)
	assert.Equal(want, relPaths(files))
	assert.Equal(0, ig.PatternCount())

	files, err = newSelector(assert, root, []string{"*.go"}, nil).Select()
	assert.NoError(err)
	assert.Equal([]string{
		"generated/a.go", "lib/lib.go", "lib/local.go", "lib/sub/local.go",
		"main.go", "other/local.go", "scratch.tmp.go",
	}, relPaths(files))
}

func TestSelectGitignoreNeverReadsPrunedDirectories(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		"main.go":                     "x",
		"node_modules/pkg/.gitignore": "*\n",
		"node_modules/pkg/index.go":   "x",
		".cache/.gitignore":           "*\n",
		".cache/c.go":                 "x",
		"ignored/.gitignore":          "*\n",
		".gitignore":                  "ignored/\n",
	})
	fsys := &failFS{FS: os.DirFS(root), fail: []string{"node_modules", ".cache", "ignored"}}

	ig, err := ignore.NewIgnore(root)
	assert.NoError(err)

	files, err := newSelector(assert, root, []string{"*.go"}, match.DefaultExcludes(),
		WithIgnore(ig), WithFS(fsys)).Select()
	assert.NoError(err)
	assert.Equal([]string{"main.go"}, relPaths(files))
	assert.Empty(fsys.openedUnder("node_modules"))
	assert.Empty(fsys.openedUnder(".cache"))
	assert.Empty(fsys.openedUnder("ignored"))
}

func TestSelectSkipsUnreadableGitignore(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{
		".gitignore":     "*.log\n",
		"sub/.gitignore": "a.go\n",
		"sub/a.go":       "x",
		"sub/b.go":       "x",
		"sub/c.log":      "x",
	})
	fsys := &failFS{FS: os.DirFS(root), fail: []string{"sub/.gitignore"}}

	ig, err := ignore.NewIgnore(root)
	assert.NoError(err)

	files, err := newSelector(assert, root, []string{"*.go", "*.log"}, nil,
		WithIgnore(ig), WithFS(fsys)).Select()
	assert.NoError(err)
	assert.Equal([]string{"sub/a.go", "sub/b.go"}, relPaths(files))
}

func TestShouldPruneFailsOpenOutsideRoot(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{"a.txt": "x"})
	s := newSelector(assert, root, []string{"*"}, []string{"*"})

	assert.False(s.shouldPrune(Entry{Path: "../x", Name: "x", Type: fs.ModeDir}, nil))
	assert.False(s.shouldPrune(Entry{Path: ".", Name: filepath.Base(root), Type: fs.ModeDir}, nil))
	assert.True(s.shouldPrune(Entry{Path: "x", Name: "x", Type: fs.ModeDir}, nil))
}

func TestNewInvalidRoot(t *testing.T) {
	assert := assert.New(t)
	root := assert.Tree(map[string]string{"file.txt": "x"})

	_, err := New(filepath.Join(root, "missing"), match.MustCompile("*"), nil)
	assert.ErrorIs(err, ErrInvalidRoot)
	assert.True(errors.Is(err, os.ErrNotExist))

	_, err = New(filepath.Join(root, "file.txt"), match.MustCompile("*"), nil)
	assert.ErrorIs(err, ErrInvalidRoot)
	var rerr *InvalidRootError
	assert.True(errors.As(err, &rerr))
	assert.Contains(err.Error(), "not a directory")
}

func TestSelectRootRemovedAfterNew(t *testing.T) {
	assert := assert.New(t)
	parent := assert.Tree(map[string]string{"root/a.txt": "x"})
	root := filepath.Join(parent, "root")

	s := newSelector(assert, root, []string{"*.txt"}, nil)
	assert.NoError(os.RemoveAll(root))

	files, err := s.Select()
	assert.ErrorIs(err, ErrInvalidRoot)
	assert.Nil(files)
}

func TestComparePaths(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"a.txt", "a.txt", 0},
		{"a/b", "a.txt", -1},
		{"a", "a/b", -1},
		{"B", "a", -1},
		{"a/b/c", "a/c", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.expected, ComparePaths(tt.a, tt.b))
			assert.Equal(-tt.expected, ComparePaths(tt.b, tt.a))
		})
	}
}
