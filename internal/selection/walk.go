package selection

import (
	"io/fs"
	"iter"
)

// Entry is a node visited during traversal.
type Entry struct {
	Path string      // slash separated, relative to the walk root ("." for the root)
	Name string      // base name
	Type fs.FileMode // type bits only
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Type.IsDir() }

// IsRegular reports whether the entry is a regular file.
func (e Entry) IsRegular() bool { return e.Type.IsRegular() }

// Walk returns a lazy depth-first sequence of the entries of fsys,
// including its root ".". Symbolic links are reported as entries but never
// followed.
//
// Before a directory is yielded, prune is consulted; a pruned directory is
// neither yielded nor read. Entries that cannot be read are yielded as
// (Entry{}, err) and the walk carries on with the rest of the tree. Breaking
// out of the range loop stops the walk.
func Walk(fsys fs.FS, prune func(Entry) bool) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(Entry{}, &fs.PathError{Op: "walk", Path: path, Err: unwrapPathError(err)}) {
					return fs.SkipAll
				}
				// a directory that failed to list has nothing more to give
				return nil
			}

			entry := Entry{Path: path, Name: d.Name(), Type: d.Type()}
			if entry.IsDir() && prune != nil && prune(entry) {
				return fs.SkipDir
			}

			if !yield(entry, nil) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

func unwrapPathError(err error) error {
	if pe, ok := err.(*fs.PathError); ok {
		return pe.Err
	}
	return err
}
