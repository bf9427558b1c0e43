// Package fs provides file system adapters for walking, hashing and copying source trees.
package fs

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

var errStopped = errors.New("walk stopped")

// DefaultIgnores are directory and file names never treated as part of a source tree.
var DefaultIgnores = []string{".git", ".jj", ".tandem", "__pycache__", "*.pyc"}

// Walker provides file walking functionality.
type Walker struct {
	ignores []string
}

// NewWalker creates a new Walker that skips DefaultIgnores.
func NewWalker() *Walker {
	return &Walker{ignores: DefaultIgnores}
}

// File is one walked entry. Rel is relative to the walk root and slash separated.
type File struct {
	Rel   string
	Entry fs.DirEntry
}

// WalkFiles yields every non-directory entry under root in lexical order, skipping
// ignored names. An unreadable entry ends the walk with a domain.ErrMissingArtifact
// error as the final pair.
func (w *Walker) WalkFiles(root string) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "source tree is unreadable"),
					"path", path), "reason", err.Error())
			}
			if path == root {
				return nil
			}

			if w.Ignored(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if !yield(File{Rel: filepath.ToSlash(rel), Entry: d}, nil) {
				return errStopped
			}
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, errStopped) {
			yield(File{}, walkErr)
		}
	}
}

// Ignored reports whether a file or directory called name is skipped.
func (w *Walker) Ignored(name string) bool {
	for _, pattern := range w.ignores {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
