package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TreeCopier = (*Copier)(nil)

// Copier copies source trees into image staging directories.
type Copier struct {
	walker *Walker
}

// NewCopier creates a new Copier.
func NewCopier(walker *Walker) *Copier {
	return &Copier{walker: walker}
}

// CopyTree copies every file the walker yields under src into dst, keeping permissions
// and recreating symlinks.
func (c *Copier) CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "source tree does not exist"), "path", src)
		}
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", src)
	}
	if !info.IsDir() {
		return zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "source tree is not a directory"), "path", src)
	}

	if err := os.MkdirAll(dst, domain.DirPerm); err != nil {
		return copyFailed(err, dst)
	}

	for f, err := range c.walker.WalkFiles(src) {
		if err != nil {
			return err
		}
		from := filepath.Join(src, filepath.FromSlash(f.Rel))
		to := filepath.Join(dst, filepath.FromSlash(f.Rel))
		if err := os.MkdirAll(filepath.Dir(to), domain.DirPerm); err != nil {
			return copyFailed(err, to)
		}

		if f.Entry.Type()&iofs.ModeSymlink != 0 {
			target, err := os.Readlink(from)
			if err != nil {
				return copyFailed(err, from)
			}
			if err := os.Symlink(target, to); err != nil {
				return copyFailed(err, to)
			}
			continue
		}

		if err := copyFile(from, to); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return copyFailed(err, from)
	}

	//nolint:gosec // Path comes from walking the source tree
	in, err := os.Open(from)
	if err != nil {
		return copyFailed(err, from)
	}
	defer in.Close() //nolint:errcheck // Read-only file

	//nolint:gosec // Path is inside the staging directory
	out, err := os.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return copyFailed(err, to)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return copyFailed(err, to)
	}
	if err := out.Close(); err != nil {
		return copyFailed(err, to)
	}
	return nil
}

func copyFailed(err error, path string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrCopyFailed, "copy failed"), "path", path), "reason", err.Error())
}
