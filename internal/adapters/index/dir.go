package index

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactSource = (*DirSource)(nil)

// DirSource serves artifacts from a directory on disk.
type DirSource struct {
	root string
}

// NewDirSource creates a DirSource rooted at root.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: filepath.Clean(root)}
}

// Fetch copies the artifact of exactly pkg's pinned version into w.
func (s *DirSource) Fetch(ctx context.Context, pkg domain.PinnedPackage, w io.Writer) (string, error) {
	for _, suffix := range Suffixes() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := ArtifactName(pkg, suffix)
		path := filepath.Join(s.root, pkg.Name, name)

		//nolint:gosec // Path is built from the index root and a normalized package name
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot open artifact"),
				"path", path), "reason", err.Error())
		}

		_, err = io.Copy(w, f)
		_ = f.Close()
		if err != nil {
			return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot read artifact"),
				"path", path), "reason", err.Error())
		}
		return name, nil
	}

	return "", notFound(pkg, s.root)
}
