package installer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

const partialSuffix = ".partial"

// artifactCache stores downloaded artifacts under <dir>/<name>/<version>/<file>.
// Entries are only ever trusted after verification by the caller.
type artifactCache struct {
	dir string
}

func (c artifactCache) entryDir(pkg domain.PinnedPackage) string {
	return filepath.Join(c.dir, pkg.Name, pkg.Version.String())
}

// lookup returns the cached artifact for pkg, if any.
func (c artifactCache) lookup(pkg domain.PinnedPackage) (string, bool) {
	entries, err := os.ReadDir(c.entryDir(pkg))
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasSuffix(e.Name(), partialSuffix) {
			return filepath.Join(c.entryDir(pkg), e.Name()), true
		}
	}
	return "", false
}

// fill downloads pkg from src into the cache. The file only appears under its final name
// once the download is complete.
func (c artifactCache) fill(ctx context.Context, src ports.ArtifactSource, pkg domain.PinnedPackage) (string, error) {
	dir := c.entryDir(pkg)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot create cache entry"), "reason", err.Error())
	}

	tmp := filepath.Join(dir, uuid.NewString()+partialSuffix)
	//nolint:gosec // Path is inside the artifact cache
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, domain.FilePerm)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot create cache entry"), "reason", err.Error())
	}
	defer func() { _ = os.Remove(tmp) }()

	name, err := src.Fetch(ctx, pkg, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot write cache entry"), "reason", closeErr.Error())
	}
	if err != nil {
		return "", err
	}

	final := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmp, final); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrArtifactFetchFailed, "cannot commit cache entry"), "reason", err.Error())
	}
	return final, nil
}

// evict removes a cached artifact that failed verification.
func (c artifactCache) evict(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_ = os.RemoveAll(filepath.Dir(path))
	}
}
