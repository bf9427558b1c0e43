package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes xxhash digests of source trees and cache keys.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// HashTree hashes every file under dir: its relative path, its executable bit and its
// content. Symlinks contribute their target. Two trees with identical files hash equally
// regardless of where they live.
func (h *Hasher) HashTree(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "tree does not exist"), "path", dir)
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", dir)
	}
	if !info.IsDir() {
		return "", zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "not a directory"), "path", dir)
	}

	hasher := xxhash.New()
	for f, err := range h.walker.WalkFiles(dir) {
		if err != nil {
			return "", err
		}
		if err := h.hashEntry(hasher, dir, f.Rel, f.Entry); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) hashEntry(hasher *xxhash.Digest, dir, rel string, d iofs.DirEntry) error {
	path := filepath.Join(dir, filepath.FromSlash(rel))

	_, _ = hasher.WriteString(rel)
	_, _ = hasher.Write([]byte{0})

	if d.Type()&iofs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
		}
		_, _ = hasher.WriteString("->" + target)
		_, _ = hasher.Write([]byte{0})
		return nil
	}

	info, err := d.Info()
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
	}
	exec := byte(0)
	if info.Mode().Perm()&0o111 != 0 {
		exec = 1
	}
	_, _ = hasher.Write([]byte{exec})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}

// HashKey derives a cache key from ordered parts. Parts are separated so ("ab", "c") and
// ("a", "bc") differ.
func (h *Hasher) HashKey(parts ...string) string {
	hasher := xxhash.New()
	for _, p := range parts {
		_, _ = hasher.WriteString(p)
		_, _ = hasher.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
