// Package images persists built Service Images under .tandem/images.
package images

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ImageStore = (*Store)(nil)

// Store implements ports.ImageStore with one directory per role holding env/, app/ and
// image.json.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// WriteConfig writes img as dir/image.json.
func (s *Store) WriteConfig(dir string, img domain.ServiceImage) error {
	data, err := json.MarshalIndent(img, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrImageWriteFailed.Error())
	}

	path := filepath.Join(dir, domain.ImageConfigFileName)
	//nolint:gosec // Path is inside an image directory
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrImageWriteFailed.Error()), "path", path)
	}
	return nil
}

// ReadConfig reads dir/image.json and roots the image at dir.
func (s *Store) ReadConfig(dir string) (*domain.ServiceImage, error) {
	path := filepath.Join(dir, domain.ImageConfigFileName)
	//nolint:gosec // Path is inside an image directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "image config not found"), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrImageReadFailed.Error()), "path", path)
	}

	var img domain.ServiceImage
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrImageReadFailed.Error()), "path", path)
	}
	img.Root = dir
	return &img, nil
}

// Commit replaces the image for role under root with the staged directory. The previous
// image is moved aside first and removed only once the new one is in place.
func (s *Store) Commit(root, staging string, role domain.Role) (*domain.ServiceImage, error) {
	if _, err := s.ReadConfig(staging); err != nil {
		return nil, err
	}

	target := filepath.Join(root, domain.ImagePath(role))
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrImageWriteFailed.Error()), "path", target)
	}

	old := ""
	if _, err := os.Stat(target); err == nil {
		old = target + ".old-" + uuid.NewString()
		if err := os.Rename(target, old); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrImageWriteFailed.Error()), "path", target)
		}
	}

	if err := os.Rename(staging, target); err != nil {
		if old != "" {
			_ = os.Rename(old, target)
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrImageWriteFailed.Error()), "path", target)
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}

	return s.ReadConfig(target)
}

// Load returns the committed image for role.
func (s *Store) Load(root string, role domain.Role) (*domain.ServiceImage, error) {
	dir := filepath.Join(root, domain.ImagePath(role))
	img, err := s.ReadConfig(dir)
	if err != nil {
		if errors.Is(err, domain.ErrMissingArtifact) {
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "image has not been built"),
				"image", string(role)), "hint", "run 'tandem build "+string(role)+"'")
		}
		return nil, err
	}
	if img.Role != role {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrImageReadFailed, "image config names another role"),
			"expected", string(role)), "found", string(img.Role))
	}
	return img, nil
}
