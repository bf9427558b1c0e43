package ports

import (
	"context"

	"go.trai.ch/tandem/internal/core/domain"
)

// ImageStore persists built Service Images.
//
//go:generate mockgen -source=image.go -destination=mocks/mock_image.go -package=mocks
type ImageStore interface {
	// WriteConfig writes the image config into dir.
	WriteConfig(dir string, img domain.ServiceImage) error

	// ReadConfig reads the image config from dir.
	ReadConfig(dir string) (*domain.ServiceImage, error)

	// Commit atomically replaces the image for role under root with the staged dir.
	Commit(root, staging string, role domain.Role) (*domain.ServiceImage, error)

	// Load returns the committed image for role.
	// It returns domain.ErrMissingArtifact when no image was built.
	Load(root string, role domain.Role) (*domain.ServiceImage, error)
}

// ImageExporter writes a Service Image as an OCI archive.
type ImageExporter interface {
	// Export writes img to dest and returns the image digest.
	Export(ctx context.Context, img domain.ServiceImage, dest string) (string, error)
}
