package ports

import (
	"context"
	"io"

	"go.trai.ch/tandem/internal/core/domain"
)

// ArtifactSource fetches package artifacts from a package index.
//
//go:generate mockgen -source=artifact.go -destination=mocks/mock_artifact.go -package=mocks
type ArtifactSource interface {
	// Fetch writes the artifact for exactly the pinned version of pkg into w and returns its
	// file name, whose extension names the archive format.
	// It returns domain.ErrArtifactNotFound when the index has no such artifact.
	Fetch(ctx context.Context, pkg domain.PinnedPackage, w io.Writer) (string, error)
}

// IndexOpener opens the package index a project is configured with.
type IndexOpener interface {
	// Open returns the source for cfg. Exactly one of cfg.Path and cfg.URL must be set.
	Open(cfg domain.IndexConfig) (ArtifactSource, error)
}
