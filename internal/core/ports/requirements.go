package ports

import "go.trai.ch/tandem/internal/core/domain"

// RequirementsReader parses the Manifest and Lockfile files.
//
//go:generate mockgen -source=requirements.go -destination=mocks/mock_requirements.go -package=mocks
type RequirementsReader interface {
	// ReadManifest parses a requirements-style manifest.
	ReadManifest(path string) (domain.Manifest, error)

	// ReadLockfile parses a pinned lockfile. Every entry must be an exact pin.
	ReadLockfile(path string) (domain.Lockfile, error)
}
