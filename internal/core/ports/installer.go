package ports

import (
	"context"

	"go.trai.ch/tandem/internal/core/domain"
)

// EnvironmentReader loads an installed Dependency Environment.
//
//go:generate mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type EnvironmentReader interface {
	// ReadEnvironment loads the environment at dir from its receipt.
	// It returns domain.ErrMissingArtifact when there is no receipt.
	ReadEnvironment(dir string) (*domain.DependencyEnvironment, error)
}

// Installer materializes a Dependency Environment with frozen semantics.
type Installer interface {
	EnvironmentReader

	// Install validates manifest against lockfile and installs exactly the pinned set into dest.
	// Inconsistent inputs fail with domain.ErrResolution before anything is written, and a
	// failed install leaves nothing at dest.
	Install(ctx context.Context, manifest domain.Manifest, lockfile domain.Lockfile, dest string) (*domain.DependencyEnvironment, error)
}

// InstallerFactory binds an Installer to one project's package index and artifact cache.
type InstallerFactory interface {
	EnvironmentReader

	// ForProject returns an Installer for p.
	ForProject(p *domain.Project) (Installer, error)
}
