package installer

import (
	"path/filepath"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
)

var _ ports.InstallerFactory = (*Factory)(nil)

// Factory builds Installers bound to a project's index and artifact cache.
type Factory struct {
	opener ports.IndexOpener
	logger ports.Logger
}

// NewFactory creates a new Factory.
func NewFactory(opener ports.IndexOpener, logger ports.Logger) *Factory {
	return &Factory{opener: opener, logger: logger}
}

// ForProject returns an Installer for p.
func (f *Factory) ForProject(p *domain.Project) (ports.Installer, error) {
	source, err := f.opener.Open(p.Index)
	if err != nil {
		return nil, err
	}
	return New(source, f.logger, Options{
		CacheDir:    filepath.Join(p.Root, domain.DefaultArtifactCachePath()),
		Runtime:     p.Runtime,
		Consistency: p.ConsistencyOptions(),
	}), nil
}

// ReadEnvironment loads the environment at dir from its receipt. It needs no package
// index, so images can be checked where the index is unreachable.
func (f *Factory) ReadEnvironment(dir string) (*domain.DependencyEnvironment, error) {
	return readEnvironment(dir)
}
