// Package index implements the ArtifactSource port for local directory and HTTP package indexes.
package index

import (
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

// Archive suffixes in preference order.
const (
	SuffixGzip = ".tar.gz"
	SuffixZstd = ".tar.zst"
)

// Suffixes returns the accepted artifact suffixes in the order they are tried.
func Suffixes() []string {
	return []string{SuffixGzip, SuffixZstd}
}

// ArtifactName returns the file name of pkg's artifact with the given suffix.
// Both indexes lay artifacts out as <name>/<name>-<version><suffix>.
func ArtifactName(pkg domain.PinnedPackage, suffix string) string {
	return pkg.Name + "-" + pkg.Version.String() + suffix
}

func notFound(pkg domain.PinnedPackage, where string) error {
	err := zerr.Wrap(domain.ErrArtifactNotFound, "no artifact for pinned version")
	return zerr.With(zerr.With(err, "package", pkg.String()), "index", where)
}

var _ ports.IndexOpener = (*Opener)(nil)

// Opener implements ports.IndexOpener.
type Opener struct{}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open returns a DirSource for cfg.Path or a rate limited HTTPSource for cfg.URL.
func (o *Opener) Open(cfg domain.IndexConfig) (ports.ArtifactSource, error) {
	switch {
	case cfg.Path != "" && cfg.URL != "":
		return nil, zerr.Wrap(domain.ErrInvalidConfig, "index path and url are mutually exclusive")
	case cfg.URL != "":
		return NewHTTPSource(cfg.URL, cfg.Rate, cfg.Burst), nil
	case cfg.Path != "":
		return NewDirSource(cfg.Path), nil
	default:
		return nil, zerr.Wrap(domain.ErrInvalidConfig, "no package index configured")
	}
}
