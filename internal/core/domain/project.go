package domain

import (
	"path/filepath"

	"go.trai.ch/zerr"
)

// IndexConfig locates the package index artifacts are fetched from.
// Exactly one of Path and URL is set.
type IndexConfig struct {
	Path  string
	URL   string
	Rate  float64
	Burst int
}

// Project is the loaded tandem.yaml with every path made absolute.
type Project struct {
	Root          string
	Runtime       string
	ManifestPath  string
	LockfilePath  string
	RequireHashes bool
	Index         IndexConfig
	Images        map[Role]ImageSpec
}

// Image returns the spec for role.
func (p *Project) Image(role Role) (ImageSpec, error) {
	spec, ok := p.Images[role]
	if !ok {
		return ImageSpec{}, zerr.With(zerr.Wrap(ErrUnknownRole, "role is not configured"), "role", role)
	}
	return spec, nil
}

// Path joins rel onto the project root.
func (p *Project) Path(rel string) string {
	return filepath.Join(p.Root, rel)
}

// ConsistencyOptions returns the options CheckConsistency runs with for this project.
func (p *Project) ConsistencyOptions() ConsistencyOptions {
	return ConsistencyOptions{RequireHashes: p.RequireHashes}
}
