package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// InstalledPackage is one package materialized into a Dependency Environment.
type InstalledPackage struct {
	Name    string `cbor:"1,keyasint" json:"name"`
	Version string `cbor:"2,keyasint" json:"version"`
	Digest  string `cbor:"3,keyasint,omitempty" json:"digest,omitempty"`
	Path    string `cbor:"4,keyasint" json:"path"`
}

// Receipt records what the installer put into an environment. It is the only source of
// truth for the environment's package set.
type Receipt struct {
	Runtime  string             `cbor:"1,keyasint"`
	Packages []InstalledPackage `cbor:"2,keyasint"`
}

// DependencyEnvironment is the installed package set owned by exactly one image.
type DependencyEnvironment struct {
	Root     string
	Runtime  string
	Packages []InstalledPackage
}

// Names returns the sorted installed package names.
func (e DependencyEnvironment) Names() []string {
	names := make([]string, 0, len(e.Packages))
	for _, p := range e.Packages {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the installed package named name.
func (e DependencyEnvironment) Lookup(name string) (InstalledPackage, bool) {
	name = NormalizeName(name)
	for _, p := range e.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return InstalledPackage{}, false
}

// MatchLockfile checks that the environment holds exactly the pinned package set at the
// pinned versions, no more and no fewer.
func (e DependencyEnvironment) MatchLockfile(l Lockfile) error {
	var problems []string

	seen := make(map[string]bool, len(e.Packages))
	for _, p := range e.Packages {
		seen[p.Name] = true
		pin, ok := l.Lookup(p.Name)
		if !ok {
			problems = append(problems, p.Name+" is installed but not locked")
			continue
		}
		if pin.Version.String() != p.Version {
			problems = append(problems, p.Name+" is installed at "+p.Version+" but locked at "+pin.Version.String())
		}
	}
	for _, name := range l.Names() {
		if !seen[name] {
			problems = append(problems, name+" is locked but not installed")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return zerr.With(
		zerr.Wrap(ErrResolution, "environment does not match lockfile\n"+strings.Join(problems, "\n")),
		"environment", e.Root,
	)
}
