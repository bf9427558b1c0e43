package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// PinnedPackage is one Lockfile entry: an exact version and the digests its artifact may have.
type PinnedPackage struct {
	Name    string
	Version Version
	Hashes  []Digest
}

// String renders the pin as name==version.
func (p PinnedPackage) String() string {
	return p.Name + "==" + p.Version.String()
}

// Verifiable reports whether the pin carries at least one digest.
func (p PinnedPackage) Verifiable() bool {
	return len(p.Hashes) > 0
}

func (p PinnedPackage) clone() PinnedPackage {
	out := p
	if p.Hashes != nil {
		out.Hashes = append([]Digest(nil), p.Hashes...)
	}
	return out
}

// Lockfile is the fully pinned dependency snapshot. It is immutable: the constructor and
// every accessor copy their slices.
type Lockfile struct {
	packages []PinnedPackage
	index    map[string]int
}

// NewLockfile builds a Lockfile. Names are normalized and a name pinned twice is rejected.
func NewLockfile(pkgs ...PinnedPackage) (Lockfile, error) {
	l := Lockfile{index: make(map[string]int, len(pkgs))}
	for _, p := range pkgs {
		p = p.clone()
		p.Name = NormalizeName(p.Name)
		if _, dup := l.index[p.Name]; dup {
			return Lockfile{}, zerr.With(zerr.Wrap(ErrDuplicatePackage, ErrLockfileParse.Error()), "package", p.Name)
		}
		if p.Version.IsZero() {
			return Lockfile{}, zerr.With(zerr.Wrap(ErrInvalidVersion, ErrLockfileParse.Error()), "package", p.Name)
		}
		l.index[p.Name] = len(l.packages)
		l.packages = append(l.packages, p)
	}
	return l, nil
}

// Packages returns a copy of the pins in file order.
func (l Lockfile) Packages() []PinnedPackage {
	out := make([]PinnedPackage, 0, len(l.packages))
	for _, p := range l.packages {
		out = append(out, p.clone())
	}
	return out
}

// Lookup returns the pin for name, which is normalized first.
func (l Lockfile) Lookup(name string) (PinnedPackage, bool) {
	i, ok := l.index[NormalizeName(name)]
	if !ok {
		return PinnedPackage{}, false
	}
	return l.packages[i].clone(), true
}

// Names returns the sorted package names.
func (l Lockfile) Names() []string {
	names := make([]string, 0, len(l.packages))
	for _, p := range l.packages {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of pins.
func (l Lockfile) Len() int {
	return len(l.packages)
}

// Canonical returns one line per pin, name==version followed by its sorted hashes, with
// lines sorted by name.
func (l Lockfile) Canonical() []string {
	out := make([]string, 0, len(l.packages))
	for _, p := range l.packages {
		hashes := make([]string, 0, len(p.Hashes))
		for _, h := range p.Hashes {
			hashes = append(hashes, h.String())
		}
		slices.Sort(hashes)
		out = append(out, strings.Join(append([]string{p.String()}, hashes...), " "))
	}
	slices.Sort(out)
	return out
}
