package domain

import "slices"

// Manifest is the declared, constraint-level dependency list. It is immutable: the
// constructor and every accessor copy their slices.
type Manifest struct {
	requirements []Requirement
	index        map[string]int
}

// NewManifest builds a Manifest. Repeated names are merged by concatenating their
// constraints, keeping the position of the first occurrence.
func NewManifest(reqs ...Requirement) Manifest {
	m := Manifest{index: make(map[string]int, len(reqs))}
	for _, r := range reqs {
		r = r.clone()
		r.Name = NormalizeName(r.Name)
		if i, ok := m.index[r.Name]; ok {
			m.requirements[i].Specifiers = append(m.requirements[i].Specifiers, r.Specifiers...)
			m.requirements[i].Extras = append(m.requirements[i].Extras, r.Extras...)
			continue
		}
		m.index[r.Name] = len(m.requirements)
		m.requirements = append(m.requirements, r)
	}
	return m
}

// Requirements returns a copy of the requirements in declaration order.
func (m Manifest) Requirements() []Requirement {
	out := make([]Requirement, 0, len(m.requirements))
	for _, r := range m.requirements {
		out = append(out, r.clone())
	}
	return out
}

// Lookup returns the requirement for name, which is normalized first.
func (m Manifest) Lookup(name string) (Requirement, bool) {
	i, ok := m.index[NormalizeName(name)]
	if !ok {
		return Requirement{}, false
	}
	return m.requirements[i].clone(), true
}

// Len returns the number of distinct requirements.
func (m Manifest) Len() int {
	return len(m.requirements)
}

// Canonical returns the requirements rendered and sorted, independent of file layout.
func (m Manifest) Canonical() []string {
	out := make([]string, 0, len(m.requirements))
	for _, r := range m.requirements {
		out = append(out, r.String())
	}
	slices.Sort(out)
	return out
}
