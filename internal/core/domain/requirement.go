package domain

import (
	"regexp"
	"strings"

	"go.trai.ch/zerr"
)

// Operator is a version comparison operator.
type Operator string

const (
	// OpEqual matches an exact version, or a release prefix when the version ends in .*.
	OpEqual Operator = "=="
	// OpNotEqual is the negation of OpEqual.
	OpNotEqual Operator = "!="
	// OpGreaterEqual matches versions at or above the given version.
	OpGreaterEqual Operator = ">="
	// OpLessEqual matches versions at or below the given version.
	OpLessEqual Operator = "<="
	// OpGreater matches versions above the given version.
	OpGreater Operator = ">"
	// OpLess matches versions below the given version.
	OpLess Operator = "<"
	// OpCompatible matches versions at or above the given version within the same release series.
	OpCompatible Operator = "~="
	// OpArbitrary matches the version string exactly.
	OpArbitrary Operator = "==="
)

// operators is ordered longest first so prefixes do not shadow longer operators.
var operators = []Operator{OpArbitrary, OpCompatible, OpEqual, OpNotEqual, OpGreaterEqual, OpLessEqual, OpGreater, OpLess}

var (
	namePattern        = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*(.*)$`)
	nameSeparatorRegex = regexp.MustCompile(`[-_.]+`)
)

// NormalizeName returns the canonical form of a package name: lowercase with runs of
// '-', '_' and '.' collapsed to a single '-'.
func NormalizeName(name string) string {
	return nameSeparatorRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Specifier is a single version constraint such as >=1.0 or ==1.2.*.
type Specifier struct {
	Op       Operator
	Version  Version
	Wildcard bool
}

// ParseSpecifier parses a single constraint.
func ParseSpecifier(s string) (Specifier, error) {
	text := strings.TrimSpace(s)

	var op Operator
	for _, candidate := range operators {
		if strings.HasPrefix(text, string(candidate)) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Specifier{}, zerr.With(zerr.Wrap(ErrInvalidSpecifier, "missing comparison operator"), "specifier", s)
	}

	versionText := strings.TrimSpace(strings.TrimPrefix(text, string(op)))
	spec := Specifier{Op: op}

	if strings.HasSuffix(versionText, ".*") {
		if op != OpEqual && op != OpNotEqual {
			return Specifier{}, zerr.With(
				zerr.Wrap(ErrInvalidSpecifier, "wildcards are only allowed with == and !="), "specifier", s)
		}
		spec.Wildcard = true
		versionText = strings.TrimSuffix(versionText, ".*")
	}

	v, err := ParseVersion(versionText)
	if err != nil {
		return Specifier{}, zerr.With(zerr.Wrap(ErrInvalidSpecifier, "invalid version in specifier"), "specifier", s)
	}
	if spec.Wildcard && (v.IsPrerelease() || v.IsPostrelease() || v.HasLocal()) {
		return Specifier{}, zerr.With(
			zerr.Wrap(ErrInvalidSpecifier, "wildcard prefix must be a plain release"), "specifier", s)
	}
	if v.HasLocal() && op != OpEqual && op != OpNotEqual && op != OpArbitrary {
		return Specifier{}, zerr.With(
			zerr.Wrap(ErrInvalidSpecifier, "local versions are only allowed with == and !="), "specifier", s)
	}
	if op == OpCompatible && len(v.release) < 2 {
		return Specifier{}, zerr.With(
			zerr.Wrap(ErrInvalidSpecifier, "~= requires at least two release segments"), "specifier", s)
	}
	spec.Version = v

	return spec, nil
}

// Matches reports whether v satisfies the constraint. A local label on v is ignored unless
// the constraint names one, and > and < exclude post- and pre-releases of the named version.
func (s Specifier) Matches(v Version) bool {
	if !s.Version.HasLocal() && s.Op != OpArbitrary {
		v = v.Public()
	}
	switch s.Op {
	case OpEqual:
		if s.Wildcard {
			return v.hasReleasePrefix(s.Version.release)
		}
		return v.Equal(s.Version)
	case OpNotEqual:
		if s.Wildcard {
			return !v.hasReleasePrefix(s.Version.release)
		}
		return !v.Equal(s.Version)
	case OpGreaterEqual:
		return v.Compare(s.Version) >= 0
	case OpLessEqual:
		return v.Compare(s.Version) <= 0
	case OpGreater:
		if v.IsPostrelease() && !s.Version.IsPostrelease() && v.sameRelease(s.Version) {
			return false
		}
		return v.Compare(s.Version) > 0
	case OpLess:
		if v.IsPrerelease() && !s.Version.IsPrerelease() && v.sameRelease(s.Version) {
			return false
		}
		return v.Compare(s.Version) < 0
	case OpCompatible:
		series := s.Version.release[:len(s.Version.release)-1]
		return v.Compare(s.Version) >= 0 && v.hasReleasePrefix(series)
	case OpArbitrary:
		return strings.EqualFold(v.raw, s.Version.raw)
	default:
		return false
	}
}

// String renders the constraint, e.g. >=1.0 or ==1.2.*.
func (s Specifier) String() string {
	out := string(s.Op) + s.Version.String()
	if s.Wildcard {
		out += ".*"
	}
	return out
}

// Requirement is one Manifest entry: a package name and the constraints its locked
// version must satisfy.
type Requirement struct {
	Name       string
	Extras     []string
	Specifiers []Specifier
}

// ParseRequirement parses a requirement such as "apilib[async]>=1.0,<2; python_version>'3.8'".
// Environment markers are dropped and extras are recorded but not resolved.
func ParseRequirement(line string) (Requirement, error) {
	text, _, _ := strings.Cut(line, ";")
	text = strings.TrimSpace(text)
	if text == "" {
		return Requirement{}, zerr.With(zerr.Wrap(ErrInvalidRequirement, "empty requirement"), "line", line)
	}

	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return Requirement{}, zerr.With(zerr.Wrap(ErrInvalidRequirement, "missing package name"), "line", line)
	}

	rest := strings.TrimSpace(m[3])
	if strings.HasPrefix(rest, "@") {
		return Requirement{}, zerr.With(
			zerr.Wrap(ErrInvalidRequirement, "direct URL requirements are not supported"), "line", line)
	}
	rest = strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")

	req := Requirement{Name: NormalizeName(m[1])}
	if m[2] != "" {
		for _, extra := range strings.Split(m[2], ",") {
			if e := NormalizeName(extra); e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
	}

	if rest != "" {
		for _, part := range strings.Split(rest, ",") {
			spec, err := ParseSpecifier(part)
			if err != nil {
				return Requirement{}, zerr.With(zerr.Wrap(err, ErrInvalidRequirement.Error()), "line", line)
			}
			req.Specifiers = append(req.Specifiers, spec)
		}
	}

	return req, nil
}

// SatisfiedBy reports whether v satisfies every constraint. A pre-release only satisfies
// the requirement when one of the constraints names a pre-release itself.
func (r Requirement) SatisfiedBy(v Version) bool {
	if v.IsPrerelease() && !r.allowsPrereleases() {
		return false
	}
	for _, s := range r.Specifiers {
		if !s.Matches(v) {
			return false
		}
	}
	return true
}

func (r Requirement) allowsPrereleases() bool {
	for _, s := range r.Specifiers {
		if s.Version.IsPrerelease() {
			return true
		}
	}
	return false
}

// String renders the requirement in manifest syntax.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	specs := make([]string, 0, len(r.Specifiers))
	for _, s := range r.Specifiers {
		specs = append(specs, s.String())
	}
	b.WriteString(strings.Join(specs, ","))
	return b.String()
}

func (r Requirement) clone() Requirement {
	out := Requirement{Name: r.Name}
	if r.Extras != nil {
		out.Extras = append([]string(nil), r.Extras...)
	}
	if r.Specifiers != nil {
		out.Specifiers = append([]Specifier(nil), r.Specifiers...)
	}
	return out
}
