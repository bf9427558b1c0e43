package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Violation describes one way a Lockfile disagrees with its Manifest.
type Violation struct {
	Package string
	Reason  string
}

// String renders the violation as "package: reason".
func (v Violation) String() string {
	return v.Package + ": " + v.Reason
}

// ConsistencyOptions tunes CheckConsistency.
type ConsistencyOptions struct {
	// RequireHashes rejects pins without a --hash.
	RequireHashes bool
}

// FindViolations returns every inconsistency between m and l, sorted so that repeated
// checks of the same inputs report identically. Locked packages the manifest does not
// mention are transitive dependencies and are accepted.
func FindViolations(m Manifest, l Lockfile, opts ConsistencyOptions) []Violation {
	var out []Violation

	for _, req := range m.requirements {
		pin, ok := l.Lookup(req.Name)
		if !ok {
			out = append(out, Violation{Package: req.Name, Reason: "required as " + req.String() + " but not locked"})
			continue
		}
		if !req.SatisfiedBy(pin.Version) {
			out = append(out, Violation{
				Package: req.Name,
				Reason:  "locked version " + pin.Version.String() + " does not satisfy " + req.String(),
			})
		}
	}

	if opts.RequireHashes {
		for _, pin := range l.packages {
			if !pin.Verifiable() {
				out = append(out, Violation{Package: pin.Name, Reason: "pinned without --hash"})
			}
		}
	}

	slices.SortFunc(out, func(a, b Violation) int {
		if c := strings.Compare(a.Package, b.Package); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})

	return out
}

// CheckConsistency returns an ErrResolution error listing every violation, or nil when the
// Lockfile satisfies the Manifest. No re-resolution is attempted.
func CheckConsistency(m Manifest, l Lockfile, opts ConsistencyOptions) error {
	violations := FindViolations(m, l, opts)
	if len(violations) == 0 {
		return nil
	}

	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, v.String())
	}

	return zerr.With(
		zerr.Wrap(ErrResolution, "lockfile is inconsistent with manifest\n"+strings.Join(lines, "\n")),
		"violations", len(violations),
	)
}
