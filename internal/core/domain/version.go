package domain

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

var versionPattern = regexp.MustCompile(`^` +
	`(?:(\d+)!)?` +
	`(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` +
	`(?:-(\d+)|[-_.]?(post|rev|r)[-_.]?(\d*))?` +
	`(?:[-_.]?(dev)[-_.]?(\d*))?` +
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?` +
	`$`)

// none marks an absent post or dev segment.
const none = -1

// Version is a parsed package version such as 1.2.3, 2.0rc1, 2.9.0.post0 or 2.1.0+cpu.
//
// Versions order as epoch, release (zero padded, so 1.2 equals 1.2.0), then
// dev < a < b < rc < final < post, and finally the local label.
type Version struct {
	raw     string
	epoch   int
	release []int
	pre     string
	preNum  int
	post    int
	dev     int
	local   []string
}

// ParseVersion parses s into a Version.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	m := versionPattern.FindStringSubmatch(strings.TrimPrefix(strings.ToLower(raw), "v"))
	if m == nil {
		return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "unrecognized version format"), "version", s)
	}

	invalid := func(msg string) (Version, error) {
		return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, msg), "version", s)
	}

	v := Version{raw: raw, post: none, dev: none}
	var ok bool
	if v.epoch, ok = number(m[1]); !ok {
		return invalid("epoch is not a number")
	}
	for _, p := range strings.Split(m[2], ".") {
		n, ok := number(p)
		if !ok {
			return invalid("release segment is not a number")
		}
		v.release = append(v.release, n)
	}
	if m[3] != "" {
		v.pre = normalizePreTag(m[3])
		if v.preNum, ok = number(m[4]); !ok {
			return invalid("pre-release number is not a number")
		}
	}
	switch {
	case m[5] != "":
		v.post, ok = number(m[5])
	case m[6] != "":
		v.post, ok = number(m[7])
	}
	if !ok {
		return invalid("post-release number is not a number")
	}
	if m[8] != "" {
		if v.dev, ok = number(m[9]); !ok {
			return invalid("dev-release number is not a number")
		}
	}
	if m[10] != "" {
		v.local = strings.FieldsFunc(m[10], func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	}

	return v, nil
}

// number parses a decimal segment. An empty segment is 0.
func number(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for tests and constants.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func normalizePreTag(tag string) string {
	switch tag {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return tag
	}
}

// String returns the version as written.
func (v Version) String() string {
	return v.raw
}

// Canonical returns the normalized form, e.g. 1.0b2.post1.dev3+cpu.
func (v Version) Canonical() string {
	if v.release == nil {
		return ""
	}
	var b strings.Builder
	if v.epoch != 0 {
		b.WriteString(strconv.Itoa(v.epoch) + "!")
	}
	for i, n := range v.release {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(n))
	}
	if v.pre != "" {
		b.WriteString(v.pre + strconv.Itoa(v.preNum))
	}
	if v.post != none {
		b.WriteString(".post" + strconv.Itoa(v.post))
	}
	if v.dev != none {
		b.WriteString(".dev" + strconv.Itoa(v.dev))
	}
	if len(v.local) > 0 {
		b.WriteString("+" + strings.Join(v.local, "."))
	}
	return b.String()
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool {
	return v.release == nil
}

// IsPrerelease reports whether v carries an a, b, rc or dev segment.
func (v Version) IsPrerelease() bool {
	return v.pre != "" || v.dev != none
}

// IsPostrelease reports whether v carries a post segment.
func (v Version) IsPostrelease() bool {
	return v.post != none
}

// HasLocal reports whether v carries a +local label.
func (v Version) HasLocal() bool {
	return len(v.local) > 0
}

// Release returns a copy of the release segments.
func (v Version) Release() []int {
	out := make([]int, len(v.release))
	copy(out, v.release)
	return out
}

// Public returns v without its local label.
func (v Version) Public() Version {
	if len(v.local) == 0 {
		return v
	}
	v.raw, _, _ = strings.Cut(v.raw, "+")
	v.local = nil
	return v
}

// Compare returns -1, 0 or +1 depending on whether v is lower, equal or higher than o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.epoch, o.epoch); c != 0 {
		return c
	}
	if c := compareRelease(v.release, o.release); c != 0 {
		return c
	}
	if c := cmp.Compare(v.preRank(), o.preRank()); c != 0 {
		return c
	}
	if v.pre != "" && o.pre != "" {
		if c := cmp.Compare(v.preNum, o.preNum); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(v.post, o.post); c != 0 {
		return c
	}
	if c := cmp.Compare(v.devRank(), o.devRank()); c != 0 {
		return c
	}
	return compareLocal(v.local, o.local)
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// preRank orders the pre-release phase. A dev release of a final version sorts before its
// pre-releases.
func (v Version) preRank() int {
	switch {
	case v.pre == "a":
		return 1
	case v.pre == "b":
		return 2
	case v.pre == "rc":
		return 3
	case v.dev != none && v.post == none:
		return 0
	default:
		return 4
	}
}

func (v Version) devRank() int {
	if v.dev == none {
		return int(^uint(0) >> 1)
	}
	return v.dev
}

func compareRelease(a, b []int) int {
	for i := range max(len(a), len(b)) {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// compareLocal orders local labels segment by segment. Numeric segments sort above
// alphanumeric ones, and a longer label wins a tie.
func compareLocal(a, b []string) int {
	return slices.CompareFunc(a, b, func(x, y string) int {
		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			return cmp.Compare(xn, yn)
		case xerr == nil:
			return 1
		case yerr == nil:
			return -1
		default:
			return strings.Compare(x, y)
		}
	})
}

// sameRelease reports whether v and o share epoch and zero-padded release.
func (v Version) sameRelease(o Version) bool {
	return v.epoch == o.epoch && compareRelease(v.release, o.release) == 0
}

// hasReleasePrefix reports whether the zero-padded release of v starts with prefix.
func (v Version) hasReleasePrefix(prefix []int) bool {
	for i, want := range prefix {
		got := 0
		if i < len(v.release) {
			got = v.release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}
