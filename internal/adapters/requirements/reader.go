// Package requirements reads and renders requirements-style Manifest and Lockfile files.
package requirements

import (
	"bufio"
	"io"
	"os"
	"strings"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

const hashOption = "--hash"

var _ ports.RequirementsReader = (*Reader)(nil)

// Reader implements ports.RequirementsReader for pip-style requirement files.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadManifest parses the manifest at path.
func (r *Reader) ReadManifest(path string) (domain.Manifest, error) {
	lines, err := readLogicalLines(path, domain.ErrManifestParse)
	if err != nil {
		return domain.Manifest{}, err
	}
	return ParseManifest(lines)
}

// ReadLockfile parses the lockfile at path.
func (r *Reader) ReadLockfile(path string) (domain.Lockfile, error) {
	lines, err := readLogicalLines(path, domain.ErrLockfileParse)
	if err != nil {
		return domain.Lockfile{}, err
	}
	return ParseLockfile(lines)
}

// Line is one logical line: continuation lines joined and comments removed.
type Line struct {
	Number int
	Text   string
}

// ParseManifest builds a Manifest from logical lines. Options such as -r or --index-url
// are rejected: the manifest only declares requirements.
func ParseManifest(lines []Line) (domain.Manifest, error) {
	reqs := make([]domain.Requirement, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line.Text, "-") {
			return domain.Manifest{}, zerr.With(
				zerr.Wrap(domain.ErrManifestParse, "options are not supported in the manifest"), "line", line.Number)
		}
		req, err := domain.ParseRequirement(line.Text)
		if err != nil {
			return domain.Manifest{}, zerr.With(zerr.Wrap(err, domain.ErrManifestParse.Error()), "line", line.Number)
		}
		reqs = append(reqs, req)
	}
	return domain.NewManifest(reqs...), nil
}

// ParseLockfile builds a Lockfile from logical lines. Every entry must be an exact == pin
// optionally followed by --hash options.
func ParseLockfile(lines []Line) (domain.Lockfile, error) {
	pkgs := make([]domain.PinnedPackage, 0, len(lines))
	for _, line := range lines {
		pkg, err := parsePin(line)
		if err != nil {
			return domain.Lockfile{}, err
		}
		pkgs = append(pkgs, pkg)
	}

	l, err := domain.NewLockfile(pkgs...)
	if err != nil {
		return domain.Lockfile{}, zerr.Wrap(err, domain.ErrLockfileParse.Error())
	}
	return l, nil
}

func parsePin(line Line) (domain.PinnedPackage, error) {
	fields := strings.Fields(line.Text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "-") {
		return domain.PinnedPackage{}, zerr.With(
			zerr.Wrap(domain.ErrLockfileParse, "expected a pinned requirement"), "line", line.Number)
	}

	// The requirement may contain spaces around the operator, so options are split off
	// at the first "--".
	reqText := line.Text
	var opts []string
	if i := strings.Index(line.Text, " --"); i >= 0 {
		reqText = line.Text[:i]
		opts = strings.Fields(line.Text[i:])
	}

	req, err := domain.ParseRequirement(reqText)
	if err != nil {
		return domain.PinnedPackage{}, zerr.With(zerr.Wrap(err, domain.ErrLockfileParse.Error()), "line", line.Number)
	}
	if len(req.Specifiers) != 1 || req.Specifiers[0].Op != domain.OpEqual || req.Specifiers[0].Wildcard {
		return domain.PinnedPackage{}, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrLockfileParse, "lockfile entries must be exact == pins"),
			"line", line.Number), "requirement", req.String())
	}

	pkg := domain.PinnedPackage{Name: req.Name, Version: req.Specifiers[0].Version}
	for i := 0; i < len(opts); i++ {
		name, value, hasValue := strings.Cut(opts[i], "=")
		if name != hashOption {
			return domain.PinnedPackage{}, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrLockfileParse, "unsupported option"), "line", line.Number), "option", name)
		}
		if !hasValue {
			if i+1 >= len(opts) {
				return domain.PinnedPackage{}, zerr.With(
					zerr.Wrap(domain.ErrLockfileParse, "--hash requires a value"), "line", line.Number)
			}
			i++
			value = opts[i]
		}
		d, err := domain.ParseDigest(value)
		if err != nil {
			return domain.PinnedPackage{}, zerr.With(zerr.Wrap(err, domain.ErrLockfileParse.Error()), "line", line.Number)
		}
		pkg.Hashes = append(pkg.Hashes, d)
	}

	return pkg, nil
}

func readLogicalLines(path string, class error) ([]Line, error) {
	//nolint:gosec // Path comes from the project configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.With(
			zerr.Wrap(domain.ErrMissingArtifact, class.Error()), "path", path), "reason", err.Error())
	}
	defer f.Close() //nolint:errcheck // Read-only file

	lines, err := ScanLines(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(class, err.Error()), "path", path)
	}
	return lines, nil
}

// ScanLines splits r into logical lines. A trailing backslash continues a line, and
// a # starting a line or following whitespace begins a comment.
func ScanLines(r io.Reader) ([]Line, error) {
	var (
		lines   []Line
		pending strings.Builder
		start   int
	)

	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		text := stripComment(scanner.Text())
		if pending.Len() == 0 {
			start = n
		}

		trimmed := strings.TrimRight(text, " \t")
		if strings.HasSuffix(trimmed, `\`) {
			pending.WriteString(strings.TrimSuffix(trimmed, `\`))
			pending.WriteByte(' ')
			continue
		}
		pending.WriteString(text)

		if logical := strings.Join(strings.Fields(pending.String()), " "); logical != "" {
			lines = append(lines, Line{Number: start, Text: logical})
		}
		pending.Reset()
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if logical := strings.Join(strings.Fields(pending.String()), " "); logical != "" {
		lines = append(lines, Line{Number: start, Text: logical})
	}
	return lines, nil
}

func stripComment(s string) string {
	if strings.HasPrefix(strings.TrimSpace(s), "#") {
		return ""
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i]
		}
	}
	return s
}
