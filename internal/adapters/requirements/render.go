package requirements

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/tandem/internal/core/domain"
)

// RenderLockfile writes l in pip-compile layout, sorted by name, one --hash per line.
func RenderLockfile(w io.Writer, l domain.Lockfile) error {
	var b strings.Builder
	for _, name := range l.Names() {
		pkg, _ := l.Lookup(name)
		b.WriteString(pkg.String())
		for _, h := range pkg.Hashes {
			fmt.Fprintf(&b, " \\\n    %s=%s", hashOption, h)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderManifest writes one requirement per line in declaration order.
func RenderManifest(w io.Writer, m domain.Manifest) error {
	var b strings.Builder
	for _, req := range m.Requirements() {
		b.WriteString(req.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
