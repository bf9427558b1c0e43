package progrock

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/vito/progrock"
	"go.trai.ch/tandem/internal/ui/output"
	"go.trai.ch/tandem/internal/ui/style"
)

// ProgressWriter implements progrock.Writer and prints one status line per vertex when
// it completes. Warnings a vertex writes to its stderr are printed as they arrive.
type ProgressWriter struct {
	mu     sync.Mutex
	out    io.Writer
	styles style.Styles
	names  map[string]string
	done   map[string]bool
}

// NewProgressWriter creates a ProgressWriter on out, defaulting to stderr.
func NewProgressWriter(out io.Writer) *ProgressWriter {
	if out == nil {
		out = os.Stderr
	}
	r := lipgloss.NewRenderer(out, termenv.WithProfile(output.ColorProfile()))
	return &ProgressWriter{
		out:    out,
		styles: style.NewStyles(r),
		names:  make(map[string]string),
		done:   make(map[string]bool),
	}
}

// WriteStatus prints vertices that completed in this update.
func (p *ProgressWriter) WriteStatus(update *progrock.StatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, v := range update.Vertexes {
		p.names[v.Id] = v.Name
	}

	for _, l := range update.Logs {
		if l.Stream != progrock.LogStream_STDERR {
			continue
		}
		for _, line := range strings.Split(strings.TrimRight(string(l.Data), "\n"), "\n") {
			if line == "" {
				continue
			}
			if _, err := fmt.Fprintln(p.out, p.styles.Muted.Render("  "+p.names[l.Vertex]+": "+line)); err != nil {
				return err
			}
		}
	}

	for _, v := range update.Vertexes {
		if v.Completed == nil || p.done[v.Id] {
			continue
		}
		p.done[v.Id] = true
		if _, err := fmt.Fprintln(p.out, p.render(v)); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing; every line is written as soon as its vertex completes.
func (p *ProgressWriter) Close() error {
	return nil
}

func (p *ProgressWriter) render(v *progrock.Vertex) string {
	switch {
	case v.Error != nil:
		return fmt.Sprintf("%s %s %s",
			p.styles.Failed.Render(style.Cross), v.Name, p.styles.Muted.Render(*v.Error))
	case v.Cached:
		return fmt.Sprintf("%s %s %s",
			p.styles.Cached.Render(style.Check), v.Name, p.styles.Muted.Render("(cached)"))
	default:
		line := fmt.Sprintf("%s %s", p.styles.Executed.Render(style.Check), v.Name)
		if v.Started != nil {
			elapsed := v.Completed.AsTime().Sub(v.Started.AsTime()).Round(time.Millisecond)
			line += " " + p.styles.Muted.Render(elapsed.String())
		}
		return line
	}
}
