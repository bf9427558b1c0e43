// Package style holds the colors and icons used by CLI output.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Arrow   = "▸"
)

// Styles are the stage status line styles bound to one renderer.
type Styles struct {
	Executed lipgloss.Style
	Cached   lipgloss.Style
	Failed   lipgloss.Style
	Muted    lipgloss.Style
}

// NewStyles builds the status styles for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Executed: r.NewStyle().Foreground(Green),
		Cached:   r.NewStyle().Foreground(Iris),
		Failed:   r.NewStyle().Foreground(Red).Bold(true),
		Muted:    r.NewStyle().Foreground(Slate),
	}
}
