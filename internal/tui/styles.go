package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/reviewlog/logsearch/internal/tui/theme"
)

// Styles contains all reusable Lipgloss styles for the TUI.
type Styles struct {
	// Page behind the search surface
	Page      lipgloss.Style
	PageTitle lipgloss.Style
	PageHint  lipgloss.Style

	// Search surface frame
	Frame lipgloss.Style

	// Text styles
	Counter lipgloss.Style
	Status  lipgloss.Style
	Help    lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// DefaultStyles returns the default Lipgloss styles using the current theme.
func DefaultStyles() Styles {
	t := theme.Current

	return Styles{
		Page: lipgloss.NewStyle().
			Padding(1, 2),

		PageTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		PageHint: lipgloss.NewStyle().
			Foreground(t.TextMuted),

		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Counter: lipgloss.NewStyle().
			Foreground(t.TextMuted).
			Italic(true),

		Status: lipgloss.NewStyle().
			Foreground(t.Info),

		Help: lipgloss.NewStyle().
			Foreground(t.TextMuted),

		Muted: lipgloss.NewStyle().
			Foreground(t.TextMuted),

		Bold: lipgloss.NewStyle().
			Foreground(t.Text).
			Bold(true),
	}
}
