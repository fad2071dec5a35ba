package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reviewlog/logsearch/internal/tui/theme"
)

// ProgressBar renders a single-line CLI progress bar.
type ProgressBar struct {
	completed int
	total     int
	label     string
	width     int
}

// NewProgressBar creates a new progress bar with the specified total and width.
func NewProgressBar(total int, width int) *ProgressBar {
	if width <= 0 {
		width = 15
	}
	return &ProgressBar{
		total: total,
		width: width,
	}
}

// Update sets the current progress and label.
func (p *ProgressBar) Update(completed int, label string) {
	p.completed = min(completed, p.total)
	p.label = label
}

// Render returns the formatted progress bar string.
func (p *ProgressBar) Render() string {
	if p.total == 0 {
		return ""
	}

	filled := p.width * p.completed / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	labelStyle := lipgloss.NewStyle().Foreground(theme.Current.Success).Bold(true)
	barStyle := lipgloss.NewStyle().Foreground(theme.Current.Success)
	countStyle := lipgloss.NewStyle().Foreground(theme.Current.TextMuted)

	return labelStyle.Render("⚡ ") +
		barStyle.Render("["+bar+"]") +
		countStyle.Render(fmt.Sprintf(" %d/%d ", p.completed, p.total)) +
		labelStyle.Render(p.label)
}

// ClearLine clears the current line for in-place progress updates.
func ClearLine() {
	fmt.Print("\r\033[K")
}
