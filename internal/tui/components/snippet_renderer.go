package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reviewlog/logsearch/internal/excerpt"
	"github.com/reviewlog/logsearch/internal/tui/theme"
)

// SnippetStyles holds the styles for rendering excerpts.
type SnippetStyles struct {
	Normal    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultSnippetStyles returns the default snippet styles.
func DefaultSnippetStyles() SnippetStyles {
	return SnippetStyles{
		Normal: lipgloss.NewStyle().
			Foreground(theme.Current.TextMuted),
		Highlight: lipgloss.NewStyle().
			Foreground(theme.Current.TextHighlight).
			Background(theme.Current.Mark).
			Bold(true),
	}
}

// RenderSnippet renders an excerpt with its matches highlighted, wrapped to
// width. Text is styled run by run and never interpreted as markup.
func RenderSnippet(snippet excerpt.Snippet, width int) string {
	return RenderSnippetWithStyles(snippet, width, DefaultSnippetStyles())
}

// RenderSnippetWithStyles renders an excerpt with custom styles.
func RenderSnippetWithStyles(snippet excerpt.Snippet, width int, styles SnippetStyles) string {
	if snippet.Text == "" {
		return ""
	}

	var result strings.Builder
	for _, seg := range snippet.Segments() {
		if seg.Highlighted {
			result.WriteString(styles.Highlight.Render(seg.Text))
		} else {
			result.WriteString(styles.Normal.Render(seg.Text))
		}
	}

	if width <= 0 {
		return result.String()
	}
	return lipgloss.NewStyle().Width(width).Render(result.String())
}
