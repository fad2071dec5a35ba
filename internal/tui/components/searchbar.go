package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reviewlog/logsearch/internal/tui/theme"
)

// ClearAffix is the glyph of the clear button inside the search bar.
const ClearAffix = "✕"

// SearchBar is the query input with its clear affix.
type SearchBar struct {
	input       textinput.Model
	width       int
	affixShown  bool
	affixColumn int // column of the affix in the last render, relative to the bar
}

// NewSearchBar creates a new search bar component.
func NewSearchBar(placeholder string) *SearchBar {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "⌕ "
	ti.CharLimit = 200
	ti.Width = 50

	// Style the input with theme colors
	ti.TextStyle = lipgloss.NewStyle().Foreground(theme.Current.Text)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(theme.Current.TextMuted)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(theme.Current.Accent)
	ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.Current.Primary)

	return &SearchBar{
		input: ti,
		width: 56,
	}
}

// View renders the search bar as a rounded box, three lines tall.
func (sb *SearchBar) View() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Current.Accent).
		Padding(0, 1)

	inner := max(sb.width-4, 4)
	input := sb.input.View()
	pad := max(inner-2-lipgloss.Width(input), 0)

	affix := " "
	if sb.affixShown {
		affix = lipgloss.NewStyle().Foreground(theme.Current.TextMuted).Render(ClearAffix)
	}

	// border + padding + input + pad + separator
	sb.affixColumn = 2 + lipgloss.Width(input) + pad + 1

	return boxStyle.Render(input + strings.Repeat(" ", pad) + " " + affix)
}

// Height is the number of lines View renders.
func (sb *SearchBar) Height() int {
	return 3
}

// AffixHit reports whether a click at (x, y), relative to the bar's top-left
// corner, lands on the clear affix. The hit zone is one cell wider on each
// side than the glyph.
func (sb *SearchBar) AffixHit(x, y int) bool {
	if !sb.affixShown || y != 1 {
		return false
	}
	return x >= sb.affixColumn-1 && x <= sb.affixColumn+1
}

// AffixColumn is the column of the clear affix in the last render, relative
// to the bar's left edge.
func (sb *SearchBar) AffixColumn() int {
	return sb.affixColumn
}

// HandleKey passes a key message to the underlying textinput.
// This enables full cursor support including left/right navigation,
// home/end, and proper backspace/delete at cursor position.
// Returns a tea.Cmd that MUST be executed by the parent for cursor blink.
func (sb *SearchBar) HandleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	sb.input, cmd = sb.input.Update(msg)
	return cmd
}

// Update forwards non-key messages such as cursor blinks.
func (sb *SearchBar) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	sb.input, cmd = sb.input.Update(msg)
	return cmd
}

// Focus sets focus on the search bar.
func (sb *SearchBar) Focus() tea.Cmd {
	return sb.input.Focus()
}

// Blur removes focus from the search bar.
func (sb *SearchBar) Blur() {
	sb.input.Blur()
}

// Focused returns true if the search bar has focus.
func (sb *SearchBar) Focused() bool {
	return sb.input.Focused()
}

// Value returns the current search query.
func (sb *SearchBar) Value() string {
	return sb.input.Value()
}

// SetValue sets the search query.
func (sb *SearchBar) SetValue(v string) {
	sb.input.SetValue(v)
}

// Clear clears the search query.
func (sb *SearchBar) Clear() {
	sb.input.Reset()
}

// SetAffixVisible shows or hides the clear affix.
func (sb *SearchBar) SetAffixVisible(visible bool) {
	sb.affixShown = visible
}

// AffixVisible reports whether the clear affix is shown.
func (sb *SearchBar) AffixVisible() bool {
	return sb.affixShown
}

// SetWidth sets the outer width of the search bar.
func (sb *SearchBar) SetWidth(w int) {
	sb.width = w
	// Reduce width for borders, padding, prompt and the affix
	if w > 10 {
		sb.input.Width = w - 10
	}
}
