package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/tui/theme"
)

// PaneMode is what the results pane is currently showing.
type PaneMode int

const (
	PaneCleared PaneMode = iota
	PaneSkeleton
	PaneResults
	PaneEmpty
	PaneError
)

// ResultsPane is the scrollable results container of the search surface.
// It only ever places text into fixed slots.
type ResultsPane struct {
	mode           PaneMode
	items          []search.ResultSlots
	skeletonCount  int
	skeletonImages bool
	message        string
	selected       int

	viewport viewport.Model
	width    int

	// itemLines[i] is the [start, end) content line range of item i. The
	// title line, which is the item's link, is always start.
	itemLines [][2]int
}

// NewResultsPane creates an empty pane.
func NewResultsPane(width, height int) *ResultsPane {
	p := &ResultsPane{
		viewport: viewport.New(width, height),
		width:    width,
	}
	p.viewport.MouseWheelEnabled = false
	return p
}

// Mode returns what the pane is showing.
func (p *ResultsPane) Mode() PaneMode {
	return p.mode
}

// Items returns the result items currently shown.
func (p *ResultsPane) Items() []search.ResultSlots {
	return p.items
}

// Message returns the empty or error message currently shown.
func (p *ResultsPane) Message() string {
	return p.message
}

// ShowResults replaces the pane content with items. The selection is kept
// when it is still in range.
func (p *ResultsPane) ShowResults(items []search.ResultSlots) {
	p.mode = PaneResults
	p.items = items
	p.message = ""
	if p.selected >= len(items) {
		p.selected = max(len(items)-1, 0)
	}
	p.rebuild()
}

// ShowSkeleton shows n placeholder items.
func (p *ResultsPane) ShowSkeleton(n int, withImages bool) {
	p.mode = PaneSkeleton
	p.items = nil
	p.message = ""
	p.skeletonCount = n
	p.skeletonImages = withImages
	p.selected = 0
	p.rebuild()
	p.viewport.GotoTop()
}

// ShowEmpty shows the no-results message.
func (p *ResultsPane) ShowEmpty(message string) {
	p.showMessage(PaneEmpty, message)
}

// ShowError shows an error message.
func (p *ResultsPane) ShowError(message string) {
	p.showMessage(PaneError, message)
}

// Clear empties the pane.
func (p *ResultsPane) Clear() {
	p.showMessage(PaneCleared, "")
}

func (p *ResultsPane) showMessage(mode PaneMode, message string) {
	p.mode = mode
	p.items = nil
	p.message = message
	p.selected = 0
	p.rebuild()
	p.viewport.GotoTop()
}

// SetSize resizes the pane.
func (p *ResultsPane) SetSize(width, height int) {
	p.width = width
	p.viewport.Width = width
	p.viewport.Height = max(height, 1)
	p.rebuild()
}

// Height is the number of lines View renders.
func (p *ResultsPane) Height() int {
	return p.viewport.Height
}

// ScrollOffset returns the first visible content line.
func (p *ResultsPane) ScrollOffset() int {
	return p.viewport.YOffset
}

// SetScrollOffset scrolls to offset, clamped to the content.
func (p *ResultsPane) SetScrollOffset(offset int) {
	p.viewport.SetYOffset(offset)
}

// ScrollBy scrolls by delta lines.
func (p *ResultsPane) ScrollBy(delta int) {
	p.viewport.SetYOffset(p.viewport.YOffset + delta)
}

// Select moves the selection by delta and scrolls it into view.
func (p *ResultsPane) Select(delta int) {
	if p.mode != PaneResults || len(p.items) == 0 {
		return
	}
	p.selected = min(max(p.selected+delta, 0), len(p.items)-1)
	p.rebuild()
	p.scrollToSelection()
}

// SelectIndex selects item i.
func (p *ResultsPane) SelectIndex(i int) {
	if i < 0 || i >= len(p.items) {
		return
	}
	p.selected = i
	p.rebuild()
}

// Selected returns the selected item and its index.
func (p *ResultsPane) Selected() (search.ResultSlots, int, bool) {
	if p.mode != PaneResults || len(p.items) == 0 {
		return search.ResultSlots{}, 0, false
	}
	return p.items[p.selected], p.selected, true
}

// HitTest maps a row of the pane, relative to its top, to a result item.
// onLink is true when the row is the item's title link.
func (p *ResultsPane) HitTest(row int) (index int, onLink bool, ok bool) {
	if p.mode != PaneResults || row < 0 || row >= p.viewport.Height {
		return 0, false, false
	}
	line := p.viewport.YOffset + row
	for i, r := range p.itemLines {
		if line >= r[0] && line < r[1] {
			return i, line == r[0], true
		}
	}
	return 0, false, false
}

// View renders the visible part of the pane.
func (p *ResultsPane) View() string {
	return p.viewport.View()
}

func (p *ResultsPane) scrollToSelection() {
	if p.selected >= len(p.itemLines) {
		return
	}
	r := p.itemLines[p.selected]
	top := p.viewport.YOffset
	if r[0] < top {
		p.viewport.SetYOffset(r[0])
	} else if r[1] > top+p.viewport.Height {
		p.viewport.SetYOffset(r[1] - p.viewport.Height)
	}
}

func (p *ResultsPane) rebuild() {
	var lines []string
	p.itemLines = p.itemLines[:0]

	switch p.mode {
	case PaneResults:
		for i, item := range p.items {
			start := len(lines)
			lines = append(lines, p.renderItem(item, i == p.selected)...)
			p.itemLines = append(p.itemLines, [2]int{start, len(lines)})
		}
	case PaneSkeleton:
		for range p.skeletonCount {
			lines = append(lines, p.renderSkeleton()...)
		}
	case PaneEmpty:
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.Current.TextMuted).
			Width(p.width).
			Render(p.message))
	case PaneError:
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.Current.Error).
			Width(p.width).
			Render(p.message))
	}

	p.viewport.SetContent(strings.Join(lines, "\n"))
}

func (p *ResultsPane) renderItem(item search.ResultSlots, selected bool) []string {
	marker := "  "
	titleStyle := lipgloss.NewStyle().Foreground(theme.Current.Link).Underline(true)
	if selected {
		marker = lipgloss.NewStyle().Foreground(theme.Current.Accent).Render("▸ ")
		titleStyle = titleStyle.Bold(true)
	}

	title := marker + titleStyle.Render(item.Title)
	if item.Kind != "" {
		title += " " + lipgloss.NewStyle().Foreground(theme.KindColor(item.Kind)).Render(item.Kind)
	}
	lines := []string{ansi.Truncate(title, p.width, "…")}

	indent := lipgloss.NewStyle().PaddingLeft(2)
	if item.ImageURL != "" {
		alt := item.ImageAlt
		if alt == "" {
			alt = item.ImageURL
		}
		lines = append(lines, ansi.Truncate(indent.Render(lipgloss.NewStyle().
			Foreground(theme.Current.TextMuted).
			Italic(true).
			Render("▣ "+alt)), p.width, "…"))
	}
	if body := RenderSnippet(item.Excerpt, max(p.width-2, 10)); body != "" {
		lines = append(lines, strings.Split(indent.Render(body), "\n")...)
	}
	return append(lines, "")
}

func (p *ResultsPane) renderSkeleton() []string {
	bar := func(w int) string {
		return "  " + lipgloss.NewStyle().
			Foreground(theme.Current.Skeleton).
			Render(strings.Repeat("░", max(w, 1)))
	}
	w := max(p.width-2, 4)
	lines := []string{bar(w * 2 / 5)}
	if p.skeletonImages {
		lines = append(lines, bar(min(12, w)))
	}
	return append(lines, bar(w), bar(w*3/4), "")
}
