// Package tui contains the Bubble Tea user interface: a page with a search
// surface that opens over it on the toggle shortcut.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"

	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/telemetry"
	"github.com/reviewlog/logsearch/internal/tui/components"
	"github.com/reviewlog/logsearch/internal/tui/theme"
)

const (
	// AnnouncementTTL is how long a status announcement stays visible.
	AnnouncementTTL = time.Second
	// LinkCloseDelay is the grace period between opening a result link and
	// closing the surface.
	LinkCloseDelay = 100 * time.Millisecond

	maxFrameWidth = 88
	minFrameWidth = 30
	frameTop      = 1
	wheelStep     = 3
)

// Open and close triggers reported to telemetry.
const (
	TriggerShortcut = "shortcut"
	TriggerStartup  = "startup"
	TriggerEscape   = "escape"
	TriggerOutside  = "outside_click"
	TriggerLink     = "link"
	TriggerQuit     = "quit"
)

// Options configures a Model.
type Options struct {
	Controller *search.Controller
	Telemetry  telemetry.Client
	Platform   Platform
	Stats      *models.ReviewStats

	// StartOpen opens the surface on startup with InitialQuery in the input.
	StartOpen    bool
	InitialQuery string

	// OpenURL and CopyText default to the system browser and clipboard.
	OpenURL  func(url string) error
	CopyText func(text string) error
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctrl      *search.Controller
	telemetry telemetry.Client
	logger    zerolog.Logger
	keymap    Keymap
	styles    Styles
	help      help.Model
	platform  Platform
	stats     *models.ReviewStats
	openURL   func(string) error
	copyText  func(string) error

	// Surface
	searchBar       *components.SearchBar
	results         *components.ResultsPane
	counter         string
	loadMoreVisible bool
	loadMoreLabel   string
	status          string
	statusID        int

	open         bool
	openedAt     time.Time
	epoch        uint64
	box          *mailbox
	scroll       atomic.Int64
	startOpen    bool
	initialQuery string

	// State
	width    int
	height   int
	ready    bool
	quitting bool
	layout   frameLayout

	// Session tracking
	sessionStart      time.Time
	searchesPerformed int
}

// frameLayout is where the surface and its parts sit on screen.
type frameLayout struct {
	x, y, w, h int
	barX, barY int
	paneY      int
	loadMoreY  int
}

func (l frameLayout) contains(x, y int) bool {
	return x >= l.x && x < l.x+l.w && y >= l.y && y < l.y+l.h
}

// Message types for Bubble Tea
type (
	initDoneMsg struct {
		epoch uint64
		err   error
	}
	loadMoreDoneMsg    struct{ err error }
	announceExpiredMsg struct{ id int }
	closeAfterOpenMsg  struct{ epoch uint64 }
	linkOpenFailedMsg  struct{ err error }
)

// NewModel creates a new TUI model.
func NewModel(opts Options) *Model {
	tc := opts.Telemetry
	if tc == nil {
		tc = telemetry.Noop()
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = OpenURL
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = CopyText
	}

	h := help.New()
	h.ShortSeparator = " • "

	return &Model{
		ctrl:         opts.Controller,
		telemetry:    tc,
		logger:       log.Component("tui"),
		keymap:       DefaultKeymap(opts.Platform.ShortcutLabel()),
		styles:       DefaultStyles(),
		help:         h,
		platform:     opts.Platform,
		stats:        opts.Stats,
		openURL:      openURL,
		copyText:     copyText,
		searchBar:    components.NewSearchBar("Search reviews..."),
		results:      components.NewResultsPane(60, 10),
		startOpen:    opts.StartOpen,
		initialQuery: opts.InitialQuery,
		sessionStart: time.Now(),
	}
}

// Attach connects the model to the program's message loop. It must be called
// before the program starts.
func (m *Model) Attach(send func(tea.Msg)) {
	m.box = newMailbox(send)
}

// Run starts the program and blocks until it exits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	m.Attach(p.Send)
	defer m.shutdown()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.startOpen {
		m.searchBar.SetValue(m.initialQuery)
		return m.openSurface(TriggerStartup)
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.scroll.Store(int64(m.results.ScrollOffset()))
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.relayout()
		return nil

	case surfaceMsg:
		if !m.open || msg.epoch != m.epoch {
			return nil
		}
		return msg.apply(m)

	case initDoneMsg:
		if msg.err != nil || !m.open || msg.epoch != m.epoch {
			return nil
		}
		// Text typed before the controller started initializing was not
		// queued by it.
		if v := m.searchBar.Value(); v != "" && m.ctrl.State().Kind() == search.KindIdle && !m.ctrl.Busy() {
			m.ctrl.HandleInput(v)
		}
		return nil

	case loadMoreDoneMsg:
		return nil

	case announceExpiredMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return nil

	case closeAfterOpenMsg:
		if msg.epoch == m.epoch {
			m.closeSurface(TriggerLink)
		}
		return nil

	case linkOpenFailedMsg:
		m.logger.Warn().Err(msg.err).Msg("could not open link")
		return m.announce("Could not open link")

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.open && m.searchBar.Focused() {
		return m.searchBar.Update(msg)
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.quitting {
		return ""
	}
	if !m.open {
		return m.pageView()
	}

	l := m.layout
	frame := m.frameView()
	lines := strings.Split(frame, "\n")
	pad := strings.Repeat(" ", l.x)
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Repeat("\n", l.y) + strings.Join(lines, "\n")
}

func (m *Model) pageView() string {
	var b strings.Builder
	b.WriteString(m.styles.PageTitle.Render("logsearch"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.PageHint.Render(fmt.Sprintf("Press %s to search movie and book reviews.", m.platform.ShortcutLabel())))
	b.WriteString("\n")
	if m.stats != nil {
		b.WriteString(m.styles.PageHint.Render(fmt.Sprintf("%d reviews from %d sources", m.stats.TotalReviews, m.stats.TotalSources)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keymap.ClosedHelp()))
	return m.styles.Page.Render(b.String())
}

func (m *Model) frameView() string {
	cw := m.contentWidth()

	loadMore := ""
	if m.loadMoreVisible {
		loadMore = lipgloss.NewStyle().
			Foreground(theme.Current.Accent).
			Bold(true).
			Render("[ " + m.loadMoreLabel + " ]")
	}

	bindings := m.keymap.ListHelp()
	if m.searchBar.Focused() {
		bindings = m.keymap.InputHelp()
	}

	pane := lipgloss.NewStyle().
		Height(m.results.Height()).
		MaxHeight(m.results.Height()).
		Render(m.results.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.searchBar.View(),
		m.styles.Counter.Render(ansi.Truncate(m.counter, cw, "…")),
		pane,
		loadMore,
		m.styles.Status.Render(ansi.Truncate(m.status, cw, "…")),
		ansi.Truncate(m.help.ShortHelpView(bindings), cw, "…"),
	)
	return m.styles.Frame.Width(cw + 2).Render(content)
}

func (m *Model) contentWidth() int {
	return m.layout.w - 4
}

// relayout sizes the surface to the window. The frame holds the search bar
// (three lines), the counter, the results pane, the load-more row, the
// status line and the help line, inside a one-cell border.
func (m *Model) relayout() {
	w := min(max(m.width-4, minFrameWidth), maxFrameWidth)
	paneH := max(m.height-frameTop-10, 3)

	l := frameLayout{
		x: max((m.width-w)/2, 0),
		y: frameTop,
		w: w,
		h: paneH + 9,
	}
	l.barX = l.x + 2
	l.barY = l.y + 1
	l.paneY = l.barY + m.searchBar.Height() + 1
	l.loadMoreY = l.paneY + paneH
	m.layout = l

	cw := w - 4
	m.searchBar.SetWidth(cw)
	m.results.SetSize(cw, paneH)
	m.help.Width = cw
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keymap

	if key.Matches(msg, k.Quit) {
		m.quitting = true
		m.closeSurface(TriggerQuit)
		m.trackSessionExit()
		return tea.Quit
	}

	if key.Matches(msg, k.Toggle) {
		m.telemetry.TrackKeyboardShortcut(msg.String(), m.contextName())
		if m.open {
			m.closeSurface(TriggerShortcut)
			return nil
		}
		return m.openSurface(TriggerShortcut)
	}

	if !m.open {
		if msg.String() == "q" {
			m.quitting = true
			m.trackSessionExit()
			return tea.Quit
		}
		return nil
	}

	if key.Matches(msg, k.Close) {
		m.closeSurface(TriggerEscape)
		return nil
	}

	if m.searchBar.Focused() {
		switch {
		case key.Matches(msg, k.Blur):
			// Enter never submits; the search already follows the input.
			m.searchBar.Blur()
			return nil
		case msg.Type == tea.KeyDown || msg.Type == tea.KeyTab:
			m.searchBar.Blur()
			return nil
		}
		before := m.searchBar.Value()
		cmd := m.searchBar.HandleKey(msg)
		if after := m.searchBar.Value(); after != before {
			m.ctrl.HandleInput(after)
		}
		return cmd
	}

	switch {
	case key.Matches(msg, k.Up):
		m.results.Select(-1)
	case key.Matches(msg, k.Down):
		m.results.Select(1)
	case key.Matches(msg, k.PageUp):
		m.results.ScrollBy(-m.results.Height())
	case key.Matches(msg, k.PageDown):
		m.results.ScrollBy(m.results.Height())
	case key.Matches(msg, k.Open):
		if item, i, ok := m.results.Selected(); ok {
			return m.openResult(item, i)
		}
	case key.Matches(msg, k.Copy):
		return m.copySelected()
	case key.Matches(msg, k.LoadMore):
		return m.loadMore()
	case key.Matches(msg, k.Focus):
		return m.focusInput()
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace:
		// Typing from the list goes back to the input.
		cmd := m.focusInput()
		before := m.searchBar.Value()
		cmd2 := m.searchBar.HandleKey(msg)
		if after := m.searchBar.Value(); after != before {
			m.ctrl.HandleInput(after)
		}
		return tea.Batch(cmd, cmd2)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if !m.open {
		return nil
	}
	l := m.layout

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.results.ScrollBy(-wheelStep)
		return nil
	case tea.MouseButtonWheelDown:
		m.results.ScrollBy(wheelStep)
		return nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	if !l.contains(msg.X, msg.Y) {
		m.closeSurface(TriggerOutside)
		return nil
	}

	// Clicks inside the frame never close the surface.
	bx, by := msg.X-l.barX, msg.Y-l.barY
	if m.searchBar.AffixHit(bx, by) {
		m.ctrl.Clear()
		return nil
	}
	if by >= 0 && by < m.searchBar.Height() {
		return m.focusInput()
	}

	if row := msg.Y - l.paneY; row >= 0 && row < m.results.Height() {
		i, onLink, ok := m.results.HitTest(row)
		if !ok {
			return nil
		}
		m.searchBar.Blur()
		m.results.SelectIndex(i)
		if onLink {
			return m.openResult(m.results.Items()[i], i)
		}
		return nil
	}

	if msg.Y == l.loadMoreY && m.loadMoreVisible {
		return m.loadMore()
	}
	return nil
}

// openSurface shows the search surface and lazily initializes the index.
func (m *Model) openSurface(trigger string) tea.Cmd {
	if m.open {
		return nil
	}
	m.open = true
	m.openedAt = time.Now()
	m.epoch++
	m.resetSurface()
	m.telemetry.TrackSurfaceOpened(trigger)

	s := &surface{epoch: m.epoch, box: m.box, scroll: &m.scroll}
	epoch := m.epoch
	ctrl := m.ctrl
	initCmd := func() tea.Msg {
		return initDoneMsg{epoch: epoch, err: ctrl.Initialize(context.Background(), s)}
	}
	return tea.Batch(m.searchBar.Focus(), initCmd)
}

// closeSurface hides the surface and tears the controller down. Reopening
// initializes it again.
func (m *Model) closeSurface(trigger string) {
	if !m.open {
		return
	}
	m.open = false
	m.epoch++
	if err := m.ctrl.Destroy(context.Background()); err != nil {
		m.logger.Warn().Err(err).Msg("search teardown failed")
	}
	m.searchBar.Clear()
	m.searchBar.Blur()
	m.resetSurface()
	m.telemetry.TrackSurfaceClosed(trigger, time.Since(m.openedAt))
}

func (m *Model) resetSurface() {
	m.searchBar.SetAffixVisible(m.searchBar.Value() != "")
	m.results.Clear()
	m.counter = ""
	m.loadMoreVisible = false
	m.loadMoreLabel = ""
}

func (m *Model) focusInput() tea.Cmd {
	if !m.open {
		return nil
	}
	return m.searchBar.Focus()
}

// announce shows message in the status line until AnnouncementTTL passes
// or another announcement replaces it.
func (m *Model) announce(message string) tea.Cmd {
	m.statusID++
	m.status = message
	id := m.statusID
	return tea.Tick(AnnouncementTTL, func(time.Time) tea.Msg {
		return announceExpiredMsg{id: id}
	})
}

func (m *Model) openResult(item search.ResultSlots, index int) tea.Cmd {
	m.telemetry.TrackResultOpened(index+1, item.Kind)
	url := item.URL
	open := m.openURL
	epoch := m.epoch

	return tea.Batch(
		func() tea.Msg {
			if err := open(url); err != nil {
				return linkOpenFailedMsg{err: err}
			}
			return nil
		},
		tea.Tick(LinkCloseDelay, func(time.Time) tea.Msg {
			return closeAfterOpenMsg{epoch: epoch}
		}),
	)
}

func (m *Model) copySelected() tea.Cmd {
	item, _, ok := m.results.Selected()
	if !ok {
		return nil
	}
	if err := m.copyText(item.URL); err != nil {
		m.logger.Warn().Err(err).Msg("clipboard write failed")
		return m.announce("Could not copy link")
	}
	m.telemetry.TrackResultCopied(item.Kind)
	return m.announce("Link copied")
}

func (m *Model) loadMore() tea.Cmd {
	if !m.loadMoreVisible {
		return nil
	}
	ctrl := m.ctrl
	return func() tea.Msg {
		return loadMoreDoneMsg{err: ctrl.LoadMore(context.Background())}
	}
}

// shutdown stops message delivery and releases the index.
func (m *Model) shutdown() {
	if m.box != nil {
		m.box.close()
	}
	if err := m.ctrl.Destroy(context.Background()); err != nil {
		m.logger.Warn().Err(err).Msg("search teardown failed")
	}
}

func (m *Model) contextName() string {
	switch {
	case !m.open:
		return "page"
	case m.searchBar.Focused():
		return "input"
	default:
		return "results"
	}
}

// trackSessionExit tracks app exit.
func (m *Model) trackSessionExit() {
	durationMs := time.Since(m.sessionStart).Milliseconds()
	m.telemetry.TrackAppExited("tui", durationMs, m.searchesPerformed)
}
