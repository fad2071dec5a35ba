package tui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reviewlog/logsearch/internal/search"
)

// surfaceMsg carries one surface operation into the program. Operations
// from a surface of an earlier open are dropped by the model.
type surfaceMsg struct {
	epoch uint64
	apply func(m *Model) tea.Cmd
}

// mailbox delivers messages to the program in order without blocking the
// sender. The controller paints while holding its lock, and Program.Send
// blocks until Update picks the message up, so sends happen on a pump
// goroutine.
type mailbox struct {
	send func(tea.Msg)

	mu     sync.Mutex
	queue  []tea.Msg
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

func newMailbox(send func(tea.Msg)) *mailbox {
	b := &mailbox{
		send: send,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go b.pump()
	return b
}

func (b *mailbox) post(msg tea.Msg) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *mailbox) pump() {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		b.mu.Lock()
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, msg := range batch {
			b.send(msg)
		}
	}
}

func (b *mailbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// surface implements search.Surface for one open of the search modal.
type surface struct {
	epoch  uint64
	box    *mailbox
	scroll *atomic.Int64
}

var _ search.Surface = (*surface)(nil)

func (s *surface) post(apply func(m *Model) tea.Cmd) {
	s.box.post(surfaceMsg{epoch: s.epoch, apply: apply})
}

func (s *surface) SetClearVisible(visible bool) {
	s.post(func(m *Model) tea.Cmd {
		m.searchBar.SetAffixVisible(visible)
		return nil
	})
}

func (s *surface) ClearInput() {
	s.post(func(m *Model) tea.Cmd {
		m.searchBar.Clear()
		return nil
	})
}

func (s *surface) FocusInput() {
	s.post(func(m *Model) tea.Cmd { return m.focusInput() })
}

func (s *surface) SetCounter(text string) {
	s.post(func(m *Model) tea.Cmd {
		m.counter = text
		return nil
	})
}

func (s *surface) ShowResults(items []search.ResultSlots) {
	s.post(func(m *Model) tea.Cmd {
		m.results.ShowResults(items)
		return nil
	})
}

func (s *surface) ShowSkeleton(n int, withImages bool) {
	s.post(func(m *Model) tea.Cmd {
		m.results.ShowSkeleton(n, withImages)
		m.searchesPerformed++
		return nil
	})
}

func (s *surface) ShowEmpty(message string) {
	s.post(func(m *Model) tea.Cmd {
		m.results.ShowEmpty(message)
		return nil
	})
}

func (s *surface) ShowError(message string) {
	s.post(func(m *Model) tea.Cmd {
		m.results.ShowError(message)
		return nil
	})
}

func (s *surface) ClearResults() {
	s.post(func(m *Model) tea.Cmd {
		m.results.Clear()
		return nil
	})
}

func (s *surface) SetLoadMore(visible bool, label string) {
	s.post(func(m *Model) tea.Cmd {
		m.loadMoreVisible = visible
		m.loadMoreLabel = label
		return nil
	})
}

// ScrollOffset answers from the value the model publishes after every
// update, so it never waits on the program.
func (s *surface) ScrollOffset() int {
	return int(s.scroll.Load())
}

func (s *surface) SetScrollOffset(offset int) {
	s.post(func(m *Model) tea.Cmd {
		m.results.SetScrollOffset(offset)
		return nil
	})
}

func (s *surface) Announce(message string) {
	s.post(func(m *Model) tea.Cmd { return m.announce(message) })
}
