package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeIndex serves canned documents per query. Searches for a gated query
// block until the gate is closed or the context ends.
type fakeIndex struct {
	mu sync.Mutex

	docs      map[string][]Document
	gates     map[string]chan struct{}
	initGate  chan struct{}
	initErr   error
	searchErr error
	failData  bool
	ready     bool

	initCalls    int
	destroyCalls int
	searches     []string
	dataCalls    int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		docs:  make(map[string][]Document),
		gates: make(map[string]chan struct{}),
	}
}

func (f *fakeIndex) Init(ctx context.Context, _ string) error {
	f.mu.Lock()
	f.initCalls++
	gate := f.initGate
	err := f.initErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.ready = true
	f.mu.Unlock()
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, _ *Options) (*Results, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	gate := f.gates[query]
	docs := f.docs[query]
	err := f.searchErr
	ready := f.ready
	f.mu.Unlock()

	if !ready {
		return nil, errors.New("index not initialized")
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	res := &Results{UnfilteredResultCount: len(docs)}
	for i, d := range docs {
		res.Results = append(res.Results, NewResult(fmt.Sprintf("%s-%d", query, i), float64(len(docs)-i), nil,
			func(context.Context) (*Document, error) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.dataCalls++
				if f.failData {
					return nil, fmt.Errorf("fragment missing")
				}
				return &d, nil
			}))
	}
	return res, nil
}

func (f *fakeIndex) Destroy(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls++
	f.ready = false
	return nil
}

func (f *fakeIndex) setDocs(query string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = Document{
			URL:     fmt.Sprintf("https://www.franksmovielog.com/reviews/%s-%d/", query, i),
			Excerpt: fmt.Sprintf("a <mark>%s</mark> review", query),
			Meta:    Meta{Title: fmt.Sprintf("%s %d", query, i)},
		}
	}
	f.docs[query] = docs
}

func (f *fakeIndex) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeIndex) searchLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeIndex) counts() (initCalls, destroyCalls, dataCalls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls, f.destroyCalls, f.dataCalls
}

// recordingSurface remembers what was painted and which slots were touched.
type recordingSurface struct {
	mu sync.Mutex

	calls         []string
	counters      []string
	counter       string
	items         []ResultSlots
	skeletons     int
	empty         string
	errMsg        string
	loadMore      bool
	loadMoreLabel string
	scroll        int
	announcements []string
	clearVisible  bool
	inputCleared  int
	focused       int
}

func (s *recordingSurface) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *recordingSurface) SetClearVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("clear-affix")
	s.clearVisible = v
}

func (s *recordingSurface) ClearInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("input")
	s.inputCleared++
}

func (s *recordingSurface) FocusInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("input")
	s.focused++
}

func (s *recordingSurface) SetCounter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("counter")
	s.counter = text
	s.counters = append(s.counters, text)
}

func (s *recordingSurface) resetResults() {
	s.items, s.skeletons, s.empty, s.errMsg = nil, 0, "", ""
	s.scroll = 0 // rebuilding the container loses the scroll position
}

func (s *recordingSurface) ShowResults(items []ResultSlots) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("results")
	s.resetResults()
	s.items = items
}

func (s *recordingSurface) ShowSkeleton(n int, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("results")
	s.resetResults()
	s.skeletons = n
}

func (s *recordingSurface) ShowEmpty(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("results")
	s.resetResults()
	s.empty = message
}

func (s *recordingSurface) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("results")
	s.resetResults()
	s.errMsg = message
}

func (s *recordingSurface) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("results")
	s.resetResults()
}

func (s *recordingSurface) SetLoadMore(visible bool, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("load-more")
	s.loadMore = visible
	s.loadMoreLabel = label
}

func (s *recordingSurface) ScrollOffset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scroll
}

func (s *recordingSurface) SetScrollOffset(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = offset
}

func (s *recordingSurface) Announce(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, message)
}

func (s *recordingSurface) snapshot() recordingSurface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recordingSurface{
		calls:         append([]string(nil), s.calls...),
		counters:      append([]string(nil), s.counters...),
		counter:       s.counter,
		items:         s.items,
		skeletons:     s.skeletons,
		empty:         s.empty,
		errMsg:        s.errMsg,
		loadMore:      s.loadMore,
		loadMoreLabel: s.loadMoreLabel,
		scroll:        s.scroll,
		announcements: append([]string(nil), s.announcements...),
		clearVisible:  s.clearVisible,
		inputCleared:  s.inputCleared,
		focused:       s.focused,
	}
}

func (s *recordingSurface) setScroll(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll = offset
}

func (s *recordingSurface) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

type recordingTracker struct {
	mu       sync.Mutex
	searches []string
	loads    int
	errors   []string
}

func (r *recordingTracker) TrackSearchPerformed(query string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches = append(r.searches, query)
}

func (r *recordingTracker) TrackLoadMore(string, int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
}

func (r *recordingTracker) TrackSearchError(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, kind)
}

func testConfig() Config {
	nop := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.Debounce = 20 * time.Millisecond
	cfg.Timeout = 0
	cfg.Logger = &nop
	return cfg
}

func newTestController(t *testing.T, idx *fakeIndex, cfg Config) (*Controller, *recordingSurface) {
	t.Helper()
	c := NewController(idx, cfg)
	surface := &recordingSurface{}
	t.Cleanup(func() { _ = c.Destroy(context.Background()) })
	return c, surface
}
