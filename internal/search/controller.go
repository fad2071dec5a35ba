package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewlog/logsearch/internal/debounce"
	"github.com/reviewlog/logsearch/internal/log"
)

// Tracker receives search usage events. It is called with the controller
// lock held and must not block.
type Tracker interface {
	TrackSearchPerformed(query string, total int, elapsed time.Duration)
	TrackLoadMore(query string, loaded, visible, total int)
	TrackSearchError(kind string)
}

// Config configures a Controller.
type Config struct {
	BundlePath string
	PageSize   int
	Debounce   time.Duration
	// Timeout bounds each index call. Zero disables it.
	Timeout    time.Duration
	ShowImages bool

	Logger  *zerolog.Logger
	Tracker Tracker
}

// DefaultConfig returns the standard controller settings.
func DefaultConfig() Config {
	return Config{
		PageSize:   10,
		Debounce:   150 * time.Millisecond,
		Timeout:    10 * time.Second,
		ShowImages: true,
	}
}

// Controller turns raw input into search state transitions and paints each
// state into its Surface.
//
// Every asynchronous continuation captures the generation current when it
// started and commits only if it is still current, so only the most recently
// submitted search ever reaches the surface. The lock guards state and is
// never held across an index call.
type Controller struct {
	index    Index
	cfg      Config
	logger   zerolog.Logger
	debounce *debounce.Debouncer[string]

	mu           sync.Mutex
	surface      Surface
	state        State
	generation   uint64
	lifetime     uint64
	attempted    bool
	initializing bool
	initialized  bool
	initFailed   bool
	loadingGen   uint64 // generation of the page load in flight, 0 when none
	pending      *string

	// ctx is canceled by Destroy so in-flight index calls stop early.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates an idle controller over index.
func NewController(index Index, cfg Config) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}

	c := &Controller{
		index: index,
		cfg:   cfg,
		state: IdleState{},
	}
	if cfg.Logger != nil {
		c.logger = *cfg.Logger
	} else {
		c.logger = log.Component("search")
	}
	c.debounce = debounce.New(cfg.Debounce, c.submitSearch)
	return c
}

// Initialize binds the surface and lazily initializes the index. Calls made
// while an initialization is in flight only rebind the surface.
//
// If the index fails to load, the surface shows the initialization error and
// input stops scheduling searches until Initialize is called again.
func (c *Controller) Initialize(ctx context.Context, surface Surface) error {
	c.mu.Lock()
	c.surface = surface
	if c.initialized || c.initializing {
		c.render()
		c.mu.Unlock()
		return nil
	}
	c.initializing = true
	c.initFailed = false
	c.attempted = true
	life := c.lifetime
	c.render()
	c.mu.Unlock()

	initCtx, cancel := c.withTimeout(ctx)
	err := c.index.Init(initCtx, c.cfg.BundlePath)
	cancel()

	c.mu.Lock()
	if life != c.lifetime {
		// Destroyed while loading. The index may have come up after teardown,
		// but it is shared with any newer Initialize, which then owns it.
		reopened := c.initializing || c.initialized
		c.mu.Unlock()
		if err == nil && !reopened {
			_ = c.index.Destroy(context.WithoutCancel(ctx))
		}
		return nil
	}
	defer c.mu.Unlock()

	c.initializing = false
	if err != nil {
		c.initFailed = true
		c.pending = nil
		c.logger.Error().Err(err).Str("bundle", c.cfg.BundlePath).Msg("search index initialization failed")
		c.trackError("initialization")
		c.setState(ErrorState{Message: MsgInitialization})
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	c.initialized = true
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.logger.Debug().Str("bundle", c.cfg.BundlePath).Msg("search index ready")

	if c.pending != nil {
		q := *c.pending
		c.pending = nil
		go c.submitSearch(q)
	}
	return nil
}

// Destroy cancels pending work, invalidates in-flight continuations and tears
// down the index. It is safe after a failed Initialize and safe to repeat.
func (c *Controller) Destroy(ctx context.Context) error {
	c.debounce.Cancel()

	c.mu.Lock()
	c.lifetime++
	c.generation++
	attempted := c.attempted
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.attempted = false
	c.initializing = false
	c.initialized = false
	c.initFailed = false
	c.loadingGen = 0
	c.pending = nil
	c.state = IdleState{}
	c.surface = nil
	c.mu.Unlock()

	if !attempted {
		return nil
	}
	if err := c.index.Destroy(ctx); err != nil {
		return fmt.Errorf("destroy search index: %w", err)
	}
	return nil
}

// HandleInput is called on every keystroke. The clear affix follows the raw
// text immediately; the search itself is debounced.
func (c *Controller) HandleInput(raw string) {
	c.mu.Lock()
	if c.surface != nil {
		c.surface.SetClearVisible(raw != "")
	}
	disabled := c.initFailed
	c.mu.Unlock()

	if disabled {
		return
	}
	c.debounce.Call(raw)
}

// Submit runs a search immediately, dropping any debounced input still
// waiting. It returns once the search has settled.
func (c *Controller) Submit(raw string) {
	c.debounce.Cancel()
	c.submitSearch(raw)
}

// submitSearch is the debounce-settled handler.
func (c *Controller) submitSearch(raw string) {
	query := strings.TrimSpace(raw)

	c.mu.Lock()
	if c.initFailed {
		c.mu.Unlock()
		return
	}
	if !c.initialized {
		if c.initializing {
			c.pending = &raw
		}
		c.mu.Unlock()
		return
	}

	c.generation++
	gen := c.generation
	if query == "" {
		c.setState(IdleState{})
		c.mu.Unlock()
		return
	}
	c.setState(LoadingState{Query: query})
	parent := c.ctx
	c.mu.Unlock()

	ctx, cancel := c.withTimeout(parent)
	defer cancel()
	start := time.Now()

	res, err := c.index.Search(ctx, query, nil)
	if err != nil {
		c.fail(gen, ErrSearch, MsgSearch, err)
		return
	}
	if res == nil {
		res = &Results{}
	}
	if !c.isCurrent(gen, "search") {
		return
	}

	page := res.Results[:min(c.cfg.PageSize, len(res.Results))]
	docs, err := hydrate(ctx, page)
	if err != nil {
		c.fail(gen, ErrSearch, MsgSearch, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logStale(gen, "hydrate")
		return
	}

	if len(docs) == 0 {
		c.setState(EmptyState{Query: query})
	} else {
		c.setState(ResultsState{
			Query:        query,
			All:          res.Results,
			Visible:      docs,
			Total:        len(res.Results),
			VisibleCount: len(docs),
		})
	}

	elapsed := time.Since(start)
	c.logger.Debug().
		Str("query", query).
		Int("total", len(res.Results)).
		Dur("elapsed", elapsed).
		Msg("search settled")
	if c.cfg.Tracker != nil {
		c.cfg.Tracker.TrackSearchPerformed(query, len(res.Results), elapsed)
	}
}

// LoadMore hydrates the next page of handles and appends it. It is a no-op
// unless the controller is showing results with more left to load. Scroll
// offset is preserved across the re-render.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	st, ok := c.state.(ResultsState)
	if !ok || st.VisibleCount >= st.Total || c.loadingMoreCurrent() {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	c.loadingGen = gen
	end := min(st.VisibleCount+c.cfg.PageSize, st.Total, len(st.All))
	next := st.All[st.VisibleCount:end]
	offset := 0
	if c.surface != nil {
		offset = c.surface.ScrollOffset()
	}
	life := c.ctx
	c.mu.Unlock()

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()
	stop := context.AfterFunc(life, cancel)
	defer stop()

	docs, err := hydrate(callCtx, next)

	c.mu.Lock()
	defer c.mu.Unlock()
	// A load for a superseded search must not clear a newer one's flag.
	if c.loadingGen == gen {
		c.loadingGen = 0
	}

	if gen != c.generation {
		c.logStale(gen, "load more")
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.logger.Debug().Err(err).Msg("load more canceled")
			return nil
		}
		err = fmt.Errorf("%w: %w", ErrLoadMore, err)
		c.logger.Error().Err(err).Str("query", st.Query).Msg("load more failed")
		c.trackError("load_more")
		c.setState(ErrorState{Message: MsgLoadMore})
		return err
	}

	c.setState(ResultsState{
		Query:        st.Query,
		All:          st.All,
		Visible:      append(slices.Clip(st.Visible), docs...),
		Total:        st.Total,
		VisibleCount: st.VisibleCount + len(docs),
	})
	if c.surface != nil {
		c.surface.SetScrollOffset(offset)
		c.surface.Announce(fmt.Sprintf("%d more results loaded", len(docs)))
	}
	if c.cfg.Tracker != nil {
		c.cfg.Tracker.TrackLoadMore(st.Query, len(docs), st.VisibleCount+len(docs), st.Total)
	}
	return nil
}

// Clear resets the input, hides the clear affix, refocuses the input and
// returns to idle. An in-flight search can no longer commit afterwards.
func (c *Controller) Clear() {
	c.debounce.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.surface != nil {
		c.surface.ClearInput()
		c.surface.SetClearVisible(false)
		c.surface.FocusInput()
	}
	// The initialization error stays up until the surface is reopened.
	if c.initFailed {
		return
	}
	c.setState(IdleState{})
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the current search generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Ready reports whether the index is initialized.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Busy reports whether a search or page load is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Kind() == KindLoading || c.loadingMoreCurrent() || c.debounce.Pending()
}

// loadingMoreCurrent reports whether a page load for the current search is
// in flight. The lock must be held.
func (c *Controller) loadingMoreCurrent() bool {
	return c.loadingGen != 0 && c.loadingGen == c.generation
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, c.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) isCurrent(gen uint64, stage string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logStale(gen, stage)
		return false
	}
	return true
}

// fail commits an error state if gen is still current. Cancellation is a
// superseded request, not a failure.
func (c *Controller) fail(gen uint64, class error, message string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logStale(gen, "error")
		return
	}
	if errors.Is(err, context.Canceled) {
		c.logger.Debug().Err(err).Msg("search canceled")
		return
	}

	c.logger.Error().Err(fmt.Errorf("%w: %w", class, err)).Msg("search failed")
	c.trackError("search")
	c.setState(ErrorState{Message: message})
}

func (c *Controller) logStale(gen uint64, stage string) {
	c.logger.Debug().
		Uint64("generation", gen).
		Uint64("current", c.generation).
		Str("stage", stage).
		Msg("discarding stale search continuation")
}

func (c *Controller) trackError(kind string) {
	if c.cfg.Tracker != nil {
		c.cfg.Tracker.TrackSearchError(kind)
	}
}

func (c *Controller) setState(st State) {
	c.state = st
	if err := c.render(); err != nil {
		c.logger.Error().Err(err).Msg("render failed")
	}
}
