// Package remote implements search.Index over the HTTP API served by
// `logsearch serve`. Every request goes through a circuit breaker so an
// unreachable server fails fast instead of stalling each keystroke.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/server"
	"github.com/reviewlog/logsearch/pkg/version"
)

var (
	// ErrNotFound is returned when the server has no such document.
	ErrNotFound = errors.New("document not found")
	// ErrNotInitialized is returned by calls made before Init or after Destroy.
	ErrNotInitialized = errors.New("remote index not initialized")
	// ErrUnhealthy is returned by Init when the server reports a bad status.
	ErrUnhealthy = errors.New("remote index unhealthy")
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote index: HTTP %d", e.Status)
	}
	return fmt.Sprintf("remote index: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// Option configures an Index.
type Option func(*Index)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(x *Index) { x.http = c }
}

// WithTripAfter opens the breaker after n consecutive failures.
func WithTripAfter(n uint32) Option {
	return func(x *Index) { x.tripAfter = n }
}

// WithOpenTimeout sets how long the breaker stays open before probing again.
func WithOpenTimeout(d time.Duration) Option {
	return func(x *Index) { x.openTimeout = d }
}

// Index is a search.Index backed by a remote index server.
type Index struct {
	base        *url.URL
	http        *http.Client
	tripAfter   uint32
	openTimeout time.Duration
	cb          *gobreaker.CircuitBreaker[[]byte]
	logger      zerolog.Logger

	mu    sync.RWMutex
	ready bool
}

// New creates a client for the server at rawURL.
func New(rawURL string, opts ...Option) (*Index, error) {
	base, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", rawURL)
	}

	x := &Index{
		base:        base,
		http:        &http.Client{Timeout: 30 * time.Second},
		tripAfter:   5,
		openTimeout: 30 * time.Second,
		logger:      log.Component("remote"),
	}
	for _, opt := range opts {
		opt(x)
	}

	x.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "remote-index",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     x.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= x.tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			x.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
		IsSuccessful: isSuccessful,
	})
	return x, nil
}

// isSuccessful decides what counts against the breaker. Missing documents,
// client errors and canceled calls say nothing about server health.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status < 500 && se.Status != http.StatusTooManyRequests
	}
	return false
}

// Init checks that the server is up and speaks a compatible API version.
// The bundle path is ignored; the server owns its bundle.
func (x *Index) Init(ctx context.Context, _ string) error {
	body, err := x.get(ctx, server.RouteHealth, nil)
	if err != nil {
		return fmt.Errorf("ping %s: %w", x.base, err)
	}

	var health server.HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("decode health: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnhealthy, health.Status)
	}
	if err := version.CheckCompatible(health.Version); err != nil {
		return err
	}

	x.mu.Lock()
	x.ready = true
	x.mu.Unlock()
	x.logger.Debug().Str("url", x.base.String()).Str("server_version", health.Version).Msg("remote index ready")
	return nil
}

// Destroy drops idle connections. The client can be initialized again.
func (x *Index) Destroy(context.Context) error {
	x.mu.Lock()
	x.ready = false
	x.mu.Unlock()
	x.http.CloseIdleConnections()
	return nil
}

func (x *Index) checkReady() error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if !x.ready {
		return ErrNotInitialized
	}
	return nil
}

// Search asks the server for matches. Handles fetch their document on demand.
func (x *Index) Search(ctx context.Context, query string, opts *search.Options) (*search.Results, error) {
	if err := x.checkReady(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set(server.ParamQuery, query)
	if opts != nil {
		for key, v := range opts.Filters {
			params.Set(key, v)
		}
	}

	body, err := x.get(ctx, server.RouteSearch, params)
	if err != nil {
		return nil, err
	}
	var resp server.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	res := &search.Results{
		Results:               make([]search.Result, len(resp.Results)),
		UnfilteredResultCount: resp.UnfilteredResultCount,
	}
	for i, hit := range resp.Results {
		id := hit.ID
		res.Results[i] = search.NewResult(id, hit.Score, hit.Words, func(ctx context.Context) (*search.Document, error) {
			return x.Document(ctx, id, query)
		})
	}
	return res, nil
}

// Document fetches one document with its excerpt highlighted for query.
func (x *Index) Document(ctx context.Context, id, query string) (*search.Document, error) {
	if err := x.checkReady(); err != nil {
		return nil, err
	}

	var params url.Values
	if query != "" {
		params = url.Values{server.ParamQuery: {query}}
	}
	body, err := x.get(ctx, server.RouteDocuments+"/"+url.PathEscape(id), params)
	if err != nil {
		return nil, err
	}
	var doc search.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

func (x *Index) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := *x.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = params.Encode()

	return x.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "logsearch/"+version.Version)

		resp, err := x.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, server.RouteDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if resp.StatusCode/100 != 2 {
			se := &StatusError{Status: resp.StatusCode}
			var apiErr server.ErrorResponse
			if json.Unmarshal(body, &apiErr) == nil {
				se.Code, se.Message = apiErr.Code, apiErr.Message
			}
			return nil, se
		}
		return body, nil
	})
}

// State reports the breaker state, for diagnostics.
func (x *Index) State() gobreaker.State {
	return x.cb.State()
}
