// Package search implements the interactive search controller: a debounced,
// generation-checked state machine over an opaque search index that renders
// into an injected Surface.
package search

import (
	"context"
	"errors"
)

// Index is the search index the controller drives. Implementations must
// tolerate Destroy after a failed or partial Init.
type Index interface {
	// Init loads the index bundle. It is called lazily on first open.
	Init(ctx context.Context, bundlePath string) error
	// Search returns lightweight handles for every match, best first.
	Search(ctx context.Context, query string, opts *Options) (*Results, error)
	// Destroy releases the index.
	Destroy(ctx context.Context) error
}

// Options narrows a search.
type Options struct {
	// Filters restricts matches to documents whose filter values include the given value.
	Filters map[string]string
}

// Results is the outcome of a single Search call. The total match count is
// len(Results), taken before any hydration.
type Results struct {
	Results               []Result
	UnfilteredResultCount int
}

// Loader fetches a document body on demand.
type Loader func(ctx context.Context) (*Document, error)

// Result is a handle to one match. Its document body is loaded lazily.
type Result struct {
	ID    string
	Score float64
	Words []int

	load Loader
}

// NewResult creates a result handle whose body is fetched by load.
func NewResult(id string, score float64, words []int, load Loader) Result {
	return Result{ID: id, Score: score, Words: words, load: load}
}

// ErrNoLoader is returned by Data on a handle built without a loader.
var ErrNoLoader = errors.New("result has no document loader")

// Data hydrates the handle into its full document.
func (r Result) Data(ctx context.Context) (*Document, error) {
	if r.load == nil {
		return nil, ErrNoLoader
	}
	return r.load(ctx)
}

// Document is a hydrated search result as the renderer consumes it.
type Document struct {
	URL     string              `json:"url"`
	Excerpt string              `json:"excerpt"` // HTML fragment, <mark> around matches
	Meta    Meta                `json:"meta"`
	Filters map[string][]string `json:"filters,omitempty"`
}

// Meta holds display metadata for a document.
type Meta struct {
	Title    string `json:"title"`
	Image    string `json:"image,omitempty"`
	ImageAlt string `json:"image_alt,omitempty"`
}
