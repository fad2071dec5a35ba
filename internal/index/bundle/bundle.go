// Package bundle implements search.Index over the local review database.
//
// A bundle is a directory holding search.db, built by `logsearch update`.
// Movie and book reviews from every configured source share one FTS index,
// so a single query searches both logs.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/excerpt"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/search"
)

// DBFile is the database file name inside a bundle directory.
const DBFile = "search.db"

// Filter keys understood by Search and set on every document.
const (
	FilterKind     = search.KindFilter
	FilterSource   = "source"
	FilterMinStars = "min_stars"
	FilterStars    = "stars"
	FilterGenre    = "genre"
	FilterAuthor   = "author"
)

// ErrNotInitialized is returned by calls made before Init or after Destroy.
var ErrNotInitialized = errors.New("bundle index not initialized")

// Index is a search.Index backed by a bundle database.
type Index struct {
	mu     sync.RWMutex
	db     *db.DB
	logger zerolog.Logger
}

// New creates an uninitialized bundle index.
func New() *Index {
	return &Index{logger: log.Component("bundle")}
}

// Path returns the database path inside bundleDir.
func Path(bundleDir string) string {
	return filepath.Join(bundleDir, DBFile)
}

// Init opens the bundle database. The bundle must already exist.
func (x *Index) Init(ctx context.Context, bundlePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	database, err := db.Open(Path(bundlePath))
	if err != nil {
		return fmt.Errorf("load bundle %s: %w", bundlePath, err)
	}

	x.mu.Lock()
	old := x.db
	x.db = database
	x.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	x.logger.Debug().Str("path", database.Path()).Msg("bundle opened")
	return nil
}

// Attach uses an already open database, for callers that own it.
func (x *Index) Attach(database *db.DB) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.db = database
}

// Destroy closes the bundle database. It is a no-op when nothing is open.
func (x *Index) Destroy(context.Context) error {
	x.mu.Lock()
	database := x.db
	x.db = nil
	x.mu.Unlock()

	if database == nil {
		return nil
	}
	return database.Close()
}

func (x *Index) conn(ctx context.Context) (*db.DB, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.db == nil {
		return nil, ErrNotInitialized
	}
	return x.db.WithContext(ctx), nil
}

// Search runs a ranked full-text query. Handles load their document lazily.
func (x *Index) Search(ctx context.Context, query string, opts *search.Options) (*search.Results, error) {
	conn, err := x.conn(ctx)
	if err != nil {
		return nil, err
	}

	dbOpts := searchOptions(opts)
	rows, err := conn.Search(query, dbOpts)
	if err != nil {
		return nil, err
	}

	res := &search.Results{
		Results:               make([]search.Result, len(rows)),
		UnfilteredResultCount: len(rows),
	}
	if dbOpts != (db.SearchOptions{}) {
		all, err := conn.Search(query, db.SearchOptions{})
		if err != nil {
			return nil, err
		}
		res.UnfilteredResultCount = len(all)
	}

	for i, row := range rows {
		id := row.ID
		res.Results[i] = search.NewResult(id, -row.Rank, nil, func(ctx context.Context) (*search.Document, error) {
			return x.Document(ctx, id, query)
		})
	}
	return res, nil
}

// Document loads one review as a search document with its excerpt
// highlighted for query.
func (x *Index) Document(ctx context.Context, id, query string) (*search.Document, error) {
	conn, err := x.conn(ctx)
	if err != nil {
		return nil, err
	}
	review, err := conn.GetReview(id)
	if err != nil {
		return nil, err
	}
	return ToDocument(review, query), nil
}

// ToDocument converts a review into the document shape the renderer consumes.
func ToDocument(r *models.Review, query string) *search.Document {
	filters := map[string][]string{
		FilterKind:   {r.Kind},
		FilterSource: {r.SourceID},
		FilterStars:  {strconv.FormatFloat(r.Stars, 'f', -1, 64)},
	}
	if genres := r.GenreList(); len(genres) > 0 {
		filters[FilterGenre] = genres
	}
	if authors := r.AuthorList(); len(authors) > 0 {
		filters[FilterAuthor] = authors
	}

	return &search.Document{
		URL:     r.URL,
		Excerpt: excerpt.Markup(excerpt.Extract(r.Excerpt, query)),
		Meta: search.Meta{
			Title:    r.DisplayTitle(),
			Image:    r.Image,
			ImageAlt: r.ImageAlt,
		},
		Filters: filters,
	}
}

func searchOptions(opts *search.Options) db.SearchOptions {
	var out db.SearchOptions
	if opts == nil {
		return out
	}
	out.Kind = opts.Filters[FilterKind]
	out.SourceID = opts.Filters[FilterSource]
	if v, err := strconv.ParseFloat(opts.Filters[FilterMinStars], 64); err == nil {
		out.MinStars = v
	}
	return out
}
