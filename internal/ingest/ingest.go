// Package ingest downloads the review feeds and syncs them into the search
// index.
//
// Every feed is downloaded before any is processed, so a network failure
// leaves the index untouched. Each source is then replaced wholesale: new
// slugs are inserted, changed ones updated and vanished ones deleted.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/excerpt"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/pkg/version"
)

// Config configures an Ingester.
type Config struct {
	// DataDir is where feeds are stored as <name>.json.
	DataDir string
	Sources []config.SourceConfig
	// Offline skips downloads and processes the feeds already on disk.
	Offline bool
	// RequestsPerSecond paces downloads. <= 0 means 2.
	RequestsPerSecond float64
}

// Tracker receives per-source sync counts.
type Tracker interface {
	TrackIndexUpdated(sourceID string, upserted, deleted int)
}

// Stage names reported through ProgressFunc.
const (
	StageDownload = "download"
	StageProcess  = "process"
)

// Progress describes one step of a run.
type Progress struct {
	Stage  string
	Source string
	Done   bool
	Detail string
}

// ProgressFunc is called as each source moves through a stage.
type ProgressFunc func(Progress)

// SourceResult summarizes one source.
type SourceResult struct {
	Name     string
	Entries  int
	Upserted int
	Deleted  int
}

// Result summarizes a run.
type Result struct {
	Sources  []SourceResult
	Duration time.Duration
}

// Total returns the number of feed entries across all sources.
func (r *Result) Total() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Entries
	}
	return n
}

// Ingester syncs review feeds into a database.
type Ingester struct {
	cfg       Config
	db        *db.DB
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	tracker   Tracker
	logger    zerolog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(in *Ingester) { in.http = c }
}

// WithTracker reports sync counts to t.
func WithTracker(t Tracker) Option {
	return func(in *Ingester) { in.tracker = t }
}

// New creates an ingester writing into database.
func New(cfg Config, database *db.DB, opts ...Option) *Ingester {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	in := &Ingester{
		cfg:       cfg,
		db:        database,
		http:      &http.Client{Timeout: 60 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		userAgent: "logsearch/" + version.Version,
		logger:    log.Component("ingest"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run downloads every feed, then syncs each into the database.
func (in *Ingester) Run(ctx context.Context, progress ProgressFunc) (*Result, error) {
	start := time.Now()
	if progress == nil {
		progress = func(Progress) {}
	}

	if err := os.MkdirAll(in.cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	paths := config.Paths{Data: in.cfg.DataDir}

	if !in.cfg.Offline {
		for _, src := range in.cfg.Sources {
			progress(Progress{Stage: StageDownload, Source: src.Name})
			in.logger.Info().Str("source", src.Name).Str("url", src.UpdatesURL).Msg("downloading updates")

			res, err := in.Download(ctx, src.UpdatesURL, paths.FeedPath(src), FeedDownload)
			if err != nil {
				return nil, fmt.Errorf("download %s updates: %w", src.Name, err)
			}
			progress(Progress{Stage: StageDownload, Source: src.Name, Done: true, Detail: fmt.Sprintf("%d bytes", res.Bytes)})
		}
	}

	result := &Result{}
	for _, src := range in.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress(Progress{Stage: StageProcess, Source: src.Name})

		sr, err := in.processSource(src, paths.FeedPath(src))
		if err != nil {
			in.logger.Error().Err(err).Str("source", src.Name).Msg("processing updates failed")
			return nil, err
		}
		result.Sources = append(result.Sources, sr)
		if in.tracker != nil {
			in.tracker.TrackIndexUpdated(src.Name, sr.Upserted, sr.Deleted)
		}
		progress(Progress{Stage: StageProcess, Source: src.Name, Done: true,
			Detail: fmt.Sprintf("%d reviews, %d removed", sr.Entries, sr.Deleted)})
	}

	if err := in.db.SetSyncMeta(models.SyncMetaLastUpdate, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("record update time: %w", err)
	}

	result.Duration = time.Since(start)
	in.logger.Info().Int("reviews", result.Total()).Dur("elapsed", result.Duration).Msg("updates processed")
	return result, nil
}

func (in *Ingester) processSource(src config.SourceConfig, path string) (SourceResult, error) {
	sr := SourceResult{Name: src.Name}

	data, err := os.ReadFile(path)
	if err != nil {
		return sr, fmt.Errorf("read %s feed: %w", src.Name, err)
	}

	entries, err := ParseFeed(src, data)
	if err != nil {
		return sr, err
	}
	if len(entries) == 0 {
		in.logger.Warn().Str("source", src.Name).Str("path", path).Msg("no items found in feed")
	}

	reviews := make([]models.Review, len(entries))
	for i, e := range entries {
		reviews[i] = ToReview(src, e)
	}

	upserted, deleted, err := in.db.ReplaceSource(src.Name, reviews)
	if err != nil {
		return sr, fmt.Errorf("sync %s: %w", src.Name, err)
	}

	now := time.Now()
	if err := in.db.UpsertSource(&models.Source{
		ID:           src.Name,
		Kind:         string(src.Kind),
		UpdatesURL:   src.UpdatesURL,
		BaseURL:      src.BaseURL,
		ReviewCount:  len(reviews),
		LastSyncedAt: &now,
	}); err != nil {
		return sr, fmt.Errorf("record source %s: %w", src.Name, err)
	}

	sr.Entries, sr.Upserted, sr.Deleted = len(entries), upserted, deleted
	return sr, nil
}

// ToReview maps a feed entry onto the stored review.
func ToReview(src config.SourceConfig, e Entry) models.Review {
	r := models.Review{
		Slug:     e.Slug,
		SourceID: src.Name,
		Kind:     string(src.Kind),
		Title:    e.Title,
		Excerpt:  excerpt.Plain(e.Excerpt),
		Date:     e.NormalizeDate(),
		URL:      ReviewURL(src.BaseURL, e.Slug),
		Image:    ResolveURL(src.BaseURL, e.Image),
	}
	if e.Stars != nil {
		r.Stars = *e.Stars
	}

	switch src.Kind {
	case config.SourceBook:
		r.Authors = models.JoinList(e.Authors)
		r.Year = e.WorkYear
		r.WorkKind = e.Kind
		r.ImageAlt = "A cover of " + r.DisplayTitle()
	default:
		r.Year = e.Year
		r.Genres = models.JoinList(e.Genres)
		r.ImageAlt = "A poster from " + r.DisplayTitle()
	}
	return r
}

// ReviewURL is the public page of a review.
func ReviewURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/reviews/" + slug + "/"
}

// ResolveURL joins a feed path onto the source base URL. Absolute URLs are
// returned unchanged.
func ResolveURL(baseURL, path string) string {
	if isAbsoluteURL(path) {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}
