package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reviewlog/logsearch/internal/models"
)

// ErrNotFound is returned when a review does not exist.
var ErrNotFound = errors.New("review not found")

// SearchResult wraps a review with its search rank.
type SearchResult struct {
	models.Review
	Rank float64 `gorm:"column:rank"`
}

// SearchOptions narrows a full-text search.
type SearchOptions struct {
	Kind     string // movie or book; empty means both
	SourceID string
	MinStars float64
	Limit    int // <= 0 means no limit
}

// UpsertReview creates or updates a review keyed by ID.
func (db *DB) UpsertReview(r *models.Review) error {
	if r.ID == "" {
		r.ID = models.ReviewID(r.SourceID, r.Slug)
	}
	r.IndexedAt = time.Now()
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"slug", "source_id", "kind",
			"title", "excerpt", "year", "authors", "genres", "work_kind",
			"stars", "date",
			"url", "image", "image_alt",
			"indexed_at", "updated_at",
		}),
	}).Create(r).Error
}

// GetReview returns a review by ID.
func (db *DB) GetReview(id string) (*models.Review, error) {
	var r models.Review
	if err := db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &r, nil
}

// GetReviewBySlug returns a review by source and slug.
func (db *DB) GetReviewBySlug(sourceID, slug string) (*models.Review, error) {
	return db.GetReview(models.ReviewID(sourceID, slug))
}

// ReplaceSource makes the source's reviews exactly match reviews: every
// review is upserted and any stored slug missing from the feed is deleted.
func (db *DB) ReplaceSource(sourceID string, reviews []models.Review) (upserted, deleted int, err error) {
	err = db.Transaction(func(tx *DB) error {
		keep := make(map[string]bool, len(reviews))
		for i := range reviews {
			r := &reviews[i]
			r.SourceID = sourceID
			r.ID = models.ReviewID(sourceID, r.Slug)
			if err := tx.UpsertReview(r); err != nil {
				return fmt.Errorf("upsert %s: %w", r.Slug, err)
			}
			keep[r.ID] = true
			upserted++
		}

		var existing []string
		if err := tx.Model(&models.Review{}).Where("source_id = ?", sourceID).Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("list existing reviews: %w", err)
		}

		var stale []string
		for _, id := range existing {
			if !keep[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			res := tx.Where("id IN ?", stale).Delete(&models.Review{})
			if res.Error != nil {
				return fmt.Errorf("delete stale reviews: %w", res.Error)
			}
			deleted = int(res.RowsAffected)
		}
		return nil
	})
	return upserted, deleted, err
}

// CountReviews returns the number of reviews, optionally for one source.
func (db *DB) CountReviews(sourceID string) (int64, error) {
	q := db.Model(&models.Review{})
	if sourceID != "" {
		q = q.Where("source_id = ?", sourceID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Search performs FTS5 full-text search with BM25 ranking, best first.
func (db *DB) Search(query string, opts SearchOptions) ([]SearchResult, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	var (
		where []string
		args  = []interface{}{ftsQuery}
	)
	if opts.Kind != "" {
		where = append(where, "r.kind = ?")
		args = append(args, opts.Kind)
	}
	if opts.SourceID != "" {
		where = append(where, "r.source_id = ?")
		args = append(args, opts.SourceID)
	}
	if opts.MinStars > 0 {
		where = append(where, "r.stars >= ?")
		args = append(args, opts.MinStars)
	}

	sql := `
		SELECT r.*, bm25(reviews_fts, 10.0, 5.0, 5.0, 2.0, 1.0) as rank
		FROM reviews r
		JOIN reviews_fts fts ON r.rowid = fts.rowid
		WHERE reviews_fts MATCH ?`
	for _, w := range where {
		sql += " AND " + w
	}
	sql += " ORDER BY rank, r.date DESC"
	if opts.Limit > 0 {
		sql += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var results []SearchResult
	if err := db.Raw(sql, args...).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	return results, nil
}

// prepareFTSQuery turns free text into an FTS5 prefix query.
func prepareFTSQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}

	var escaped []string
	for _, term := range terms {
		// Remove FTS5 special characters
		term = strings.NewReplacer(
			`"`, "", "'", "", "(", "", ")", "", "*", "", ":", "", "^", "", "+", "",
			"-", " ",
		).Replace(term)

		for _, part := range strings.Fields(term) {
			switch strings.ToUpper(part) {
			case "AND", "OR", "NOT", "NEAR":
				part = `"` + part + `"`
			}
			escaped = append(escaped, part+"*")
		}
	}

	return strings.Join(escaped, " ")
}

// UpsertSource records a feed and its current review count.
func (db *DB) UpsertSource(src *models.Source) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "updates_url", "base_url", "review_count", "last_synced_at", "updated_at"}),
	}).Create(src).Error
}

// ListSources returns every known feed.
func (db *DB) ListSources() ([]models.Source, error) {
	var sources []models.Source
	err := db.Order("id").Find(&sources).Error
	return sources, err
}
