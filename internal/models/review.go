// Package models defines the core data structures for logsearch.
package models

import (
	"strings"
	"time"

	"github.com/reviewlog/logsearch/internal/hash"
)

// Review kinds.
const (
	KindMovie = "movie"
	KindBook  = "book"
)

// Review is one movie or book review from a source feed.
type Review struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"` // truncated SHA256 of source/slug
	Slug string `gorm:"uniqueIndex:idx_review_slug_source;size:200" json:"slug"`

	SourceID string `gorm:"uniqueIndex:idx_review_slug_source;size:50;index" json:"source_id"`
	Kind     string `gorm:"size:10;index" json:"kind"`

	// Content
	Title    string `gorm:"size:500;index" json:"title"`
	Excerpt  string `gorm:"type:text" json:"excerpt"`
	Year     string `gorm:"size:10" json:"year,omitempty"`      // Release year for movies, work year for books
	Authors  string `gorm:"size:500" json:"authors,omitempty"`  // Comma-separated
	Genres   string `gorm:"size:500" json:"genres,omitempty"`   // Comma-separated
	WorkKind string `gorm:"size:50" json:"work_kind,omitempty"` // Novel, Nonfiction, ...

	// Grading
	Stars float64 `gorm:"default:0;index" json:"stars"` // 0 to 5 in half steps
	Date  string  `gorm:"size:10;index" json:"date"`    // Review date, YYYY-MM-DD

	// Presentation
	URL      string `gorm:"size:500" json:"url"`
	Image    string `gorm:"size:500" json:"image,omitempty"` // Absolute, resolved against the source base URL
	ImageAlt string `gorm:"size:500" json:"image_alt,omitempty"`

	// Timestamps (GORM auto-manages CreatedAt/UpdatedAt)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IndexedAt time.Time `json:"indexed_at"`
}

// TableName specifies the table name for GORM.
func (Review) TableName() string {
	return "reviews"
}

// ReviewID derives the stable ID of a review from its source and slug.
func ReviewID(sourceID, slug string) string {
	return hash.TruncatedSHA256(sourceID, slug)
}

// AuthorList splits the stored author list.
func (r *Review) AuthorList() []string {
	return splitList(r.Authors)
}

// GenreList splits the stored genre list.
func (r *Review) GenreList() []string {
	return splitList(r.Genres)
}

// DisplayTitle is the title with the year appended for movies.
func (r *Review) DisplayTitle() string {
	if r.Kind == KindMovie && r.Year != "" {
		return r.Title + " (" + r.Year + ")"
	}
	if r.Kind == KindBook && r.Authors != "" {
		return r.Title + " by " + r.Authors
	}
	return r.Title
}

// JoinList stores a list in a single column.
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ReviewStats provides aggregate statistics.
type ReviewStats struct {
	TotalReviews   int64            `json:"total_reviews"`
	BySource       map[string]int64 `json:"by_source"`
	TotalSources   int64            `json:"total_sources"`
	LastUpdated    time.Time        `json:"last_updated"`
	IndexSizeBytes int64            `json:"index_size_bytes"`
}
