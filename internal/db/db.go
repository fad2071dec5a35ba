// Package db provides a GORM-based database layer for the review index.
// It uses the pure-Go SQLite driver with FTS5 support.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reviewlog/logsearch/internal/models"
)

// SchemaVersion is bumped when the FTS layout changes.
const SchemaVersion = "1"

// DB wraps the GORM database connection with review-specific operations.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// New creates a new database connection and runs migrations.
func New(cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode: WAL has visibility issues with the pure-Go driver.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wrapped := &DB{DB: db, path: cfg.Path}

	if err := wrapped.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := wrapped.setupFTS(); err != nil {
		return nil, fmt.Errorf("setup FTS: %w", err)
	}

	if err := wrapped.seedSyncMeta(); err != nil {
		return nil, fmt.Errorf("seed sync meta: %w", err)
	}

	return wrapped, nil
}

// Open opens an existing index database without creating it.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return New(DefaultConfig(path))
}

// migrate runs GORM auto-migrations for all models.
func (db *DB) migrate() error {
	return db.AutoMigrate(
		&models.Source{},
		&models.Review{},
		&models.SyncMeta{},
	)
}

// setupFTS creates the FTS5 virtual table and triggers for full-text search.
// Column order matters: bm25 weights in Search follow it.
func (db *DB) setupFTS() error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS reviews_fts USING fts5(
			title,
			authors,
			year,
			genres,
			excerpt,
			content='reviews',
			content_rowid='rowid',
			tokenize='porter unicode61'
		);
	`
	if err := db.Exec(ftsSQL).Error; err != nil {
		return fmt.Errorf("create FTS table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS reviews_ai AFTER INSERT ON reviews BEGIN
			INSERT INTO reviews_fts(rowid, title, authors, year, genres, excerpt)
			VALUES (NEW.rowid, NEW.title, NEW.authors, NEW.year, NEW.genres, NEW.excerpt);
		END;`,

		`CREATE TRIGGER IF NOT EXISTS reviews_ad AFTER DELETE ON reviews BEGIN
			INSERT INTO reviews_fts(reviews_fts, rowid, title, authors, year, genres, excerpt)
			VALUES ('delete', OLD.rowid, OLD.title, OLD.authors, OLD.year, OLD.genres, OLD.excerpt);
		END;`,

		`CREATE TRIGGER IF NOT EXISTS reviews_au AFTER UPDATE ON reviews BEGIN
			INSERT INTO reviews_fts(reviews_fts, rowid, title, authors, year, genres, excerpt)
			VALUES ('delete', OLD.rowid, OLD.title, OLD.authors, OLD.year, OLD.genres, OLD.excerpt);
			INSERT INTO reviews_fts(rowid, title, authors, year, genres, excerpt)
			VALUES (NEW.rowid, NEW.title, NEW.authors, NEW.year, NEW.genres, NEW.excerpt);
		END;`,
	}

	for _, trigger := range triggers {
		if err := db.Exec(trigger).Error; err != nil {
			return fmt.Errorf("create trigger: %w", err)
		}
	}

	return nil
}

// seedSyncMeta inserts default sync metadata if not present.
func (db *DB) seedSyncMeta() error {
	defaults := []models.SyncMeta{
		{Key: models.SyncMetaLastUpdate, Value: ""},
		{Key: models.SyncMetaSchemaVersion, Value: SchemaVersion},
	}

	for _, meta := range defaults {
		if err := db.Where("key = ?", meta.Key).FirstOrCreate(&meta).Error; err != nil {
			return err
		}
	}
	return nil
}

// WithContext returns a DB whose queries are bound to ctx.
func (db *DB) WithContext(ctx context.Context) *DB {
	return &DB{DB: db.DB.WithContext(ctx), path: db.path}
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes fc within a database transaction. A non-nil error
// from fc rolls the transaction back.
func (db *DB) Transaction(fc func(tx *DB) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return fc(&DB{DB: tx, path: db.path})
	})
}

// GetStats returns aggregate statistics about the index.
func (db *DB) GetStats() (*models.ReviewStats, error) {
	stats := models.ReviewStats{BySource: make(map[string]int64)}

	if err := db.Model(&models.Review{}).Count(&stats.TotalReviews).Error; err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	if err := db.Model(&models.Source{}).Count(&stats.TotalSources).Error; err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}

	var rows []struct {
		SourceID string
		Count    int64
	}
	if err := db.Model(&models.Review{}).
		Select("source_id, count(*) as count").
		Group("source_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count reviews by source: %w", err)
	}
	for _, row := range rows {
		stats.BySource[row.SourceID] = row.Count
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.IndexSizeBytes = info.Size()
	}

	if last, err := db.GetSyncMeta(models.SyncMetaLastUpdate); err == nil && last != "" {
		if ts, err := time.Parse(time.RFC3339, last); err == nil {
			stats.LastUpdated = ts
		}
	}

	return &stats, nil
}
