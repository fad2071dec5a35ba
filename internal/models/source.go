package models

import "time"

// Source is a review feed merged into the index.
type Source struct {
	ID         string `gorm:"primaryKey;size:50" json:"id"` // movielog, booklog
	Kind       string `gorm:"size:10" json:"kind"`
	UpdatesURL string `gorm:"size:500" json:"updates_url"`
	BaseURL    string `gorm:"size:500" json:"base_url"`

	ReviewCount int `gorm:"default:0" json:"review_count"`

	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Source) TableName() string {
	return "sources"
}

// SyncMeta stores sync metadata as key-value pairs.
type SyncMeta struct {
	Key       string    `gorm:"primaryKey;size:50" json:"key"`
	Value     string    `gorm:"size:500" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (SyncMeta) TableName() string {
	return "sync_meta"
}

// Sync metadata keys.
const (
	SyncMetaLastUpdate    = "last_update"
	SyncMetaSchemaVersion = "schema_version"
	SyncMetaTrackingID    = "tracking_id"
)
