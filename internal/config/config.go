// Package config handles application configuration management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all logsearch data (index, feeds, log file)
	BaseDir string `toml:"-"`

	Search    SearchConfig    `toml:"search"`
	Sources   []SourceConfig  `toml:"sources"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// SearchConfig controls the search controller and the index it talks to.
type SearchConfig struct {
	// BundlePath is the directory holding search.db. Empty means <base>/index.
	BundlePath string `toml:"bundle_path"`
	// RemoteURL selects the HTTP index instead of the local bundle when set.
	RemoteURL string `toml:"remote_url"`
	// PageSize is how many results are hydrated per page.
	PageSize int `toml:"page_size"`
	// DebounceMs is the input quiet period before a search is submitted.
	DebounceMs int `toml:"debounce_ms"`
	// TimeoutSec bounds each index call. 0 disables the timeout.
	TimeoutSec int `toml:"timeout_sec"`
	// ShowImages renders poster/cover slots in result items and skeletons.
	ShowImages bool `toml:"show_images"`
}

// Debounce returns the debounce quiet period as a duration.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// Timeout returns the per-call timeout as a duration.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// SourceKind distinguishes the two review feeds.
type SourceKind string

const (
	SourceMovie SourceKind = "movie"
	SourceBook  SourceKind = "book"
)

// SourceConfig describes one review feed merged into the index.
type SourceConfig struct {
	Name       string     `toml:"name"`
	Kind       SourceKind `toml:"kind"`
	UpdatesURL string     `toml:"updates_url"`
	BaseURL    string     `toml:"base_url"`
}

// ServerConfig holds settings for the HTTP index server.
type ServerConfig struct {
	Addr             string `toml:"addr"`
	RateLimitPerMin  int    `toml:"rate_limit_per_min"`
	ShutdownTimeoutS int    `toml:"shutdown_timeout_sec"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	Enabled bool `toml:"enabled"`
}

// Load reads configuration from the config file and environment variables.
// A missing config file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if home := os.Getenv("LOGSEARCH_HOME"); home != "" {
		cfg.BaseDir = home
	}

	if err := loadFile(cfg, GetPaths(cfg).Config); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile merges a TOML config file over the defaults in cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
	return nil
}

// applyEnv applies environment overrides.
func applyEnv(cfg *Config) {
	if url := os.Getenv("LOGSEARCH_REMOTE_URL"); url != "" {
		cfg.Search.RemoteURL = url
	}
	if level := os.Getenv("LOGSEARCH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if v := os.Getenv("LOGSEARCH_TELEMETRY_TRACKING_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Enabled = enabled
		}
	}
}

// Save writes the configuration to the config file in the base directory.
func Save(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := GetPaths(cfg).Config
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	paths := GetPaths(cfg)
	dirs := []string{
		cfg.BaseDir,
		paths.Data,
		paths.Bundle,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
