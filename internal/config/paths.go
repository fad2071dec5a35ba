package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Paths contains commonly used file paths.
type Paths struct {
	Config string // TOML config file
	Data   string // Downloaded feed JSON files
	Bundle string // Search index bundle directory
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	bundle := cfg.Search.BundlePath
	if bundle == "" {
		bundle = filepath.Join(cfg.BaseDir, "index")
	}
	return Paths{
		Config: filepath.Join(cfg.BaseDir, "config.toml"),
		Data:   filepath.Join(cfg.BaseDir, "data"),
		Bundle: bundle,
	}
}

// FeedPath returns where a source's downloaded feed is stored.
func (p Paths) FeedPath(source SourceConfig) string {
	return filepath.Join(p.Data, source.Name+".json")
}

// DefaultBaseDir returns the default base directory ($XDG_DATA_HOME/logsearch).
func DefaultBaseDir() string {
	if xdg.DataHome == "" {
		return ".logsearch"
	}
	return filepath.Join(xdg.DataHome, "logsearch")
}
