package cli

import (
	"fmt"

	"github.com/reviewlog/logsearch/internal/config"
	"github.com/reviewlog/logsearch/internal/db"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/index/remote"
	"github.com/reviewlog/logsearch/internal/log"
	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/search"
)

// setup loads the configuration and starts file logging. The returned
// cleanup closes the log file.
func setup() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := log.Init(cfg.BaseDir, cfg.Log.Level); err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, func() { _ = log.Close() }, nil
}

// newIndex picks the remote index when a remote URL is configured and the
// local bundle otherwise.
func newIndex(cfg *config.Config) (search.Index, error) {
	if cfg.Search.RemoteURL != "" {
		idx, err := remote.New(cfg.Search.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("invalid remote index url: %w", err)
		}
		return idx, nil
	}
	return bundle.New(), nil
}

// controllerConfig maps the search section of the config onto the
// controller's settings.
func controllerConfig(cfg *config.Config, tracker search.Tracker) search.Config {
	c := search.DefaultConfig()
	c.BundlePath = config.GetPaths(cfg).Bundle
	if cfg.Search.PageSize > 0 {
		c.PageSize = cfg.Search.PageSize
	}
	if cfg.Search.DebounceMs >= 0 {
		c.Debounce = cfg.Search.Debounce()
	}
	c.Timeout = cfg.Search.Timeout()
	c.ShowImages = cfg.Search.ShowImages
	c.Tracker = tracker
	return c
}

// bundleStats reads statistics from the local bundle. A missing bundle is
// reported as an error so callers can tell the user to run update.
func bundleStats(cfg *config.Config) (*models.ReviewStats, error) {
	database, err := db.Open(bundle.Path(config.GetPaths(cfg).Bundle))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = database.Close()
	}()
	return database.GetStats()
}
