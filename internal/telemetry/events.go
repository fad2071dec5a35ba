package telemetry

import (
	"runtime"
	"time"

	"github.com/reviewlog/logsearch/pkg/version"
)

// Event names - CLI
const (
	EventAppStarted         = "app_started"
	EventAppExited          = "app_exited"
	EventCLICommandExecuted = "cli_command_executed"
	EventCLIErrorOccurred   = "cli_error_occurred"
	EventIndexUpdated       = "index_updated"
	EventStatsViewed        = "stats_viewed"
)

// Event names - search
const (
	EventSearchPerformed = "search_performed"
	EventPaginationUsed  = "pagination_used"
	EventErrorDisplayed  = "error_displayed"
)

// Event names - TUI
const (
	EventSurfaceOpened    = "search_opened"
	EventSurfaceClosed    = "search_closed"
	EventKeyboardShortcut = "keyboard_shortcut_used"
	EventResultOpened     = "result_opened"
	EventResultCopied     = "result_copied"
)

// Event names - MCP
const (
	EventMCPToolCalled = "mcp_tool_called"
)

// baseProperties returns common properties for all events.
func baseProperties() map[string]interface{} {
	return map[string]interface{}{
		"os":        runtime.GOOS,
		"arch":      runtime.GOARCH,
		"version":   version.Version,
		"dev_build": version.IsDevBuild(),
	}
}

// with merges extra into the base properties.
func with(extra map[string]interface{}) map[string]interface{} {
	props := baseProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// --- CLI Tracking Methods ---

// TrackAppStarted tracks application startup.
func (c *posthogClient) TrackAppStarted(mode string, remote bool, sourceCount int) {
	c.Track(EventAppStarted, with(map[string]interface{}{
		"mode":         mode,
		"remote_index": remote,
		"source_count": sourceCount,
	}))
}

// TrackAppExited tracks application exit.
func (c *posthogClient) TrackAppExited(mode string, sessionDurationMs int64, searchesPerformed int) {
	c.Track(EventAppExited, with(map[string]interface{}{
		"mode":                mode,
		"session_duration_ms": sessionDurationMs,
		"searches_performed":  searchesPerformed,
	}))
}

// TrackCLICommandExecuted tracks CLI command execution.
func (c *posthogClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {
	c.Track(EventCLICommandExecuted, with(map[string]interface{}{
		"command_name":          commandName,
		"has_flags":             hasFlags,
		"execution_duration_ms": durationMs,
	}))
}

// TrackCLIError tracks CLI errors by class.
func (c *posthogClient) TrackCLIError(commandName, errorType string) {
	c.Track(EventCLIErrorOccurred, with(map[string]interface{}{
		"command_name": commandName,
		"error_type":   errorType,
	}))
}

// TrackIndexUpdated tracks one source synced into the index.
func (c *posthogClient) TrackIndexUpdated(sourceID string, upserted, deleted int) {
	c.Track(EventIndexUpdated, with(map[string]interface{}{
		"source_id":        sourceID,
		"reviews_upserted": upserted,
		"reviews_deleted":  deleted,
	}))
}

// TrackStatsViewed tracks the stats command.
func (c *posthogClient) TrackStatsViewed(totalReviews int64) {
	c.Track(EventStatsViewed, with(map[string]interface{}{
		"total_reviews": totalReviews,
	}))
}

// --- Search Tracking Methods ---

// TrackSearchPerformed tracks a committed search. The query text itself is
// not sent.
func (c *posthogClient) TrackSearchPerformed(query string, total int, elapsed time.Duration) {
	c.Track(EventSearchPerformed, with(map[string]interface{}{
		"query_length": len(query),
		"result_count": total,
		"elapsed_ms":   elapsed.Milliseconds(),
	}))
}

// TrackLoadMore tracks a load-more page.
func (c *posthogClient) TrackLoadMore(query string, loaded, visible, total int) {
	c.Track(EventPaginationUsed, with(map[string]interface{}{
		"query_length":  len(query),
		"loaded":        loaded,
		"visible_count": visible,
		"result_count":  total,
	}))
}

// TrackSearchError tracks an error view shown by the search controller.
func (c *posthogClient) TrackSearchError(kind string) {
	c.Track(EventErrorDisplayed, with(map[string]interface{}{
		"error_type":   kind,
		"context_view": "search",
	}))
}

// --- TUI Tracking Methods ---

// TrackSurfaceOpened tracks the search surface opening.
func (c *posthogClient) TrackSurfaceOpened(trigger string) {
	c.Track(EventSurfaceOpened, with(map[string]interface{}{"trigger": trigger}))
}

// TrackSurfaceClosed tracks the search surface closing.
func (c *posthogClient) TrackSurfaceClosed(trigger string, openDuration time.Duration) {
	c.Track(EventSurfaceClosed, with(map[string]interface{}{
		"trigger":          trigger,
		"open_duration_ms": openDuration.Milliseconds(),
	}))
}

// TrackKeyboardShortcut tracks keyboard shortcut usage.
func (c *posthogClient) TrackKeyboardShortcut(shortcutKey, contextView string) {
	c.Track(EventKeyboardShortcut, with(map[string]interface{}{
		"shortcut_key": shortcutKey,
		"context_view": contextView,
	}))
}

// TrackResultOpened tracks a result link being followed.
func (c *posthogClient) TrackResultOpened(position int, kind string) {
	c.Track(EventResultOpened, with(map[string]interface{}{
		"position": position,
		"kind":     kind,
	}))
}

// TrackResultCopied tracks a result URL copied to the clipboard.
func (c *posthogClient) TrackResultCopied(kind string) {
	c.Track(EventResultCopied, with(map[string]interface{}{"kind": kind}))
}

// --- MCP Tracking Methods ---

// TrackMCPToolCalled tracks MCP tool invocations.
func (c *posthogClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool) {
	c.Track(EventMCPToolCalled, with(map[string]interface{}{
		"tool_name":   toolName,
		"duration_ms": durationMs,
		"success":     success,
	}))
}

// --- No-op implementations ---

func (c *noopClient) TrackAppStarted(string, bool, int)               {}
func (c *noopClient) TrackAppExited(string, int64, int)               {}
func (c *noopClient) TrackCLICommandExecuted(string, bool, int64)     {}
func (c *noopClient) TrackCLIError(string, string)                    {}
func (c *noopClient) TrackIndexUpdated(string, int, int)              {}
func (c *noopClient) TrackStatsViewed(int64)                          {}
func (c *noopClient) TrackSearchPerformed(string, int, time.Duration) {}
func (c *noopClient) TrackLoadMore(string, int, int, int)             {}
func (c *noopClient) TrackSearchError(string)                         {}
func (c *noopClient) TrackSurfaceOpened(string)                       {}
func (c *noopClient) TrackSurfaceClosed(string, time.Duration)        {}
func (c *noopClient) TrackKeyboardShortcut(string, string)            {}
func (c *noopClient) TrackResultOpened(int, string)                   {}
func (c *noopClient) TrackResultCopied(string)                        {}
func (c *noopClient) TrackMCPToolCalled(string, int64, bool)          {}
