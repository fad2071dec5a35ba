package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reviewlog/logsearch/internal/search"
)

// Every client must be usable as the search controller's tracker.
var _ search.Tracker = Client(nil)

type fixedID string

func (f fixedID) GetOrCreateTrackingID() string { return string(f) }

func TestNew_DisabledByConfig(t *testing.T) {
	originalKey := PostHogAPIKey
	PostHogAPIKey = "phc_test"
	defer func() { PostHogAPIKey = originalKey }()

	client := New(false, fixedID("abc"))
	_, ok := client.(*noopClient)
	assert.True(t, ok, "Should return noopClient when disabled")
	assert.Empty(t, client.GetTrackingID())
}

func TestNew_DisabledWithoutAPIKey(t *testing.T) {
	originalKey := PostHogAPIKey
	PostHogAPIKey = ""
	defer func() { PostHogAPIKey = originalKey }()

	client := New(true, nil)
	_, ok := client.(*noopClient)
	assert.True(t, ok, "Should return noopClient without API key")
	assert.False(t, IsEnabled(true))
}

func TestNoopClient_DoesNotPanic(t *testing.T) {
	client := Noop()

	client.Track("test_event", map[string]interface{}{"key": "value"})
	client.TrackAppStarted("tui", false, 2)
	client.TrackAppExited("tui", 5000, 3)
	client.TrackCLICommandExecuted("query", true, 100)
	client.TrackCLIError("update", "network_error")
	client.TrackIndexUpdated("movielog", 10, 1)
	client.TrackStatsViewed(42)

	client.TrackSearchPerformed("batman", 12, 30*time.Millisecond)
	client.TrackLoadMore("batman", 2, 12, 12)
	client.TrackSearchError("search")

	client.TrackSurfaceOpened("ctrl+k")
	client.TrackSurfaceClosed("esc", time.Second)
	client.TrackKeyboardShortcut("ctrl+k", "search")
	client.TrackResultOpened(0, "movie")
	client.TrackResultCopied("book")

	client.TrackMCPToolCalled("logsearch_search", 100, true)

	client.Close()
}

func TestBaseProperties(t *testing.T) {
	props := baseProperties()

	assert.Contains(t, props, "os")
	assert.Contains(t, props, "arch")
	assert.Contains(t, props, "version")
}

func TestWithMergesProperties(t *testing.T) {
	props := with(map[string]interface{}{"mode": "cli", "os": "override"})
	assert.Equal(t, "cli", props["mode"])
	assert.Equal(t, "override", props["os"])
	assert.Contains(t, props, "dev_build")
}
