// Package telemetry provides anonymous usage tracking via PostHog.
package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// PostHogAPIKey is set at compile time via ldflags.
var PostHogAPIKey string

// TrackingIDProvider supplies a persistent anonymous ID.
type TrackingIDProvider interface {
	GetOrCreateTrackingID() string
}

// Client interface for telemetry operations. Every Client also satisfies
// search.Tracker.
type Client interface {
	Track(event string, properties map[string]interface{})
	Close()
	GetTrackingID() string

	// CLI events
	TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64)
	TrackCLIError(commandName, errorType string)
	TrackIndexUpdated(sourceID string, upserted, deleted int)
	TrackStatsViewed(totalReviews int64)

	// Search controller events
	TrackSearchPerformed(query string, total int, elapsed time.Duration)
	TrackLoadMore(query string, loaded, visible, total int)
	TrackSearchError(kind string)

	// TUI events
	TrackSurfaceOpened(trigger string)
	TrackSurfaceClosed(trigger string, openDuration time.Duration)
	TrackKeyboardShortcut(shortcutKey, contextView string)
	TrackResultOpened(position int, kind string)
	TrackResultCopied(kind string)

	// MCP events
	TrackMCPToolCalled(toolName string, durationMs int64, success bool)

	// Used in CLI & TUI
	TrackAppStarted(mode string, remote bool, sourceCount int)
	TrackAppExited(mode string, sessionDurationMs int64, searchesPerformed int)
}

// posthogClient wraps the PostHog SDK.
type posthogClient struct {
	client    posthog.Client
	sessionID string
	mu        sync.Mutex
}

// noopClient does nothing (for disabled telemetry).
type noopClient struct{}

// IsEnabled reports whether events can be sent. enabled comes from config,
// which already folds in LOGSEARCH_TELEMETRY_TRACKING_ENABLED.
func IsEnabled(enabled bool) bool {
	return enabled && PostHogAPIKey != ""
}

// New creates a telemetry client. If provider is nil or yields no ID, a new
// UUID is generated for the session.
func New(enabled bool, provider TrackingIDProvider) Client {
	if !IsEnabled(enabled) {
		return &noopClient{}
	}

	client, err := posthog.NewWithConfig(PostHogAPIKey, posthog.Config{
		Endpoint:  "https://us.i.posthog.com",
		BatchSize: 250,
		Interval:  5 * time.Second,
	})
	if err != nil {
		return &noopClient{}
	}

	var sessionID string
	if provider != nil {
		sessionID = provider.GetOrCreateTrackingID()
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	return &posthogClient{
		client:    client,
		sessionID: sessionID,
	}
}

// Noop returns a client that drops every event.
func Noop() Client {
	return &noopClient{}
}

// Track sends an event to PostHog.
func (c *posthogClient) Track(event string, properties map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	props := posthog.NewProperties()
	props.Set("$process_person_profile", false)
	props.Set("$geoip_disable", true)

	for k, v := range properties {
		props.Set(k, v)
	}

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.sessionID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes remaining events and closes the client.
func (c *posthogClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.client.Close()
}

// GetTrackingID returns the anonymous tracking ID for the session.
func (c *posthogClient) GetTrackingID() string {
	return c.sessionID
}

func (c *noopClient) Track(string, map[string]interface{}) {}
func (c *noopClient) Close()                               {}
func (c *noopClient) GetTrackingID() string                { return "" }
