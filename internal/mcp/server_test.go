package mcp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/telemetry"
	"github.com/reviewlog/logsearch/internal/testutil"
)

// mockTelemetryClient records the MCP-relevant events and drops the rest.
type mockTelemetryClient struct {
	telemetry.Client

	mu    sync.Mutex
	tools []string
	fails []string
	stats int
}

func newMockTelemetry() *mockTelemetryClient {
	return &mockTelemetryClient{Client: telemetry.Noop()}
}

func (m *mockTelemetryClient) TrackMCPToolCalled(toolName string, _ int64, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.tools = append(m.tools, toolName)
	} else {
		m.fails = append(m.fails, toolName)
	}
}

func (m *mockTelemetryClient) TrackStatsViewed(int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats++
}

type fixedStats struct{}

func (fixedStats) GetStats() (*models.ReviewStats, error) {
	return &models.ReviewStats{TotalReviews: 4, BySource: map[string]int64{"movielog": 3, "booklog": 1}, LastUpdated: time.Unix(0, 0).UTC()}, nil
}

func setupServer(t *testing.T) (*Server, *mockTelemetryClient) {
	t.Helper()
	tc := newMockTelemetry()
	return NewServer(testutil.OpenBundle(t), fixedStats{}, tc), tc
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 10, parseLimit(map[string]interface{}{}, 10, 50))
	assert.Equal(t, 5, parseLimit(map[string]interface{}{"limit": float64(5)}, 10, 50))
	assert.Equal(t, 50, parseLimit(map[string]interface{}{"limit": float64(500)}, 10, 50))
	assert.Equal(t, 10, parseLimit(map[string]interface{}{"limit": float64(-1)}, 10, 50))
	assert.Equal(t, 10, parseLimit(map[string]interface{}{"limit": "5"}, 10, 50))
}

func TestHandleSearch(t *testing.T) {
	s, tc := setupServer(t)
	ctx := context.Background()

	t.Run("returns hydrated results", func(t *testing.T) {
		res, err := s.handleSearch(ctx, callTool(map[string]interface{}{"query": "batman"}))
		require.NoError(t, err)
		require.False(t, res.IsError)

		var resp SearchResponse
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
		assert.Equal(t, 3, resp.Total)
		require.Len(t, resp.Results, 3)
		for _, r := range resp.Results {
			assert.NotEmpty(t, r.ID)
			assert.NotEmpty(t, r.URL)
			assert.NotContains(t, r.Excerpt, "<mark>")
		}
	})

	t.Run("limit and kind", func(t *testing.T) {
		res, err := s.handleSearch(ctx, callTool(map[string]interface{}{"query": "batman", "limit": float64(1)}))
		require.NoError(t, err)
		var resp SearchResponse
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
		assert.Equal(t, 3, resp.Total)
		assert.Len(t, resp.Results, 1)

		res, err = s.handleSearch(ctx, callTool(map[string]interface{}{"query": "batman", "kind": "book"}))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "book", resp.Results[0].Kind)
		assert.Equal(t, "Batman: Year One by Frank Miller", resp.Results[0].Title)
	})

	t.Run("missing query", func(t *testing.T) {
		res, err := s.handleSearch(ctx, callTool(map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "query parameter is required")
	})

	assert.Contains(t, tc.tools, toolSearch)
	assert.Contains(t, tc.fails, toolSearch)
}

func TestHandleGetDocument(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	id := models.ReviewID("movielog", "heat-1995")
	res, err := s.handleGetDocument(ctx, callTool(map[string]interface{}{"id": id}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var brief ReviewBrief
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &brief))
	assert.Equal(t, "Heat (1995)", brief.Title)
	assert.Equal(t, "5", brief.Stars)
	assert.Equal(t, "movie", brief.Kind)

	res, err = s.handleGetDocument(ctx, callTool(map[string]interface{}{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetDocument(ctx, callTool(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleGetStats(t *testing.T) {
	s, tc := setupServer(t)

	res, err := s.handleGetStats(context.Background(), callTool(nil))
	require.NoError(t, err)

	var stats models.ReviewStats
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &stats))
	assert.EqualValues(t, 4, stats.TotalReviews)
	assert.EqualValues(t, 3, stats.BySource["movielog"])
	assert.Equal(t, 1, tc.stats)
}

func TestParseDocumentURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantID  string
		wantErr bool
	}{
		{name: "valid", uri: "logsearch://document/abc123", wantID: "abc123"},
		{name: "invalid scheme", uri: "http://document/abc", wantErr: true},
		{name: "empty id", uri: "logsearch://document/", wantErr: true},
		{name: "nested path", uri: "logsearch://document/a/b", wantErr: true},
		{name: "wrong prefix", uri: "logsearch://review/abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := parseDocumentURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestHandleDocumentResource(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "logsearch://document/" + models.ReviewID("booklog", "batman-year-one")

	contents, err := s.handleDocumentResource(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", text.MIMEType)
	assert.Contains(t, text.Text, "https://www.franksbooklog.com/reviews/batman-year-one/")

	req.Params.URI = "logsearch://document/missing"
	_, err = s.handleDocumentResource(ctx, req)
	assert.ErrorContains(t, err, "document not found")
}

func TestNewServerWithoutStats(t *testing.T) {
	s := NewServer(testutil.NewMemoryIndex(), nil, nil)
	assert.NotNil(t, s.server)
	assert.NotNil(t, s.telemetry)
}
