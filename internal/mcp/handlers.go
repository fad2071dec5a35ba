package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/reviewlog/logsearch/internal/excerpt"
	"github.com/reviewlog/logsearch/internal/index/bundle"
	"github.com/reviewlog/logsearch/internal/search"
)

// Pagination constants for MCP tool handlers.
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// parseLimit extracts and validates a limit parameter from MCP tool arguments.
// Returns defaultVal if not present, caps at maxVal if exceeded.
func parseLimit(arguments map[string]interface{}, defaultVal, maxVal int) int {
	if l, ok := arguments["limit"].(float64); ok && l > 0 {
		limit := int(l)
		if limit > maxVal {
			return maxVal
		}
		return limit
	}
	return defaultVal
}

func (s *Server) trackToolCall(toolName string, start time.Time, success bool) {
	s.telemetry.TrackMCPToolCalled(toolName, time.Since(start).Milliseconds(), success)
}

// SearchResponse is the result of logsearch_search.
type SearchResponse struct {
	Query   string        `json:"query"`
	Total   int           `json:"total"`
	Results []ReviewBrief `json:"results"`
}

// ReviewBrief is one hydrated search hit.
type ReviewBrief struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Kind    string   `json:"kind,omitempty"`
	Stars   string   `json:"stars,omitempty"`
	Excerpt string   `json:"excerpt"`
	Genres  []string `json:"genres,omitempty"`
	Score   float64  `json:"score"`
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func toBrief(id string, score float64, doc *search.Document) ReviewBrief {
	return ReviewBrief{
		ID:      id,
		Title:   doc.Meta.Title,
		URL:     doc.URL,
		Kind:    first(doc.Filters[bundle.FilterKind]),
		Stars:   first(doc.Filters[bundle.FilterStars]),
		Excerpt: excerpt.Plain(doc.Excerpt),
		Genres:  doc.Filters[bundle.FilterGenre],
		Score:   score,
	}
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	query, ok := req.Params.Arguments["query"].(string)
	if !ok || query == "" {
		s.trackToolCall(toolSearch, start, false)
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	limit := parseLimit(req.Params.Arguments, defaultSearchLimit, maxSearchLimit)

	var opts *search.Options
	if kind, ok := req.Params.Arguments["kind"].(string); ok && kind != "" {
		opts = &search.Options{Filters: map[string]string{bundle.FilterKind: kind}}
	}

	res, err := s.index.Search(ctx, query, opts)
	if err != nil {
		s.trackToolCall(toolSearch, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	hits := res.Results
	if len(hits) > limit {
		hits = hits[:limit]
	}
	resp := SearchResponse{Query: query, Total: len(res.Results), Results: make([]ReviewBrief, 0, len(hits))}
	for _, h := range hits {
		doc, err := h.Data(ctx)
		if err != nil {
			s.trackToolCall(toolSearch, start, false)
			return mcp.NewToolResultError(fmt.Sprintf("load result %s: %v", h.ID, err)), nil
		}
		resp.Results = append(resp.Results, toBrief(h.ID, h.Score, doc))
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.trackToolCall(toolSearch, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	s.telemetry.TrackSearchPerformed(query, resp.Total, time.Since(start))
	s.trackToolCall(toolSearch, start, true)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	id, ok := req.Params.Arguments["id"].(string)
	if !ok || id == "" {
		s.trackToolCall(toolGetDocument, start, false)
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	query, _ := req.Params.Arguments["query"].(string)

	doc, err := s.index.Document(ctx, id, query)
	if err != nil {
		s.trackToolCall(toolGetDocument, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
	}

	data, err := json.Marshal(toBrief(id, 0, doc))
	if err != nil {
		s.trackToolCall(toolGetDocument, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal document: %v", err)), nil
	}

	s.trackToolCall(toolGetDocument, start, true)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	stats, err := s.stats.GetStats()
	if err != nil {
		s.trackToolCall(toolGetStats, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	data, err := json.Marshal(stats)
	if err != nil {
		s.trackToolCall(toolGetStats, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
	}

	s.telemetry.TrackStatsViewed(stats.TotalReviews)
	s.trackToolCall(toolGetStats, start, true)
	return mcp.NewToolResultText(string(data)), nil
}
