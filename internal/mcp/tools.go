package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	toolSearch      = "logsearch_search"
	toolGetDocument = "logsearch_get_document"
	toolGetStats    = "logsearch_get_stats"
)

func searchTool() mcp.Tool {
	return mcp.NewTool(toolSearch,
		mcp.WithDescription("Search movie and book reviews with full-text BM25 ranking. Titles weigh most, then authors and year, then the review excerpt. Terms match as prefixes."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms, e.g. \"batman\" or \"nolan 2005\""),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10, max: 50)"),
		),
		mcp.WithString("kind",
			mcp.Description("Restrict to one kind of review"),
			mcp.Enum("movie", "book"),
		),
	)
}

func getDocumentTool() mcp.Tool {
	return mcp.NewTool(toolGetDocument,
		mcp.WithDescription("Get one review by the id returned from logsearch_search."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The review id"),
		),
		mcp.WithString("query",
			mcp.Description("Optional terms to highlight in the excerpt"),
		),
	)
}

func getStatsTool() mcp.Tool {
	return mcp.NewTool(toolGetStats,
		mcp.WithDescription("Get index statistics: review counts per source and when the index was last updated."),
	)
}
