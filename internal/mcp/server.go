// Package mcp provides the Model Context Protocol server for logsearch.
//
// It exposes the same review index the TUI searches, local bundle or remote
// server, to MCP-compatible clients.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/reviewlog/logsearch/internal/models"
	"github.com/reviewlog/logsearch/internal/search"
	"github.com/reviewlog/logsearch/internal/telemetry"
	"github.com/reviewlog/logsearch/pkg/version"
)

// Index is what the MCP tools need from a search index.
type Index interface {
	Search(ctx context.Context, query string, opts *search.Options) (*search.Results, error)
	Document(ctx context.Context, id, query string) (*search.Document, error)
}

// StatsProvider reports index statistics. Only local bundles have one.
type StatsProvider interface {
	GetStats() (*models.ReviewStats, error)
}

// Server wraps the MCP server with logsearch tools.
type Server struct {
	index     Index
	stats     StatsProvider
	server    *server.MCPServer
	telemetry telemetry.Client
}

// NewServer creates a new MCP server instance. stats may be nil.
func NewServer(index Index, stats StatsProvider, tc telemetry.Client) *Server {
	if tc == nil {
		tc = telemetry.Noop()
	}
	s := &Server{
		index:     index,
		stats:     stats,
		telemetry: tc,
	}

	s.server = server.NewMCPServer(
		"logsearch",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// Serve runs the MCP server over stdio until the client disconnects.
func (s *Server) Serve(context.Context) error {
	return server.ServeStdio(s.server)
}

func (s *Server) registerTools() {
	s.server.AddTool(searchTool(), s.handleSearch)
	s.server.AddTool(getDocumentTool(), s.handleGetDocument)
	if s.stats != nil {
		s.server.AddTool(getStatsTool(), s.handleGetStats)
	}
}

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		mcp.NewResourceTemplate(
			resourcePrefix+"document/{id}",
			"Review document",
			mcp.WithTemplateDescription("JSON search document for a review: URL, title, excerpt, image and filters"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleDocumentResource,
	)
}
