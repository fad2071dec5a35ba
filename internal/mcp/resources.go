package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
)

// resourcePrefix is the URI scheme for logsearch resources.
const resourcePrefix = "logsearch://"

// parseDocumentURI extracts the id from a logsearch://document/{id} URI.
func parseDocumentURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, resourcePrefix+"document/") {
		return "", fmt.Errorf("invalid URI scheme: %s", uri)
	}
	id := strings.TrimPrefix(uri, resourcePrefix+"document/")
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid document id in URI: %s", uri)
	}
	return id, nil
}

func (s *Server) handleDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, err := parseDocumentURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	doc, err := s.index.Document(ctx, id, "")
	if err != nil {
		return nil, fmt.Errorf("document not found: %s: %w", id, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
