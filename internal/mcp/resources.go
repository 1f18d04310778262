package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const schemaResourceURI = "schema://legal_snippets"

const schemaResourceText = `Legal snippet record:

  id            integer, assigned on create, never reused
  citation      string, required
  key_language  string, required
  tags          string set, sorted and deduplicated
  context       string, optional
  case_type     string, defaults to "civil"
  created_at    timestamp, set on create
  updated_at    timestamp, advances on every update

Postgres backend additionally stores three vector(384) embedding columns
(citation_embedding, key_language_embedding, combined_embedding) used by
semantic_search and find_similar_snippets. The file backend keeps the
records in a single JSON document and does not support semantic tools.`

// registerResources registers the storage schema resource
func (s *Server) registerResources() {
	resource := mcp.NewResource(
		schemaResourceURI,
		"Legal snippets schema",
		mcp.WithResourceDescription("Field-level description of the snippet storage schema"),
		mcp.WithMIMEType("text/plain"),
	)

	s.mcp.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      schemaResourceURI,
				MIMEType: "text/plain",
				Text:     schemaResourceText,
			},
		}, nil
	})
}
