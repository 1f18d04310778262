package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createSnippetTool returns the tool definition for create_snippet
func createSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_snippet",
		Description: "Save a legal research snippet with citation, key language, and tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"citation": map[string]interface{}{
					"type":        "string",
					"description": "Case citation, e.g. 'Miranda v. Arizona, 384 U.S. 436 (1966)'",
				},
				"key_language": map[string]interface{}{
					"type":        "string",
					"description": "The key quoted language from the opinion",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Categorization tags, treated as a set",
					"items":       map[string]interface{}{"type": "string"},
				},
				"context": map[string]interface{}{
					"type":        "string",
					"description": "Free-form notes on when this language applies",
				},
				"case_type": map[string]interface{}{
					"type":        "string",
					"description": "Case type classification",
					"default":     "civil",
				},
			},
			Required: []string{"citation", "key_language"},
		},
	}
}

// searchSnippetsTool returns the tool definition for search_snippets
func searchSnippetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_snippets",
		Description: "Search snippets by keyword and/or tags; both filters intersect when given together",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Case-insensitive substring matched against citation, key language, and context",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Match snippets carrying at least one of these tags",
					"items":       map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}

// getSnippetTool returns the tool definition for get_snippet
func getSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_snippet",
		Description: "Fetch a single snippet by id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"snippet_id": map[string]interface{}{
					"type":        "integer",
					"description": "Snippet id",
				},
			},
			Required: []string{"snippet_id"},
		},
	}
}

// updateSnippetTool returns the tool definition for update_snippet
func updateSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_snippet",
		Description: "Update fields of an existing snippet; omitted fields are left untouched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"snippet_id": map[string]interface{}{
					"type":        "integer",
					"description": "Snippet id",
				},
				"citation": map[string]interface{}{
					"type":        "string",
					"description": "New citation (cannot be empty)",
				},
				"key_language": map[string]interface{}{
					"type":        "string",
					"description": "New key language (cannot be empty)",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Replacement tag set; an empty array clears all tags",
					"items":       map[string]interface{}{"type": "string"},
				},
				"context": map[string]interface{}{
					"type":        "string",
					"description": "New context; an empty string clears it",
				},
				"case_type": map[string]interface{}{
					"type":        "string",
					"description": "New case type classification",
				},
			},
			Required: []string{"snippet_id"},
		},
	}
}

// deleteSnippetTool returns the tool definition for delete_snippet
func deleteSnippetTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_snippet",
		Description: "Delete a snippet by id; ids are never reused",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"snippet_id": map[string]interface{}{
					"type":        "integer",
					"description": "Snippet id",
				},
			},
			Required: []string{"snippet_id"},
		},
	}
}

// listTagsTool returns the tool definition for list_tags
func listTagsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_tags",
		Description: "List every tag in use across all snippets, sorted",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// exportSnippetsTool returns the tool definition for export_snippets
func exportSnippetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "export_snippets",
		Description: "Export the full collection as JSON (lossless) or human-readable text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Export format",
					"enum":        []string{"json", "text"},
					"default":     "json",
				},
			},
		},
	}
}

// semanticSearchTool returns the tool definition for semantic_search
func semanticSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantic_search",
		Description: "Find snippets whose meaning matches a natural-language query, ranked by similarity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language query, e.g. 'right to counsel during interrogation'",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results",
					"default":     10,
					"minimum":     1,
				},
				"similarity_threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum similarity score to include, inclusive (0-1)",
					"default":     0.7,
					"minimum":     0,
					"maximum":     1,
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Only rank snippets carrying at least one of these tags",
					"items":       map[string]interface{}{"type": "string"},
				},
			},
			Required: []string{"query"},
		},
	}
}

// findSimilarSnippetsTool returns the tool definition for find_similar_snippets
func findSimilarSnippetsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_similar_snippets",
		Description: "Find the snippets most similar to an existing one, excluding it from the results",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"snippet_id": map[string]interface{}{
					"type":        "integer",
					"description": "Id of the snippet to compare against",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results",
					"default":     5,
					"minimum":     1,
				},
			},
			Required: []string{"snippet_id"},
		},
	}
}
