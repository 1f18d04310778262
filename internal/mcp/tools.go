package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lexsnip/lexsnip-mcp/internal/searcher"
	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleCreateSnippet handles the create_snippet tool invocation
func (s *Server) handleCreateSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	citation := getStringDefault(args, "citation", "")
	keyLanguage := getStringDefault(args, "key_language", "")
	tags, err := getStringArray(args, "tags")
	if err != nil {
		return nil, err
	}

	ns, err := snippet.New(citation, keyLanguage, tags,
		getStringDefault(args, "context", ""),
		getStringDefault(args, "case_type", ""))
	if err != nil {
		return errorResult(err), nil
	}

	created, err := s.store.Create(ctx, ns)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"snippet_id": created.ID,
		"message":    fmt.Sprintf("Created snippet %d for %s", created.ID, created.Citation),
	}), nil
}

// handleSearchSnippets handles the search_snippets tool invocation
func (s *Server) handleSearchSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tags, err := getStringArray(args, "tags")
	if err != nil {
		return nil, err
	}

	results, err := s.store.SearchText(ctx, getStringDefault(args, "query", ""), tags)
	if err != nil {
		return errorResult(err), nil
	}
	if results == nil {
		results = []snippet.Snippet{}
	}

	return successResult(map[string]interface{}{
		"count":   len(results),
		"results": results,
	}), nil
}

// handleGetSnippet handles the get_snippet tool invocation
func (s *Server) handleGetSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireSnippetID(request)
	if err != nil {
		return nil, err
	}

	got, err := s.store.Get(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"snippet": got,
	}), nil
}

// handleUpdateSnippet handles the update_snippet tool invocation
func (s *Server) handleUpdateSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireSnippetID(request)
	if err != nil {
		return nil, err
	}
	args := request.Params.Arguments.(map[string]interface{})

	var upd snippet.Update
	if v, present := args["citation"]; present {
		str, ok := v.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "citation must be a string", nil)
		}
		upd.Citation = &str
	}
	if v, present := args["key_language"]; present {
		str, ok := v.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "key_language must be a string", nil)
		}
		upd.KeyLanguage = &str
	}
	if _, present := args["tags"]; present {
		tags, err := getStringArray(args, "tags")
		if err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []string{}
		}
		upd.Tags = &tags
	}
	if v, present := args["context"]; present {
		str, ok := v.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "context must be a string", nil)
		}
		upd.Context = &str
	}
	if v, present := args["case_type"]; present {
		str, ok := v.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, "case_type must be a string", nil)
		}
		upd.CaseType = &str
	}

	if upd.IsZero() {
		return errorResult(fmt.Errorf("%w: no fields to update", snippet.ErrValidation)), nil
	}

	updated, err := s.store.Update(ctx, id, upd)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"snippet": updated,
		"message": fmt.Sprintf("Updated snippet %d", updated.ID),
	}), nil
}

// handleDeleteSnippet handles the delete_snippet tool invocation
func (s *Server) handleDeleteSnippet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireSnippetID(request)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"message": fmt.Sprintf("Deleted snippet %d", id),
	}), nil
}

// handleListTags handles the list_tags tool invocation
func (s *Server) handleListTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"count": len(tags),
		"tags":  tags,
	}), nil
}

// handleExportSnippets handles the export_snippets tool invocation
func (s *Server) handleExportSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := "json"
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		format = getStringDefault(args, "format", "json")
	}

	data, err := s.store.Export(ctx, format)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"format": format,
		"data":   data,
	}), nil
}

// handleSemanticSearch handles the semantic_search tool invocation
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if s.searcher == nil {
		return errorResult(errSemanticUnsupported()), nil
	}

	tags, err := getStringArray(args, "tags")
	if err != nil {
		return nil, err
	}

	// "threshold" is accepted as an alias for similarity_threshold.
	threshold := getFloatDefault(args, "similarity_threshold",
		getFloatDefault(args, "threshold", searcher.DefaultThreshold))

	results, err := s.searcher.SemanticSearch(ctx,
		getStringDefault(args, "query", ""),
		getIntDefault(args, "limit", searcher.DefaultSemanticLimit),
		threshold,
		tags)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"count":   len(results),
		"results": results,
	}), nil
}

// handleFindSimilarSnippets handles the find_similar_snippets tool invocation
func (s *Server) handleFindSimilarSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireSnippetID(request)
	if err != nil {
		return nil, err
	}
	if s.searcher == nil {
		return errorResult(errSemanticUnsupported()), nil
	}
	args := request.Params.Arguments.(map[string]interface{})

	results, err := s.searcher.FindSimilar(ctx, id,
		getIntDefault(args, "limit", searcher.DefaultSimilarLimit))
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]interface{}{
		"count":   len(results),
		"results": results,
	}), nil
}

func errSemanticUnsupported() error {
	return fmt.Errorf("%w: semantic operations require the postgres backend", snippet.ErrUnsupported)
}

// successResult wraps fields in a success payload as tool result text.
func successResult(fields map[string]interface{}) *mcp.CallToolResult {
	fields["status"] = "success"
	return mcp.NewToolResultText(formatJSON(fields))
}

// errorResult turns a domain error into a structured error payload. The
// error_kind field tells the agent layer whether retrying can help.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"status":     "error",
		"error_kind": snippet.Kind(err),
		"message":    err.Error(),
	}))
}

// requireSnippetID extracts the mandatory snippet_id parameter.
func requireSnippetID(request mcp.CallToolRequest) (int64, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return 0, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	val, present := args["snippet_id"]
	if !present {
		return 0, newMCPError(ErrorCodeInvalidParams, "snippet_id parameter is required", map[string]interface{}{
			"param":  "snippet_id",
			"reason": "missing",
		})
	}
	var id int64
	switch v := val.(type) {
	case float64:
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	default:
		return 0, newMCPError(ErrorCodeInvalidParams, "snippet_id must be an integer", nil)
	}
	if id < 1 {
		return 0, newMCPError(ErrorCodeInvalidParams, "snippet_id must be positive", map[string]interface{}{
			"param": "snippet_id",
			"value": id,
		})
	}
	return id, nil
}

func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringArray extracts an optional string array parameter. Absent keys
// return nil; present keys with non-string elements are a protocol error.
func getStringArray(args map[string]interface{}, key string) ([]string, error) {
	val, present := args[key]
	if !present || val == nil {
		return nil, nil
	}
	raw, ok := val.([]interface{})
	if !ok {
		if strs, ok := val.([]string); ok {
			return strs, nil
		}
		return nil, newMCPError(ErrorCodeInvalidParams, key+" must be an array of strings", nil)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		str, ok := item.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, key+" must be an array of strings", nil)
		}
		out = append(out, str)
	}
	return out, nil
}
