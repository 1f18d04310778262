// Package mcp exposes the snippet store to agents over the Model Context
// Protocol on stdio.
//
// Nine tools cover the full surface: create_snippet, search_snippets,
// get_snippet, update_snippet, delete_snippet, list_tags, export_snippets,
// semantic_search, and find_similar_snippets. Tool results are JSON
// payloads with a status field; domain failures come back as
// {"status":"error","error_kind":...,"message":...} so the agent can tell
// a bad argument from a missing record or an unreachable embedding model.
// Malformed requests (wrong argument types, missing required parameters)
// are JSON-RPC protocol errors instead.
//
// The storage backend is chosen from the environment at startup. Semantic
// tools require the postgres backend; on the file backend they report
// unsupported_operation.
package mcp
