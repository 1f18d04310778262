// Package store persists legal snippets behind a common Store interface
// with two backends.
//
// FileStore keeps the whole collection in a single JSON document, loaded at
// startup and rewritten after every mutation. It supports the full CRUD,
// tag, text-search, and export surface but no vector operations.
//
// PostgresStore stores snippets in a legal_snippets table with three
// pgvector(384) columns (citation, key language, and combined text),
// GIN-indexed tags, and ivfflat cosine indexes. It additionally satisfies
// VectorSearcher for semantic search and find-similar ranking. Schema setup
// runs through semver-ordered migrations tracked in a schema_version table.
package store
