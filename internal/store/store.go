package store

import (
	"context"

	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
)

// Export formats accepted by Store.Export.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Store is the contract shared by both snippet backends. The store owns the
// persisted representation; every method returns or accepts copies.
type Store interface {
	// Create assigns a new id and timestamps, computes embeddings when the
	// backend supports them, persists, and returns the full record.
	Create(ctx context.Context, s snippet.Snippet) (*snippet.Snippet, error)

	// Get returns the snippet with the given id, or snippet.ErrNotFound.
	Get(ctx context.Context, id int64) (*snippet.Snippet, error)

	// Update merges the partial update into the stored record, recomputes
	// only the embeddings whose source text changed, and bumps updated_at.
	Update(ctx context.Context, id int64, upd snippet.Update) (*snippet.Snippet, error)

	// Delete removes the record. Deleted ids are never reused.
	Delete(ctx context.Context, id int64) error

	// ListTags returns the union of all tags across all records, sorted.
	ListTags(ctx context.Context) ([]string, error)

	// SearchText matches query as a case-insensitive substring of citation,
	// key language, or context, intersected with the tag filter when both
	// are given. Results are ordered most-recently-updated first. With no
	// query and no tags it returns every record.
	SearchText(ctx context.Context, query string, tags []string) ([]snippet.Snippet, error)

	// Export serializes all records in FormatJSON (lossless) or FormatText
	// (human-readable).
	Export(ctx context.Context, format string) (string, error)

	// Close releases the backend's resources.
	Close() error
}

// ScoredSnippet pairs a snippet with its similarity score in [0, 1].
type ScoredSnippet struct {
	snippet.Snippet
	Score float64 `json:"similarity_score"`
}

// VectorSearcher is implemented by backends with embedding columns. The
// query planner ranks through it; the file backend deliberately does not
// satisfy it.
type VectorSearcher interface {
	// SearchVector ranks records by cosine similarity of their combined
	// embedding against the query vector, keeping scores >= threshold
	// (inclusive), optionally pre-filtered by tag overlap. Ties break by
	// most-recent updated_at, then smallest id.
	SearchVector(ctx context.Context, vector []float32, limit int, threshold float64, tags []string) ([]ScoredSnippet, error)

	// SimilarTo ranks records against the combined embedding of the record
	// with the given id, excluding that record itself. Returns
	// snippet.ErrNotFound when the id does not exist.
	SimilarTo(ctx context.Context, id int64, limit int) ([]ScoredSnippet, error)
}
