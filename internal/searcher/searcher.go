package searcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexsnip/lexsnip-mcp/internal/embedder"
	"github.com/lexsnip/lexsnip-mcp/internal/snippet"
	"github.com/lexsnip/lexsnip-mcp/internal/store"
)

// Defaults applied when a caller omits the corresponding argument.
const (
	DefaultThreshold     = 0.7
	DefaultSemanticLimit = 10
	DefaultSimilarLimit  = 5
)

// Searcher plans semantic queries: it validates arguments, embeds query
// text, and delegates ranking to the vector-capable store.
type Searcher struct {
	store store.VectorSearcher
	emb   embedder.Embedder
}

// NewSearcher creates a searcher over a vector-capable store.
func NewSearcher(vs store.VectorSearcher, emb embedder.Embedder) *Searcher {
	return &Searcher{store: vs, emb: emb}
}

// SemanticSearch embeds the query text and returns snippets whose combined
// embedding scores at or above threshold, best first. An optional tag
// filter is applied before ranking.
func (s *Searcher) SemanticSearch(ctx context.Context, query string, limit int, threshold float64, tags []string) ([]store.ScoredSnippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", snippet.ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", snippet.ErrValidation, limit)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0, 1], got %g", snippet.ErrValidation, threshold)
	}

	emb, err := s.emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", snippet.ErrModelUnavailable, err)
	}

	results, err := s.store.SearchVector(ctx, emb.Vector, limit, threshold, snippet.NormalizeTags(tags))
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindSimilar returns the snippets closest to the stored combined embedding
// of the snippet with the given id, excluding that snippet itself. No
// threshold applies; the caller always gets the top matches.
func (s *Searcher) FindSimilar(ctx context.Context, id int64, limit int) ([]store.ScoredSnippet, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", snippet.ErrValidation, limit)
	}
	return s.store.SimilarTo(ctx, id, limit)
}
