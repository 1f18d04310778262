// Package embedder generates 384-dimension vector embeddings for snippet
// text using hosted or local providers.
//
// Providers are selected from the environment:
//
//  1. If LEXSNIP_EMBEDDING_PROVIDER is set → use specified provider
//  2. Else if OPENAI_API_KEY is set → use OpenAI
//  3. Else if JINA_API_KEY is set → use Jina AI
//  4. Else → fallback to local provider (offline mode)
//
// All providers emit exactly 384 components, matching the vector(384)
// columns of the snippet table; the hosted models are asked for that
// dimension explicitly.
//
// # Basic Usage
//
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: "Smith v. Jones, 123 F.3d 456 (2nd Cir. 2023)",
//	})
//
// A snippet write needs up to three embeddings (citation, key language,
// combined); GenerateBatch keeps that to one provider round trip:
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: []string{citation, keyLanguage, combined},
//	})
//
// # Caching and retries
//
// Embeddings are cached in-memory by SHA-256 content hash with LRU
// eviction, so re-saving an unchanged field costs nothing. Hosted provider
// calls retry with exponential backoff; after the retry budget is exhausted
// the error wraps ErrProviderFailed, which the store surfaces as a
// model-unavailable failure without persisting a partial record.
//
// The local provider derives a deterministic unit vector from the text
// hash. It carries no semantic signal and exists for offline runs and
// tests.
package embedder
