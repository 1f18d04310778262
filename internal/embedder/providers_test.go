package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderDeterminism(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	first, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "right to counsel"})
	require.NoError(t, err)
	second, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "right to counsel"})
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector, "same text always yields the same vector")

	other, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "right to remain silent"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Vector, other.Vector)
}

func TestLocalProviderVectorShape(t *testing.T) {
	provider, err := NewLocalProvider(NewCache(10))
	require.NoError(t, err)
	defer provider.Close()

	emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "due process"})
	require.NoError(t, err)

	require.Len(t, emb.Vector, Dimension)
	assert.Equal(t, ProviderLocal, emb.Provider)
	assert.Equal(t, ComputeHash("due process"), emb.Hash)

	var norm float64
	for _, v := range emb.Vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5, "vectors are unit length")
}

func TestLocalProviderBatch(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	ctx := context.Background()
	resp, err := provider.GenerateBatch(ctx, BatchEmbeddingRequest{
		Texts: []string{"citation", "key language", "combined"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 3)

	single, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "key language"})
	require.NoError(t, err)
	assert.Equal(t, single.Vector, resp.Embeddings[1].Vector, "batch order follows input order")

	_, err = provider.GenerateBatch(ctx, BatchEmbeddingRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLocalProviderValidation(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProviderMetadata(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, ProviderLocal, provider.Provider())
	assert.NotEmpty(t, provider.Model())
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	_, err := NewOpenAIProvider("", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestJinaProviderRequiresKey(t *testing.T) {
	t.Setenv(EnvJinaAPIKey, "")
	_, err := NewJinaProvider("", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}

func TestOpenAIProviderMetadata(t *testing.T) {
	provider, err := NewOpenAIProvider("test-key", NewCache(10))
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, ProviderOpenAI, provider.Provider())
	assert.Equal(t, DefaultOpenAIModel, provider.Model())
}

func TestJinaProviderMetadata(t *testing.T) {
	provider, err := NewJinaProvider("test-key", NewCache(10))
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, ProviderJina, provider.Provider())
	assert.Equal(t, DefaultJinaModel, provider.Model())
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero, "zero vector stays zero")
}
