package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvJinaAPIKey, "")
}

func TestNewFromEnv(t *testing.T) {
	t.Run("defaults to local with no configuration", func(t *testing.T) {
		clearProviderEnv(t)

		emb, err := NewFromEnv()
		require.NoError(t, err)
		defer emb.Close()
		assert.Equal(t, ProviderLocal, emb.Provider())
	})

	t.Run("openai key selects openai", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvOpenAIAPIKey, "sk-test")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		defer emb.Close()
		assert.Equal(t, ProviderOpenAI, emb.Provider())
	})

	t.Run("jina key selects jina", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvJinaAPIKey, "jina-test")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		defer emb.Close()
		assert.Equal(t, ProviderJina, emb.Provider())
	})

	t.Run("explicit provider wins over keys", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvProvider, "local")
		t.Setenv(EnvOpenAIAPIKey, "sk-test")

		emb, err := NewFromEnv()
		require.NoError(t, err)
		defer emb.Close()
		assert.Equal(t, ProviderLocal, emb.Provider())
	})

	t.Run("unknown provider", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv(EnvProvider, "cohere")

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrUnsupportedModel)
	})
}

func TestNew(t *testing.T) {
	emb, err := New(Config{Provider: ProviderLocal, CacheSize: 100})
	require.NoError(t, err)
	defer emb.Close()
	assert.Equal(t, ProviderLocal, emb.Provider())

	_, err = New(Config{Provider: "unknown"})
	assert.Error(t, err)
}

func TestDetectProvider(t *testing.T) {
	clearProviderEnv(t)
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvOpenAIAPIKey, "sk-test")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv(EnvProvider, "jina")
	assert.Equal(t, ProviderJina, DetectProvider())
}
