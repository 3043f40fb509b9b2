package openai

import (
	"testing"

	"github.com/poiesic/faqbot/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	t.Run("separate hosts", func(t *testing.T) {
		cfg := ai.NewConfig(
			ai.WithEmbeddingHost("http://embed.local:11434"),
			ai.WithGeneratorHost("http://gen.local:8000/v1"),
		)
		provider, err := NewProvider(cfg)
		require.NoError(t, err)
		defer provider.Close()

		assert.NotNil(t, provider.Embedder())
		assert.NotNil(t, provider.Generator())
		assert.Equal(t, "http://embed.local:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := ai.NewConfig(ai.WithGeneratorModel(""))
		provider, err := NewProvider(cfg)
		assert.Error(t, err)
		assert.Nil(t, provider)
	})
}

func TestEmbedder_EmptyBatch(t *testing.T) {
	embedder, err := NewEmbedder(ai.DefaultConfig())
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}
