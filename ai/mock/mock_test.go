package mock

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/faqbot/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	v1, err := m.EmbedText(ctx, "jam buka")
	require.NoError(t, err)
	v2, err := m.EmbedText(ctx, "jam buka")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 384)
	assert.Equal(t, 2, m.CallCount())

	var sum float64
	for _, v := range v1 {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4, "vectors are unit length")
}

func TestMockEmbedder_EmbedTextsUsesSingleHook(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{float32(len(text))}, nil
	}

	vecs, err := m.EmbedTexts(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {3}}, vecs)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.Nil(t, m.EmbedTextFunc)
}

func TestMockGenerator(t *testing.T) {
	ctx := context.Background()
	m := NewMockGenerator()

	text, err := m.Generate(ctx, "line one\nline two\n", ai.DefaultGenerateOptions())
	require.NoError(t, err)
	assert.Equal(t, "line two", text)
	assert.Equal(t, "line one\nline two\n", m.LastPrompt())
	assert.Equal(t, 180, m.LastOptions().MaxTokens)

	m.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "fixed", nil
	}
	text, err = m.Generate(ctx, "x", ai.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fixed", text)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp, ok := p.(*MockProvider)
	require.True(t, ok)

	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.Same(t, mp.GetMockGenerator(), p.Generator())
	assert.NoError(t, p.Close())
}
