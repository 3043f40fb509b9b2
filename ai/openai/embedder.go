package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// requestBatchSize caps the texts sent in one embeddings request.
const requestBatchSize = 64

// Embedder implements ai.Embedder on an OpenAI-compatible /embeddings endpoint.
// Single texts are embedded as queries, batches as corpus documents.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(requestBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder creates an embedder for config.EmbeddingModel.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a user query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Warn("query embedding failed", "err", err)
		return nil, err
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vec, nil
}

// EmbedTexts embeds corpus texts. Every returned vector has the same
// non-zero length.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("embedding documents", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Warn("document embedding failed", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: asked for %d vectors, got %d", ErrEmptyEmbedding, len(texts), len(vectors))
	}
	dim := len(vectors[0])
	for i, vec := range vectors {
		if len(vec) == 0 || len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d", ErrRaggedEmbeddings, i, len(vec), dim)
		}
	}
	return vectors, nil
}
