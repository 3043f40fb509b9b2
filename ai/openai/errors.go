package openai

import "errors"

var (
	// ErrEmptyEmbedding is returned when the service answers without a usable vector.
	ErrEmptyEmbedding = errors.New("embedding service returned no vectors")

	// ErrRaggedEmbeddings is returned when a batch mixes vector lengths.
	ErrRaggedEmbeddings = errors.New("embedding service returned vectors of different lengths")

	// ErrEmptyCompletion is returned when the service answers without text.
	ErrEmptyCompletion = errors.New("generation service returned no text")
)
