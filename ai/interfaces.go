// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate completes the prompt using the given generation parameters.
	// Generation may be slow or hang; callers bound it through ctx.
	// Returns an error if the model call fails.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// GenerateOptions controls a single generation call.
type GenerateOptions struct {
	// MaxTokens bounds the length of the generated text.
	MaxTokens int

	// Temperature controls randomness. Values near 0 make generation
	// close to deterministic.
	Temperature float64

	// StopSequences end generation as soon as any of them is produced.
	StopSequences []string
}

// DefaultGenerateOptions returns the near-deterministic, short-form settings
// used for FAQ answers.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MaxTokens:     180,
		Temperature:   0.2,
		StopSequences: []string{"\n\n", "User:", "FAQ:", "Context:"},
	}
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the text generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
