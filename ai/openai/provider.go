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

package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
)

// Provider pairs the embedding and generation clients used by the FAQ core.
// Both talk to OpenAI-compatible servers, possibly on different hosts.
type Provider struct {
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider validates config and creates both clients.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	generator, err := newGenerator(config)
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("provider ready",
		"embedding_host", config.EmbeddingHost, "embedding_model", config.EmbeddingModel,
		"generator_host", config.GeneratorHost, "generator_model", config.GeneratorModel)

	return &Provider{
		embedder:  embedder,
		generator: generator,
		logger:    logger,
	}, nil
}

// Embedder returns the embedding client.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the generation client.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Close is a no-op; the HTTP clients hold no resources that need releasing.
func (p *Provider) Close() error {
	return nil
}
