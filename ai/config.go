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

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// GeneratorHost is the base URL for the text generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	GeneratorHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// GeneratorModel is the model identifier to use for answer generation.
	// Example: "llama3.2:1b", "gpt-4o-mini"
	GeneratorModel string

	// Token is the API token. Local servers accept any value.
	// Default: "none"
	Token string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithHost sets both embedding and generator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.GeneratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGeneratorModel sets the generation model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and generation use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		GeneratorHost:  defaultHost,
		EmbeddingModel: "all-minilm",
		GeneratorModel: "llama3.2:1b",
		Token:          "none",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithGeneratorHost("http://localhost:9100/v1"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.GeneratorHost = normalizeHost(c.GeneratorHost)
	if c.Token == "" {
		c.Token = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	return nil
}
