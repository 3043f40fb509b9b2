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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, "llama3.2:1b", cfg.GeneratorModel)
	assert.Equal(t, "none", cfg.Token)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.GeneratorHost)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GeneratorHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGeneratorHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.GeneratorHost)
	})

	t.Run("with custom models and token", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithGeneratorModel("gpt-4o-mini"),
			WithToken("sk-test"),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.GeneratorModel)
		assert.Equal(t, "sk-test", cfg.Token)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"already has /v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing /v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"has trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, GeneratorHost: tt.host}
			cfg.Normalize()

			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, tt.expected, cfg.GeneratorHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid default config", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("normalizes before validating", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost is required"},
		{"missing generator host", func(c *Config) { c.GeneratorHost = "" }, "GeneratorHost is required"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel is required"},
		{"missing generator model", func(c *Config) { c.GeneratorModel = "" }, "GeneratorModel is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefaultGenerateOptions(t *testing.T) {
	opts := DefaultGenerateOptions()

	assert.Equal(t, 180, opts.MaxTokens)
	assert.InDelta(t, 0.2, opts.Temperature, 1e-9)
	assert.Contains(t, opts.StopSequences, "\n\n")
	assert.Contains(t, opts.StopSequences, "User:")
}
