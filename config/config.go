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

// Package config loads the faqbot configuration file.
//
// The file is TOML. Every key is optional; missing keys keep their defaults
// and unknown keys are rejected so typos do not pass silently:
//
//	[corpus]
//	path = "data/faqs.json"
//	watch = true
//
//	[index]
//	path = "data/index"
//
//	[ai]
//	host = "http://localhost:11434"
//	embedding_model = "all-minilm"
//	generator_model = "llama3.2:1b"
//
//	[compose]
//	oracle_timeout = "10s"
//
//	[compose.intent_routes]
//	faq_operating_hours = 1
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/compose"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/session"
)

// ErrInvalidConfig indicates a configuration failed validation.
var ErrInvalidConfig = errors.New("invalid config")

// Duration is a time.Duration written as a string such as "250ms" or "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the whole configuration file.
type Config struct {
	Corpus  CorpusConfig  `toml:"corpus"`
	Index   IndexConfig   `toml:"index"`
	AI      AIConfig      `toml:"ai"`
	Compose ComposeConfig `toml:"compose"`
	Session SessionConfig `toml:"session"`
}

// CorpusConfig locates the FAQ corpus.
type CorpusConfig struct {
	Path     string   `toml:"path"`
	Watch    bool     `toml:"watch"`
	Debounce Duration `toml:"debounce"`
}

// IndexConfig controls the embedding index and its artifact.
type IndexConfig struct {
	Path          string   `toml:"path"`
	InMemory      bool     `toml:"in_memory"`
	BatchSize     int      `toml:"batch_size"`
	Workers       int      `toml:"workers"`
	MaxAttempts   int      `toml:"max_attempts"`
	BaseDelay     Duration `toml:"base_delay"`
	RetryInterval Duration `toml:"retry_interval"`
}

// AIConfig selects the embedding and generation services. Host, when set,
// applies to both services and is overridden by the per-service hosts.
type AIConfig struct {
	Embeddings     bool   `toml:"embeddings"`
	Generation     bool   `toml:"generation"`
	Host           string `toml:"host"`
	EmbeddingHost  string `toml:"embedding_host"`
	GeneratorHost  string `toml:"generator_host"`
	EmbeddingModel string `toml:"embedding_model"`
	GeneratorModel string `toml:"generator_model"`
	Token          string `toml:"token"`
}

// ComposeConfig holds the response decision parameters.
type ComposeConfig struct {
	TopK                      int               `toml:"top_k"`
	HighThreshold             float64           `toml:"high_threshold"`
	MediumThreshold           float64           `toml:"medium_threshold"`
	IntentConfidenceThreshold float64           `toml:"intent_confidence_threshold"`
	IntentRoutes              map[string]uint64 `toml:"intent_routes"`
	MinResponseLength         int               `toml:"min_response_length"`
	OracleTimeout             Duration          `toml:"oracle_timeout"`
	Workers                   int               `toml:"workers"`
	AssistantName             string            `toml:"assistant_name"`
	MaxMultiSentences         int               `toml:"max_multi_sentences"`
	MaxTokens                 int               `toml:"max_tokens"`
	Temperature               float64           `toml:"temperature"`
	Stop                      []string          `toml:"stop"`
}

// SessionConfig sizes the context store.
type SessionConfig struct {
	Shards int `toml:"shards"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cc := compose.DefaultConfig()
	aic := ai.DefaultConfig()

	routes := make(map[string]uint64, len(cc.IntentRoutes))
	for label, id := range cc.IntentRoutes {
		routes[label] = uint64(id)
	}

	return &Config{
		Corpus: CorpusConfig{
			Path:     "data/faqs.json",
			Watch:    false,
			Debounce: Duration(250 * time.Millisecond),
		},
		Index: IndexConfig{
			Path:          "data/index",
			BatchSize:     index.DefaultBatchSize,
			Workers:       index.DefaultWorkers,
			MaxAttempts:   index.DefaultMaxAttempts,
			BaseDelay:     Duration(index.DefaultBaseDelay),
			RetryInterval: Duration(index.DefaultRetryInterval),
		},
		AI: AIConfig{
			Embeddings:     true,
			Generation:     true,
			Host:           aic.EmbeddingHost,
			EmbeddingModel: aic.EmbeddingModel,
			GeneratorModel: aic.GeneratorModel,
			Token:          aic.Token,
		},
		Compose: ComposeConfig{
			TopK:                      cc.TopK,
			HighThreshold:             float64(cc.HighThreshold),
			MediumThreshold:           float64(cc.MediumThreshold),
			IntentConfidenceThreshold: float64(cc.IntentConfidenceThreshold),
			IntentRoutes:              routes,
			MinResponseLength:         cc.MinResponseLength,
			OracleTimeout:             Duration(cc.OracleTimeout),
			Workers:                   cc.Workers,
			AssistantName:             cc.AssistantName,
			MaxMultiSentences:         cc.MaxMultiSentences,
			MaxTokens:                 cc.Generate.MaxTokens,
			Temperature:               cc.Generate.Temperature,
			Stop:                      cc.Generate.StopSequences,
		},
		Session: SessionConfig{
			Shards: session.DefaultShards,
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Routes in the file replace the defaults instead of merging with them.
	var probe struct {
		Compose struct {
			IntentRoutes map[string]uint64 `toml:"intent_routes"`
		} `toml:"compose"`
	}
	if err := toml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if probe.Compose.IntentRoutes != nil {
		cfg.Compose.IntentRoutes = nil
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Corpus.Path == "" {
		return fmt.Errorf("%w: corpus.path is required", ErrInvalidConfig)
	}
	if c.Corpus.Debounce < 0 {
		return fmt.Errorf("%w: corpus.debounce is negative", ErrInvalidConfig)
	}
	if !c.Index.InMemory && c.Index.Path == "" {
		return fmt.Errorf("%w: index.path is required unless index.in_memory is set", ErrInvalidConfig)
	}
	if c.Index.BatchSize <= 0 || c.Index.Workers <= 0 || c.Index.MaxAttempts <= 0 {
		return fmt.Errorf("%w: index batch_size, workers and max_attempts must be positive", ErrInvalidConfig)
	}
	if c.Session.Shards <= 0 {
		return fmt.Errorf("%w: session.shards must be positive", ErrInvalidConfig)
	}
	if c.AI.Embeddings || c.AI.Generation {
		if err := c.AIConfig().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	cc := c.ComposeConfig()
	return cc.Validate()
}

// AIConfig builds the service configuration.
func (c *Config) AIConfig() *ai.Config {
	opts := make([]ai.ConfigOption, 0, 5)
	if c.AI.Host != "" {
		opts = append(opts, ai.WithHost(c.AI.Host))
	}
	if c.AI.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(c.AI.EmbeddingHost))
	}
	if c.AI.GeneratorHost != "" {
		opts = append(opts, ai.WithGeneratorHost(c.AI.GeneratorHost))
	}
	opts = append(opts,
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGeneratorModel(c.AI.GeneratorModel),
		ai.WithToken(c.AI.Token),
	)
	return ai.NewConfig(opts...)
}

// IndexOptions builds the index options. The model name is recorded only
// when embeddings are enabled.
func (c *Config) IndexOptions() []index.Option {
	opts := []index.Option{
		index.WithBatchSize(c.Index.BatchSize),
		index.WithWorkers(c.Index.Workers),
		index.WithRetry(c.Index.MaxAttempts, time.Duration(c.Index.BaseDelay)),
		index.WithRetryInterval(time.Duration(c.Index.RetryInterval)),
	}
	if c.AI.Embeddings {
		opts = append(opts, index.WithModel(c.AI.EmbeddingModel))
	}
	return opts
}

// ComposeConfig builds the composer configuration.
func (c *Config) ComposeConfig() compose.Config {
	cc := compose.DefaultConfig()
	cc.TopK = c.Compose.TopK
	cc.HighThreshold = float32(c.Compose.HighThreshold)
	cc.MediumThreshold = float32(c.Compose.MediumThreshold)
	cc.IntentConfidenceThreshold = float32(c.Compose.IntentConfidenceThreshold)
	cc.IntentRoutes = make(map[string]core.ID, len(c.Compose.IntentRoutes))
	for label, id := range c.Compose.IntentRoutes {
		cc.IntentRoutes[label] = core.ID(id)
	}
	cc.MinResponseLength = c.Compose.MinResponseLength
	cc.OracleTimeout = time.Duration(c.Compose.OracleTimeout)
	cc.Workers = c.Compose.Workers
	cc.AssistantName = c.Compose.AssistantName
	cc.MaxMultiSentences = c.Compose.MaxMultiSentences
	cc.Generate = ai.GenerateOptions{
		MaxTokens:     c.Compose.MaxTokens,
		Temperature:   c.Compose.Temperature,
		StopSequences: append([]string(nil), c.Compose.Stop...),
	}
	return cc
}
