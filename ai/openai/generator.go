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
	"context"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible completion APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new text generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate completes a single prompt.
// The prompt is sent as one human message; stop sequences are passed through
// so the server ends generation early.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	callOpts := []llms.CallOption{
		llms.WithTemperature(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if len(opts.StopSequences) > 0 {
		callOpts = append(callOpts, llms.WithStopWords(opts.StopSequences))
	}

	g.logger.Debug("generating completion", "promptLength", len(prompt), "maxTokens", opts.MaxTokens)

	text, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, callOpts...)
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	text = cleanCompletion(text, opts.StopSequences)
	if text == "" {
		g.logger.Debug("model returned empty completion")
		return "", ErrEmptyCompletion
	}
	return text, nil
}
