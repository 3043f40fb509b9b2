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

// Package ai provides abstractions for the model services used by faqbot.
//
// Two oracles sit behind these interfaces:
//
//   - Embedder: maps text to a fixed-dimension vector for the FAQ index
//   - Generator: completes a prompt, used to paraphrase canonical answers
//
// AIProvider aggregates both for initialization and shutdown.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible APIs (Ollama, LocalAI, vLLM) via langchaingo
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return the interface types. The mock
// constructors return concrete types so tests can inject behavior and read
// call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "jam buka poli gigi")
//	text, err := provider.Generator().Generate(ctx, prompt, ai.DefaultGenerateOptions())
package ai
