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

// Package mock provides test doubles for the ai package interfaces.
//
// # Usage
//
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	mockGenerator := mock.NewMockGenerator()
//	mockGenerator.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
//	    return "Poli gigi buka pukul 08:00-14:00.", nil
//	}
//
//	count := mockGenerator.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockGenerator: Echoes the last non-empty line of the prompt
//   - MockProvider: Aggregates mock embedder and generator
//
// Call counters are atomic so the doubles can be shared across goroutines.
package mock
