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

package index

import "errors"

var (
	// ErrEmbedderRequired is returned when an operation needs an embedder and none is configured.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrDimensionMismatch is returned when embeddings disagree on dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingCount is returned when the embedder returns a different number of vectors than texts.
	ErrEmbeddingCount = errors.New("embedding count mismatch")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidBatchSize is returned when batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
)
