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

// Package retrieval implements hybrid search over the FAQ corpus.
//
// A search first asks the embedding index for the nearest entries to the
// query. When that yields fewer than topK results (no embedder, a failed
// index build, or a small corpus) keyword matching fills the remainder:
// an entry scores 0.3 plus 0.1 for each of its keywords found in the query.
//
// Vector results always rank before keyword results, every entry appears at
// most once, and at most topK results are returned.
//
// Basic usage:
//
//	r, err := retrieval.NewRetriever(idx, store)
//	results, err := r.Search(ctx, "jam buka rumah sakit", 3)
package retrieval
