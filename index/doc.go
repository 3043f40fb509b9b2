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

// Package index maintains the embedding index over the FAQ corpus.
//
// The index embeds every entry's question and keywords, keeps the resulting
// vectors in memory for exhaustive L2 nearest-neighbor search, and persists
// them as a storage.Artifact so a restart with an unchanged corpus does not
// re-embed anything.
//
// # Freshness
//
// EnsureFresh compares the corpus version against the version the current
// vectors were computed from and rebuilds when they differ. Retrieval calls it
// before every search, so results never reference a corpus version other
// than the current one.
//
// # Concurrency
//
// Readers take an immutable snapshot under a read lock. A rebuild computes the
// new snapshot without holding that lock and swaps it in at the end, so a
// concurrent search sees either the complete previous snapshot or the
// complete new one. Rebuilds are serialized by a separate mutex.
//
// # Degraded mode
//
// Without an embedder, or after a failed build, the index is empty and
// NearestNeighbors returns no results. Retrieval then falls back to keyword
// matching. A failed build is retried after RetryInterval.
package index
