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

// Package corpus holds the FAQ entries the bot answers from.
//
// A Store exposes the current entries together with a version marker derived
// from the corpus content. The version changes whenever the content changes,
// which is how the index decides it must rebuild.
//
// FileStore reads a JSON array of records:
//
//	[
//	  {"id": 1, "question": "Jam buka?", "answer": "08:00-20:00", "keywords": ["jam", "buka"]}
//	]
//
// An unreadable or malformed file is not fatal: the store logs
// ErrCorpusUnavailable and serves an empty corpus until the file becomes
// readable again. Watcher reloads a FileStore as soon as the file changes on
// disk; without it the store still notices changes on the next Version call.
package corpus
