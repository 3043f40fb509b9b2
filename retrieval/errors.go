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

package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when an index is not provided.
	ErrIndexRequired = errors.New("index required")

	// ErrCorpusRequired is returned when a corpus store is not provided.
	ErrCorpusRequired = errors.New("corpus store required")
)
