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

// Package storage provides persistence for the FAQ index artifact.
//
// The artifact is the derived, on-disk form of the embedding index: a vector
// matrix, the reverse index mapping matrix rows to entry ids, and metadata
// recording which corpus version and embedding model produced it.
//
// # Atomicity
//
// ArtifactRepository implementations must write an artifact as one atomic
// unit. A reader either loads the previously saved artifact or the new one,
// never a mix. The BadgerDB implementation writes all parts in a single
// transaction and reads them from a single snapshot.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to keep callers independent of
// the backend:
//
//	repo := badger.NewArtifactRepository(backend) // returns storage.ArtifactRepository
//
// # Serialization
//
// Artifact parts are encoded with mus-go (see serialization.go). The format
// is internal to this package; an artifact that fails to decode is treated as
// missing and rebuilt by the index.
package storage
