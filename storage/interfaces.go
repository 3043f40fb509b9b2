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

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/faqbot/core"
)

// Artifact is the persisted form of the embedding index.
type Artifact struct {
	CorpusVersion string      // Version of the corpus the vectors were computed from
	Model         string      // Embedding model identifier, informational
	Dimension     int         // Length of every vector
	EntryIds      []core.ID   // Reverse index: row i of Vectors belongs to EntryIds[i]
	Vectors       [][]float32 // Vector matrix, one row per entry
	BuiltAt       time.Time
}

// Validate checks that the matrix and reverse index agree.
func (a *Artifact) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: artifact is nil", ErrInvalidArtifact)
	}
	if len(a.EntryIds) != len(a.Vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", ErrInvalidArtifact, len(a.EntryIds), len(a.Vectors))
	}
	for i, v := range a.Vectors {
		if len(v) != a.Dimension {
			return fmt.Errorf("%w: row %d has dimension %d, want %d", ErrInvalidArtifact, i, len(v), a.Dimension)
		}
	}
	return nil
}

// ArtifactRepository stores the single current index artifact.
type ArtifactRepository interface {
	// SaveArtifact replaces the stored artifact atomically.
	SaveArtifact(ctx context.Context, artifact *Artifact) error

	// LoadArtifact returns the stored artifact.
	// Returns ErrNotFound if none has been saved.
	LoadArtifact(ctx context.Context) (*Artifact, error)

	// DeleteArtifact removes the stored artifact. Deleting a missing
	// artifact is not an error.
	DeleteArtifact(ctx context.Context) error

	// Close releases resources held by the repository.
	Close() error
}
