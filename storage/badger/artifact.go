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

package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqbot/storage"
)

// ArtifactRepository implements storage.ArtifactRepository using BadgerDB.
type ArtifactRepository struct {
	backend *Backend
}

var _ storage.ArtifactRepository = (*ArtifactRepository)(nil)

// NewArtifactRepository creates a new BadgerDB-backed artifact repository.
// The repository does not own the backend; closing the repository leaves the
// backend open.
func NewArtifactRepository(backend *Backend) storage.ArtifactRepository {
	return &ArtifactRepository{backend: backend}
}

// SaveArtifact writes metadata, reverse index and matrix in one transaction.
func (r *ArtifactRepository) SaveArtifact(ctx context.Context, artifact *storage.Artifact) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := artifact.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta := storage.MarshalArtifactMeta(artifact.Meta())
	ids := storage.MarshalIDs(artifact.EntryIds)
	matrix := storage.MarshalMatrix(artifact.Vectors, artifact.Dimension)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(artifactMetaKey), meta); err != nil {
			return err
		}
		if err := tx.Set([]byte(artifactIDsKey), ids); err != nil {
			return err
		}
		if err := tx.Set([]byte(artifactMatrixKey), matrix); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadArtifact reads all artifact parts from a single read snapshot.
func (r *ArtifactRepository) LoadArtifact(ctx context.Context) (*storage.Artifact, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var artifact *storage.Artifact
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var meta storage.ArtifactMeta
		if err := readValue(tx, artifactMetaKey, func(val []byte) error {
			var err error
			meta, err = storage.UnmarshalArtifactMeta(val)
			return err
		}); err != nil {
			return err
		}

		a := &storage.Artifact{
			CorpusVersion: meta.CorpusVersion,
			Model:         meta.Model,
			Dimension:     meta.Dimension,
			BuiltAt:       meta.BuiltAt,
		}
		if err := readValue(tx, artifactIDsKey, func(val []byte) error {
			var err error
			a.EntryIds, err = storage.UnmarshalIDs(val)
			return err
		}); err != nil {
			return err
		}
		if err := readValue(tx, artifactMatrixKey, func(val []byte) error {
			var err error
			var dim int
			a.Vectors, dim, err = storage.UnmarshalMatrix(val)
			if err == nil && dim != meta.Dimension && len(a.Vectors) > 0 {
				err = fmt.Errorf("%w: matrix dimension %d, metadata says %d", storage.ErrInvalidArtifact, dim, meta.Dimension)
			}
			return err
		}); err != nil {
			return err
		}
		if len(a.EntryIds) != meta.Count {
			return fmt.Errorf("%w: metadata count %d, %d ids stored", storage.ErrInvalidArtifact, meta.Count, len(a.EntryIds))
		}
		if err := a.Validate(); err != nil {
			return err
		}
		artifact = a
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// DeleteArtifact removes all artifact parts.
func (r *ArtifactRepository) DeleteArtifact(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range artifactKeys() {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Close is a no-op; the backend is owned by the caller.
func (r *ArtifactRepository) Close() error {
	return nil
}

func readValue(tx *badger.Txn, key string, fn func(val []byte) error) error {
	item, err := tx.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		return err
	}
	return item.Value(fn)
}
