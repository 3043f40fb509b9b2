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
	"math"
	"testing"
	"time"

	"github.com/poiesic/faqbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactMetaEncoding(t *testing.T) {
	builtAt := time.Date(2025, 3, 1, 10, 30, 0, 123456000, time.UTC)
	meta := ArtifactMeta{
		CorpusVersion: "abc123",
		Model:         "all-minilm",
		Dimension:     384,
		Count:         12,
		BuiltAt:       builtAt,
	}

	got, err := UnmarshalArtifactMeta(MarshalArtifactMeta(meta))
	require.NoError(t, err)
	assert.Equal(t, meta.CorpusVersion, got.CorpusVersion)
	assert.Equal(t, meta.Model, got.Model)
	assert.Equal(t, meta.Dimension, got.Dimension)
	assert.Equal(t, meta.Count, got.Count)
	assert.True(t, builtAt.Equal(got.BuiltAt))
}

func TestMatrixPreservesFloatBits(t *testing.T) {
	vectors := [][]float32{
		{0, 1, -1},
		{float32(math.Pi), 1e-30, -0.5},
	}
	got, dim, err := UnmarshalMatrix(MarshalMatrix(vectors, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
	assert.Equal(t, vectors, got)
}

func TestEmptyParts(t *testing.T) {
	ids, err := UnmarshalIDs(MarshalIDs(nil))
	require.NoError(t, err)
	assert.Empty(t, ids)

	vectors, _, err := UnmarshalMatrix(MarshalMatrix(nil, 0))
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestTruncatedData(t *testing.T) {
	t.Run("ids", func(t *testing.T) {
		data := MarshalIDs([]core.ID{1, 2, 300})
		_, err := UnmarshalIDs(data[:2])
		assert.Error(t, err)
	})

	t.Run("matrix", func(t *testing.T) {
		data := MarshalMatrix([][]float32{{1, 2}, {3, 4}}, 2)
		_, _, err := UnmarshalMatrix(data[:len(data)-3])
		assert.Error(t, err)
	})

	t.Run("meta", func(t *testing.T) {
		_, err := UnmarshalArtifactMeta(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestArtifactValidate(t *testing.T) {
	valid := &Artifact{Dimension: 2, EntryIds: []core.ID{1}, Vectors: [][]float32{{1, 0}}}
	assert.NoError(t, valid.Validate())

	mismatch := &Artifact{Dimension: 2, EntryIds: []core.ID{1, 2}, Vectors: [][]float32{{1, 0}}}
	assert.ErrorIs(t, mismatch.Validate(), ErrInvalidArtifact)

	badRow := &Artifact{Dimension: 3, EntryIds: []core.ID{1}, Vectors: [][]float32{{1, 0}}}
	assert.ErrorIs(t, badRow.Validate(), ErrInvalidArtifact)

	var nilArtifact *Artifact
	assert.ErrorIs(t, nilArtifact.Validate(), ErrInvalidArtifact)
}
