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
	"fmt"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/faqbot/core"
)

// ArtifactMeta is the metadata record of an artifact.
type ArtifactMeta struct {
	CorpusVersion string
	Model         string
	Dimension     int
	Count         int
	BuiltAt       time.Time
}

// Meta extracts the metadata record of an artifact.
func (a *Artifact) Meta() ArtifactMeta {
	return ArtifactMeta{
		CorpusVersion: a.CorpusVersion,
		Model:         a.Model,
		Dimension:     a.Dimension,
		Count:         len(a.EntryIds),
		BuiltAt:       a.BuiltAt,
	}
}

// MarshalArtifactMeta serializes artifact metadata to bytes.
// BuiltAt is stored with microsecond precision.
func MarshalArtifactMeta(meta ArtifactMeta) []byte {
	builtAt := meta.BuiltAt.UnixMicro()
	size := ord.String.Size(meta.CorpusVersion) +
		ord.String.Size(meta.Model) +
		varint.Uint64.Size(uint64(meta.Dimension)) +
		varint.Uint64.Size(uint64(meta.Count)) +
		varint.Int64.Size(builtAt)
	buf := make([]byte, size)
	n := ord.String.Marshal(meta.CorpusVersion, buf)
	n += ord.String.Marshal(meta.Model, buf[n:])
	n += varint.Uint64.Marshal(uint64(meta.Dimension), buf[n:])
	n += varint.Uint64.Marshal(uint64(meta.Count), buf[n:])
	varint.Int64.Marshal(builtAt, buf[n:])
	return buf
}

// UnmarshalArtifactMeta deserializes artifact metadata from bytes.
func UnmarshalArtifactMeta(data []byte) (ArtifactMeta, error) {
	var meta ArtifactMeta
	version, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return meta, wrapDecode("corpus version", err)
	}
	off := n
	model, n, err := ord.String.Unmarshal(data[off:])
	if err != nil {
		return meta, wrapDecode("model", err)
	}
	off += n
	dim, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return meta, wrapDecode("dimension", err)
	}
	off += n
	count, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return meta, wrapDecode("count", err)
	}
	off += n
	builtAt, _, err := varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return meta, wrapDecode("built at", err)
	}
	meta.CorpusVersion = version
	meta.Model = model
	meta.Dimension = int(dim)
	meta.Count = int(count)
	meta.BuiltAt = time.UnixMicro(builtAt).UTC()
	return meta, nil
}

// MarshalIDs serializes the reverse index: a length prefix followed by ids.
func MarshalIDs(ids []core.ID) []byte {
	size := varint.Uint64.Size(uint64(len(ids)))
	for _, id := range ids {
		size += varint.Uint64.Size(uint64(id))
	}
	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(len(ids)), buf)
	for _, id := range ids {
		n += varint.Uint64.Marshal(uint64(id), buf[n:])
	}
	return buf
}

// UnmarshalIDs deserializes the reverse index.
func UnmarshalIDs(data []byte) ([]core.ID, error) {
	count, off, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, wrapDecode("id count", err)
	}
	// Every id takes at least one byte.
	if count > uint64(len(data)-off) {
		return nil, fmt.Errorf("%w: %d ids in %d bytes", ErrTruncatedData, count, len(data)-off)
	}
	ids := make([]core.ID, count)
	for i := range ids {
		v, n, err := varint.Uint64.Unmarshal(data[off:])
		if err != nil {
			return nil, wrapDecode("id", err)
		}
		ids[i] = core.ID(v)
		off += n
	}
	return ids, nil
}

// MarshalMatrix serializes the vector matrix. The row count and dimension
// precede the row-major float bits.
func MarshalMatrix(vectors [][]float32, dimension int) []byte {
	size := varint.Uint64.Size(uint64(len(vectors))) + varint.Uint64.Size(uint64(dimension))
	for _, row := range vectors {
		for _, f := range row {
			size += varint.Uint32.Size(math.Float32bits(f))
		}
	}
	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(len(vectors)), buf)
	n += varint.Uint64.Marshal(uint64(dimension), buf[n:])
	for _, row := range vectors {
		for _, f := range row {
			n += varint.Uint32.Marshal(math.Float32bits(f), buf[n:])
		}
	}
	return buf
}

// UnmarshalMatrix deserializes the vector matrix.
func UnmarshalMatrix(data []byte) ([][]float32, int, error) {
	rows, off, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, 0, wrapDecode("row count", err)
	}
	dim, n, err := varint.Uint64.Unmarshal(data[off:])
	if err != nil {
		return nil, 0, wrapDecode("dimension", err)
	}
	off += n
	if rows*dim > uint64(len(data)-off) {
		return nil, 0, fmt.Errorf("%w: %dx%d matrix in %d bytes", ErrTruncatedData, rows, dim, len(data)-off)
	}
	vectors := make([][]float32, rows)
	for i := range vectors {
		row := make([]float32, dim)
		for j := range row {
			bits, n, err := varint.Uint32.Unmarshal(data[off:])
			if err != nil {
				return nil, 0, wrapDecode("vector", err)
			}
			row[j] = math.Float32frombits(bits)
			off += n
		}
		vectors[i] = row
	}
	return vectors, int(dim), nil
}

func wrapDecode(part string, err error) error {
	return fmt.Errorf("%w: decoding %s: %w", ErrSerializationFailed, part, err)
}
