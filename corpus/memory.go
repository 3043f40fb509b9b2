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

package corpus

import (
	"log/slog"
	"sync"

	"github.com/poiesic/faqbot/core"
)

// MemoryStore is a Store over entries supplied in code.
// Its version is derived from the encoded entries, so replacing the entries
// with identical content keeps the version.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding copies of entries.
func NewMemoryStore(entries ...*core.FAQEntry) *MemoryStore {
	s := &MemoryStore{snapshot: emptySnapshot}
	s.Replace(entries...)
	return s
}

// Replace swaps the corpus for copies of entries.
// Invalid entries and repeated ids are dropped as in FileStore.
func (s *MemoryStore) Replace(entries ...*core.FAQEntry) {
	clones := make([]*core.FAQEntry, 0, len(entries))
	for _, e := range entries {
		clones = append(clones, e.Clone())
	}

	data, err := EncodeEntries(clones)
	if err == nil {
		clones, err = ParseEntries(data, slog.Default())
	}

	snap := emptySnapshot
	if err == nil && len(clones) > 0 {
		data, _ = EncodeEntries(clones)
		snap = NewSnapshot(core.VersionFromContent(data), clones)
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

// Snapshot returns the current corpus view.
func (s *MemoryStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Version returns the content version of the current corpus.
func (s *MemoryStore) Version() string {
	return s.Snapshot().Version
}

// Entries returns the current entries.
func (s *MemoryStore) Entries() []*core.FAQEntry {
	return s.Snapshot().Entries
}
