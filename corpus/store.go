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
	"github.com/poiesic/faqbot/core"
)

// Store provides read access to the current corpus.
// Implementations must be safe for concurrent use.
type Store interface {
	// Version returns the marker of the current corpus content.
	// An empty corpus that failed to load has version "".
	Version() string

	// Entries returns the current entries in corpus order.
	// Entries are shared and must not be modified.
	Entries() []*core.FAQEntry

	// Snapshot returns the version and entries as one consistent view.
	Snapshot() *Snapshot
}

// Snapshot is an immutable view of the corpus at one version.
type Snapshot struct {
	Version string
	Entries []*core.FAQEntry
	byID    map[core.ID]*core.FAQEntry
}

// NewSnapshot builds a snapshot over entries, which must have unique ids.
func NewSnapshot(version string, entries []*core.FAQEntry) *Snapshot {
	byID := make(map[core.ID]*core.FAQEntry, len(entries))
	for _, e := range entries {
		byID[e.Id] = e
	}
	return &Snapshot{
		Version: version,
		Entries: entries,
		byID:    byID,
	}
}

var emptySnapshot = NewSnapshot("", nil)

// Entry looks up an entry by id.
func (s *Snapshot) Entry(id core.ID) (*core.FAQEntry, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// IDs returns the entry ids in corpus order.
func (s *Snapshot) IDs() []core.ID {
	ids := make([]core.ID, len(s.Entries))
	for i, e := range s.Entries {
		ids[i] = e.Id
	}
	return ids
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.Entries)
}
