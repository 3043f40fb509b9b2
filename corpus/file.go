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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/poiesic/faqbot/core"
)

// record is the on-disk shape of one FAQ entry.
type record struct {
	Id       core.ID  `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// FileStore serves the corpus from a JSON file.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	modTime  time.Time
	size     int64
	lastErr  error
}

var _ Store = (*FileStore)(nil)

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileStore) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewFileStore creates a store backed by the JSON file at path and loads it.
// A load failure is logged and leaves the store empty; see Err.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:     path,
		logger:   slog.Default(),
		snapshot: emptySnapshot,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "corpus", "path", path)
	_ = s.Reload()
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Reload re-reads the file unconditionally.
// On failure the store degrades to an empty corpus and the error, wrapping
// ErrCorpusUnavailable, is returned and kept for Err.
func (s *FileStore) Reload() error {
	info, statErr := os.Stat(s.path)
	data, err := os.ReadFile(s.path)
	if err == nil {
		err = statErr
	}
	if err != nil {
		return s.degrade(fmt.Errorf("%w: %w", ErrCorpusUnavailable, err), info)
	}

	entries, err := ParseEntries(data, s.logger)
	if err != nil {
		return s.degrade(err, info)
	}

	snap := NewSnapshot(core.VersionFromContent(data), entries)

	s.mu.Lock()
	changed := snap.Version != s.snapshot.Version
	s.snapshot = snap
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.lastErr = nil
	s.mu.Unlock()

	if changed {
		s.logger.Info("loaded corpus", "entries", len(entries), "version", shortVersion(snap.Version))
	}
	return nil
}

func (s *FileStore) degrade(err error, info os.FileInfo) error {
	s.logger.Error("corpus unavailable, serving empty corpus", "err", err)
	s.mu.Lock()
	s.snapshot = emptySnapshot
	s.lastErr = err
	if info != nil {
		s.modTime = info.ModTime()
		s.size = info.Size()
	} else {
		s.modTime = time.Time{}
		s.size = -1
	}
	s.mu.Unlock()
	return err
}

// Err returns the error of the most recent load, or nil.
func (s *FileStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// refresh reloads the file when its modification time or size changed.
func (s *FileStore) refresh() {
	info, err := os.Stat(s.path)

	s.mu.RLock()
	modTime, size := s.modTime, s.size
	s.mu.RUnlock()

	if err != nil {
		if size == -1 {
			// Already degraded for a missing file
			return
		}
		_ = s.degrade(fmt.Errorf("%w: %w", ErrCorpusUnavailable, err), nil)
		return
	}
	if info.ModTime().Equal(modTime) && info.Size() == size {
		return
	}
	_ = s.Reload()
}

// Snapshot returns the current corpus view, reloading first if the file changed.
func (s *FileStore) Snapshot() *Snapshot {
	s.refresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Version returns the content version of the current corpus.
func (s *FileStore) Version() string {
	return s.Snapshot().Version
}

// Entries returns the current entries.
func (s *FileStore) Entries() []*core.FAQEntry {
	return s.Snapshot().Entries
}

// ParseEntries decodes a JSON array of FAQ records.
// Records failing validation or repeating an id are skipped with a warning.
// Undecodable input returns an error wrapping ErrCorpusUnavailable.
func ParseEntries(data []byte, logger *slog.Logger) ([]*core.FAQEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpusUnavailable, err)
	}

	entries := make([]*core.FAQEntry, 0, len(records))
	seen := make(map[core.ID]bool, len(records))
	for i, r := range records {
		entry := &core.FAQEntry{
			Id:       r.Id,
			Question: r.Question,
			Answer:   r.Answer,
			Keywords: core.NormalizeKeywords(r.Keywords),
		}
		if err := core.ValidateFAQEntry(entry); err != nil {
			logger.Warn("skipping invalid corpus record", "index", i, "err", err)
			continue
		}
		if seen[entry.Id] {
			logger.Warn("skipping corpus record", "index", i, "err", fmt.Errorf("%w: %d", ErrDuplicateID, entry.Id))
			continue
		}
		seen[entry.Id] = true
		entries = append(entries, entry)
	}
	return entries, nil
}

// EncodeEntries renders entries in the corpus file format.
func EncodeEntries(entries []*core.FAQEntry) ([]byte, error) {
	records := make([]record, len(entries))
	for i, e := range entries {
		records[i] = record{
			Id:       e.Id,
			Question: e.Question,
			Answer:   e.Answer,
			Keywords: e.Keywords,
		}
	}
	return json.MarshalIndent(records, "", "  ")
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}
