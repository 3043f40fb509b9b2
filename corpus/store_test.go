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
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/faqbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `[
  {"id": 1, "question": "Jam buka?", "answer": "08:00-20:00", "keywords": ["jam", "buka"]},
  {"id": 2, "question": "Apakah menerima BPJS?", "answer": "Ya, kami menerima pasien BPJS.", "keywords": ["bpjs", "asuransi"]}
]`

func writeCorpus(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestFileStore_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	writeCorpus(t, path, sampleCorpus, time.Now().Add(-time.Hour))

	store := NewFileStore(path)
	require.NoError(t, store.Err())

	snap := store.Snapshot()
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, []core.ID{1, 2}, snap.IDs())
	assert.Equal(t, core.VersionFromContent([]byte(sampleCorpus)), store.Version())

	entry, ok := snap.Entry(2)
	require.True(t, ok)
	assert.Equal(t, "Ya, kami menerima pasien BPJS.", entry.Answer)
	assert.Equal(t, []string{"bpjs", "asuransi"}, entry.Keywords)
}

func TestFileStore_MissingFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	store := NewFileStore(path)
	assert.ErrorIs(t, store.Err(), ErrCorpusUnavailable)
	assert.Empty(t, store.Entries())
	assert.Equal(t, "", store.Version())
}

func TestFileStore_MalformedFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	writeCorpus(t, path, `{"not": "an array"`, time.Now())

	store := NewFileStore(path)
	assert.ErrorIs(t, store.Err(), ErrCorpusUnavailable)
	assert.Empty(t, store.Entries())
}

func TestFileStore_SkipsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	writeCorpus(t, path, `[
	  {"id": 1, "question": "Jam buka?", "answer": "08:00-20:00", "keywords": ["jam"]},
	  {"id": 0, "question": "no id", "answer": "x"},
	  {"id": 3, "question": "", "answer": "x"},
	  {"id": 1, "question": "duplicate", "answer": "y"},
	  {"id": 4, "question": "Poli gigi?", "answer": "Senin-Jumat", "keywords": ["gigi", "Gigi", " "]}
	]`, time.Now())

	store := NewFileStore(path)
	require.NoError(t, store.Err())

	snap := store.Snapshot()
	assert.Equal(t, []core.ID{1, 4}, snap.IDs())
	entry, _ := snap.Entry(4)
	assert.Equal(t, []string{"gigi"}, entry.Keywords)
}

func TestFileStore_DetectsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	writeCorpus(t, path, sampleCorpus, time.Now().Add(-time.Hour))

	store := NewFileStore(path)
	v1 := store.Version()

	updated := `[{"id": 3, "question": "Ada IGD?", "answer": "IGD buka 24 jam.", "keywords": ["igd"]}]`
	writeCorpus(t, path, updated, time.Now())

	v2 := store.Version()
	assert.NotEqual(t, v1, v2)
	assert.Equal(t, []core.ID{3}, store.Snapshot().IDs())

	// Removing the file degrades to an empty corpus
	require.NoError(t, os.Remove(path))
	assert.Equal(t, "", store.Version())
	assert.ErrorIs(t, store.Err(), ErrCorpusUnavailable)

	// And recovers once it comes back
	writeCorpus(t, path, sampleCorpus, time.Now().Add(time.Minute))
	assert.Equal(t, v1, store.Version())
}

func TestMemoryStore(t *testing.T) {
	e1 := &core.FAQEntry{Id: 1, Question: "Jam buka?", Answer: "08:00-20:00", Keywords: []string{"jam"}}
	e2 := &core.FAQEntry{Id: 2, Question: "BPJS?", Answer: "Ya.", Keywords: []string{"bpjs"}}

	store := NewMemoryStore(e1)
	v1 := store.Version()
	assert.NotEmpty(t, v1)

	// Same content, same version
	store.Replace(e1.Clone())
	assert.Equal(t, v1, store.Version())

	store.Replace(e1, e2)
	assert.NotEqual(t, v1, store.Version())
	assert.Len(t, store.Entries(), 2)

	// Stored entries are copies
	e1.Answer = "changed"
	got, ok := store.Snapshot().Entry(1)
	require.True(t, ok)
	assert.Equal(t, "08:00-20:00", got.Answer)

	store.Replace()
	assert.Equal(t, "", store.Version())
	assert.Empty(t, store.Entries())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	writeCorpus(t, path, sampleCorpus, time.Now().Add(-time.Hour))
	store := NewFileStore(path)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reloaded := make(chan error, 8)
	w, err := NewWatcher(store,
		WithDebounce(20*time.Millisecond),
		WithWatcherLogger(logger),
		WithReloadHook(func(err error) { reloaded <- err }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 9, "question": "Parkir?", "answer": "Gratis."}]`), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload the corpus")
	}

	store.mu.RLock()
	ids := store.snapshot.IDs()
	store.mu.RUnlock()
	assert.Equal(t, []core.ID{9}, ids)

	require.NoError(t, w.Close())
	assert.Contains(t, logs.String(), "component=corpus-watcher")
}
