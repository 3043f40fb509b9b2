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

package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/storage"
)

const (
	DefaultBatchSize     = 32
	DefaultWorkers       = 4
	DefaultMaxAttempts   = 3
	DefaultBaseDelay     = 200 * time.Millisecond
	DefaultRetryInterval = 30 * time.Second
)

// Neighbor is one nearest-neighbor hit.
type Neighbor struct {
	Id       core.ID
	Distance float32 // Squared Euclidean distance
	Score    float32 // 1/(1+Distance)
}

// snapshot is an immutable set of vectors for one corpus version.
type snapshot struct {
	version  string
	ids      []core.ID
	vectors  [][]float32
	dim      int
	failed   bool
	failedAt time.Time
}

var emptySnapshot = &snapshot{}

// Index is an in-memory embedding index backed by a persisted artifact.
type Index struct {
	embedder ai.Embedder
	repo     storage.ArtifactRepository
	logger   *slog.Logger

	model         string
	batchSize     int
	workers       int
	maxAttempts   int
	baseDelay     time.Duration
	retryInterval time.Duration
	progress      io.Writer
	now           func() time.Time

	mu      sync.RWMutex
	current *snapshot

	buildMu sync.Mutex
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger.With("component", "index")
		return nil
	}
}

// WithModel records the embedding model name in persisted artifacts.
// An artifact built with a different model is not reused.
func WithModel(model string) Option {
	return func(idx *Index) error {
		idx.model = model
		return nil
	}
}

// WithBatchSize sets how many entries are embedded per request.
func WithBatchSize(n int) Option {
	return func(idx *Index) error {
		if n <= 0 {
			return ErrInvalidBatchSize
		}
		idx.batchSize = n
		return nil
	}
}

// WithWorkers sets how many batches are embedded concurrently.
func WithWorkers(n int) Option {
	return func(idx *Index) error {
		if n <= 0 {
			return fmt.Errorf("workers must be greater than 0: %d", n)
		}
		idx.workers = n
		return nil
	}
}

// WithRetry sets the retry policy for each embedding batch.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(idx *Index) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		idx.maxAttempts = maxAttempts
		idx.baseDelay = baseDelay
		return nil
	}
}

// WithRetryInterval sets how long a failed build is kept before the next
// freshness check tries again.
func WithRetryInterval(d time.Duration) Option {
	return func(idx *Index) error {
		idx.retryInterval = d
		return nil
	}
}

// WithProgress writes build progress to w.
func WithProgress(w io.Writer) Option {
	return func(idx *Index) error {
		idx.progress = w
		return nil
	}
}

// New creates an empty index. A nil embedder disables the vector path; a nil
// repository disables persistence.
func New(embedder ai.Embedder, repo storage.ArtifactRepository, opts ...Option) (*Index, error) {
	idx := &Index{
		embedder:      embedder,
		repo:          repo,
		logger:        slog.Default().With("component", "index"),
		batchSize:     DefaultBatchSize,
		workers:       DefaultWorkers,
		maxAttempts:   DefaultMaxAttempts,
		baseDelay:     DefaultBaseDelay,
		retryInterval: DefaultRetryInterval,
		now:           time.Now,
		current:       emptySnapshot,
	}
	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Open creates an index and brings it up to date with store, reusing the
// persisted artifact when it matches the corpus. A failure to build is logged
// and leaves the index empty.
func Open(ctx context.Context, repo storage.ArtifactRepository, store corpus.Store, embedder ai.Embedder, opts ...Option) (*Index, error) {
	idx, err := New(embedder, repo, opts...)
	if err != nil {
		return nil, err
	}
	if err := idx.EnsureFresh(ctx, store); err != nil {
		idx.logger.Warn("index unavailable, retrieval will use keywords only", "err", err)
	}
	return idx, nil
}

// HasEmbedder reports whether the vector path is available at all.
func (idx *Index) HasEmbedder() bool {
	return idx.embedder != nil
}

// EmbedQuery embeds a query with the index's embedder.
func (idx *Index) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if idx.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	return idx.embedder.EmbedText(ctx, text)
}

// Version returns the corpus version of the current snapshot.
func (idx *Index) Version() string {
	return idx.snapshot().version
}

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	return len(idx.snapshot().ids)
}

// Dimension returns the vector dimension, or 0 when the index is empty.
func (idx *Index) Dimension() int {
	return idx.snapshot().dim
}

func (idx *Index) snapshot() *snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.current
}

func (idx *Index) swap(s *snapshot) {
	idx.mu.Lock()
	idx.current = s
	idx.mu.Unlock()
}

// isFresh reports whether s can serve corpus version v.
func (idx *Index) isFresh(s *snapshot, version string) bool {
	if s.version != version {
		return false
	}
	if s.failed && idx.embedder != nil && idx.now().Sub(s.failedAt) >= idx.retryInterval {
		return false
	}
	return true
}

// EnsureFresh rebuilds the index if it was computed from a corpus version
// other than the store's current one. On failure the index is emptied, so
// entries removed from the corpus are never returned.
func (idx *Index) EnsureFresh(ctx context.Context, store corpus.Store) error {
	snap := store.Snapshot()
	if idx.isFresh(idx.snapshot(), snap.Version) {
		return nil
	}

	idx.buildMu.Lock()
	defer idx.buildMu.Unlock()

	// Another caller may have rebuilt while we waited.
	if idx.isFresh(idx.snapshot(), snap.Version) {
		return nil
	}

	if idx.embedder == nil {
		idx.swap(&snapshot{version: snap.Version})
		return nil
	}

	if s := idx.loadArtifact(ctx, snap); s != nil {
		idx.swap(s)
		idx.logger.Info("index loaded from artifact", "version", snap.Version, "entries", len(s.ids))
		return nil
	}

	s, err := idx.build(ctx, snap.Entries, snap.Version)
	if err != nil {
		idx.swap(&snapshot{version: snap.Version, failed: true, failedAt: idx.now()})
		return err
	}
	idx.swap(s)
	return nil
}

// Build embeds entries and replaces the index with the result, persisting it
// when a repository is configured. The previous snapshot stays visible until
// the new one is complete; on failure it is kept.
func (idx *Index) Build(ctx context.Context, entries []*core.FAQEntry, version string) error {
	if idx.embedder == nil {
		return ErrEmbedderRequired
	}

	idx.buildMu.Lock()
	defer idx.buildMu.Unlock()

	s, err := idx.build(ctx, entries, version)
	if err != nil {
		return err
	}
	idx.swap(s)
	return nil
}

// build must be called with buildMu held.
func (idx *Index) build(ctx context.Context, entries []*core.FAQEntry, version string) (*snapshot, error) {
	start := time.Now()
	vectors, err := idx.embedAll(ctx, entries)
	if err != nil {
		idx.logger.Error("index build failed", "version", version, "entries", len(entries), "err", err)
		return nil, err
	}

	s := &snapshot{
		version: version,
		ids:     make([]core.ID, len(entries)),
		vectors: vectors,
	}
	for i, e := range entries {
		s.ids[i] = e.Id
	}
	if len(vectors) > 0 {
		s.dim = len(vectors[0])
	}

	if idx.repo != nil {
		artifact := &storage.Artifact{
			CorpusVersion: version,
			Model:         idx.model,
			Dimension:     s.dim,
			EntryIds:      s.ids,
			Vectors:       s.vectors,
			BuiltAt:       idx.now().UTC(),
		}
		if err := idx.repo.SaveArtifact(ctx, artifact); err != nil {
			idx.logger.Warn("failed to persist index artifact", "version", version, "err", err)
		}
	}

	idx.logger.Info("index built", "version", version, "entries", len(entries), "dimension", s.dim, "elapsed", time.Since(start))
	return s, nil
}

// embedAll embeds entries in batches on a worker pool. The returned vectors
// are in entry order.
func (idx *Index) embedAll(ctx context.Context, entries []*core.FAQEntry) ([][]float32, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	pool, err := ants.NewPool(idx.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := NewProgressTracker(idx.progress, len(entries), idx.batchSize)
	vectors := make([][]float32, len(entries))

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		errMu.Unlock()
	}

	for start := 0; start < len(entries); start += idx.batchSize {
		end := min(start+idx.batchSize, len(entries))
		texts := make([]string, 0, end-start)
		for _, e := range entries[start:end] {
			texts = append(texts, e.IndexText())
		}

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			var batch [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var err error
				batch, err = idx.embedder.EmbedTexts(ctx, texts)
				if err != nil {
					return err
				}
				if len(batch) != len(texts) {
					return fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCount, len(batch), len(texts))
				}
				return nil
			}, idx.maxAttempts, idx.baseDelay)
			if err != nil {
				fail(err)
				return
			}
			copy(vectors[start:end], batch)
			progress.Increment(len(batch))
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	progress.Finish()

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector for entry %d", ErrDimensionMismatch, entries[0].Id)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: entry %d has %d, want %d", ErrDimensionMismatch, entries[i].Id, len(v), dim)
		}
	}
	return vectors, nil
}

// loadArtifact returns the persisted vectors if they were computed from
// exactly the entries of snap with the configured model.
func (idx *Index) loadArtifact(ctx context.Context, snap *corpus.Snapshot) *snapshot {
	if idx.repo == nil {
		return nil
	}
	artifact, err := idx.repo.LoadArtifact(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			idx.logger.Warn("ignoring unreadable index artifact", "err", err)
		}
		return nil
	}
	if artifact.CorpusVersion != snap.Version || artifact.Model != idx.model {
		idx.logger.Debug("index artifact is stale", "artifactVersion", artifact.CorpusVersion, "corpusVersion", snap.Version)
		return nil
	}
	if !slices.Equal(artifact.EntryIds, snap.IDs()) {
		idx.logger.Warn("index artifact ids disagree with corpus", "version", snap.Version)
		return nil
	}
	return &snapshot{
		version: artifact.CorpusVersion,
		ids:     artifact.EntryIds,
		vectors: artifact.Vectors,
		dim:     artifact.Dimension,
	}
}

// NearestNeighbors returns up to k entries closest to query by squared
// Euclidean distance, nearest first. Ties keep corpus order. An empty index
// or a query of the wrong dimension yields no results.
func (idx *Index) NearestNeighbors(query []float32, k int) []Neighbor {
	s := idx.snapshot()
	if k <= 0 || len(s.ids) == 0 || len(query) != s.dim {
		return []Neighbor{}
	}

	neighbors := make([]Neighbor, len(s.ids))
	for i, v := range s.vectors {
		d := l2Distance(query, v)
		neighbors[i] = Neighbor{Id: s.ids[i], Distance: d, Score: 1 / (1 + d)}
	}
	slices.SortStableFunc(neighbors, func(a, b Neighbor) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

// l2Distance returns the squared Euclidean distance between a and b.
func l2Distance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
