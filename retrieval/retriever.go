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

package retrieval

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/index"
)

const (
	keywordBaseScore  = 0.3
	keywordMatchBonus = 0.1
)

// Retriever combines nearest-neighbor and keyword search over a corpus.
type Retriever struct {
	index   *index.Index
	store   corpus.Store
	monitor Monitor
	logger  *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retrieval")
		return nil
	}
}

// WithMonitor sets a monitor that observes every search.
func WithMonitor(monitor Monitor) Option {
	return func(r *Retriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewRetriever creates a retriever over store using idx for the vector path.
func NewRetriever(idx *index.Index, store corpus.Store, opts ...Option) (*Retriever, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if store == nil {
		return nil, ErrCorpusRequired
	}

	r := &Retriever{
		index:   idx,
		store:   store,
		monitor: &noopMonitor{},
		logger:  slog.Default().With("component", "retrieval"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Search returns up to topK entries relevant to query. Vector matches come
// first, then keyword matches not already present. The index is brought up to
// date with the corpus before searching; if that fails the search degrades to
// keywords only. The only error returned is the context's.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]*core.SearchResult, error) {
	if topK <= 0 {
		return []*core.SearchResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.monitor.Start(query)

	if err := r.index.EnsureFresh(ctx, r.store); err != nil {
		r.logger.Warn("index refresh failed, using keyword search", "err", err)
	}
	snap := r.store.Snapshot()

	results := r.vectorSearch(ctx, snap, query, topK)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(results) < topK {
		keyword := KeywordFallback(snap.Entries, query, topK)
		r.monitor.AfterKeywordFallback(keyword)
		results = merge(results, keyword, topK)
	}

	r.monitor.Finish(results)
	return results, nil
}

func (r *Retriever) vectorSearch(ctx context.Context, snap *corpus.Snapshot, query string, topK int) []*core.SearchResult {
	if !r.index.HasEmbedder() || r.index.Len() == 0 {
		r.monitor.AfterVectorSearch(nil)
		return nil
	}

	vector, err := r.index.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn("error generating embedding for query", "err", err)
		r.monitor.AfterVectorSearch(nil)
		return nil
	}

	neighbors := r.index.NearestNeighbors(vector, topK)
	r.monitor.AfterVectorSearch(neighbors)

	results := make([]*core.SearchResult, 0, len(neighbors))
	for _, n := range neighbors {
		entry, ok := snap.Entry(n.Id)
		if !ok {
			// Corpus moved on between the freshness check and the lookup.
			continue
		}
		results = append(results, &core.SearchResult{
			Entry:  entry,
			Score:  n.Score,
			Method: core.SearchMethodVector,
		})
	}
	return results
}

// KeywordFallback scores entries by how many of their keywords occur in the
// query, case-insensitively. Entries with no match are left out. Results are
// ordered by descending score, ties in corpus order, and truncated to topK.
func KeywordFallback(entries []*core.FAQEntry, query string, topK int) []*core.SearchResult {
	if topK <= 0 {
		return []*core.SearchResult{}
	}
	q := strings.ToLower(query)

	results := make([]*core.SearchResult, 0)
	for _, entry := range entries {
		count := 0
		for _, kw := range entry.Keywords {
			if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		results = append(results, &core.SearchResult{
			Entry:  entry,
			Score:  min(keywordBaseScore+keywordMatchBonus*float32(count), 1),
			Method: core.SearchMethodKeyword,
		})
	}

	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// merge appends keyword results whose entry is not yet present, up to topK.
func merge(vector, keyword []*core.SearchResult, topK int) []*core.SearchResult {
	out := make([]*core.SearchResult, 0, topK)
	seen := make(map[core.ID]bool, topK)
	for _, group := range [][]*core.SearchResult{vector, keyword} {
		for _, r := range group {
			if len(out) == topK {
				return out
			}
			if seen[r.Entry.Id] {
				continue
			}
			seen[r.Entry.Id] = true
			out = append(out, r)
		}
	}
	return out
}
