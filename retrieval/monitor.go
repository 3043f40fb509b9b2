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
	"log/slog"

	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/index"
)

// Monitor receives callbacks at each stage of a search.
type Monitor interface {
	Start(query string)
	AfterVectorSearch(neighbors []index.Neighbor)
	AfterKeywordFallback(results []*core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterVectorSearch(_ []index.Neighbor)        {}
func (n *noopMonitor) AfterKeywordFallback(_ []*core.SearchResult) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)               {}

// LogMonitor writes every search stage to a logger at debug level.
type LogMonitor struct {
	logger *slog.Logger
}

var _ Monitor = (*LogMonitor)(nil)

// NewLogMonitor creates a monitor logging to logger.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger.With("component", "retrieval")}
}

func (m *LogMonitor) Start(query string) {
	m.logger.Debug("search started", "query", query)
}

func (m *LogMonitor) AfterVectorSearch(neighbors []index.Neighbor) {
	for _, n := range neighbors {
		m.logger.Debug("vector hit", "id", n.Id, "distance", n.Distance, "score", n.Score)
	}
}

func (m *LogMonitor) AfterKeywordFallback(results []*core.SearchResult) {
	for _, r := range results {
		m.logger.Debug("keyword hit", "id", r.Entry.Id, "score", r.Score)
	}
}

func (m *LogMonitor) Finish(results []*core.SearchResult) {
	m.logger.Debug("search finished", "results", len(results))
}
