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
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports embedding progress of a build to a writer.
// A nil tracker is valid and reports nothing.
type ProgressTracker struct {
	writer       io.Writer
	total        int
	current      int
	reportEvery  int
	lastReported int
	startTime    time.Time
	mu           sync.Mutex
}

// NewProgressTracker creates a tracker for total entries that reports every
// reportEvery entries. A nil writer yields a nil tracker.
func NewProgressTracker(writer io.Writer, total, reportEvery int) *ProgressTracker {
	if writer == nil {
		return nil
	}
	if reportEvery <= 0 {
		reportEvery = 1
	}
	return &ProgressTracker{
		writer:      writer,
		total:       total,
		reportEvery: reportEvery,
		startTime:   time.Now(),
	}
}

// Increment records delta more embedded entries. Safe for concurrent use.
func (p *ProgressTracker) Increment(delta int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = min(p.current+delta, p.total)
	if p.current-p.lastReported >= p.reportEvery {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final line.
func (p *ProgressTracker) Finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.writer)
}

// Current returns the number of entries recorded so far.
func (p *ProgressTracker) Current() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := float64(p.current) / max(time.Since(p.startTime).Seconds(), 1e-9)

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rEmbedding: %d/%d (%.1f%%) - %.1f entries/s",
		p.current, p.total, percentage, rate)
}
