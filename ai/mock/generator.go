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

package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/poiesic/faqbot/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, echoes the last non-empty line of the prompt.
	GenerateFunc func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error)

	callCount atomic.Int64

	mu         sync.Mutex
	lastPrompt string
	lastOpts   ai.GenerateOptions
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the call and delegates to GenerateFunc when set.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.lastPrompt = prompt
	m.lastOpts = opts
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, opts)
	}

	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line, nil
		}
	}
	return "", nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// LastPrompt returns the prompt of the most recent call.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// LastOptions returns the options of the most recent call.
func (m *MockGenerator) LastOptions() ai.GenerateOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOpts
}

// Reset clears the call count, recorded call and custom function.
func (m *MockGenerator) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.lastPrompt = ""
	m.lastOpts = ai.GenerateOptions{}
	m.mu.Unlock()
	m.GenerateFunc = nil
}
