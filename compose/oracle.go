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

package compose

import (
	"context"
	"errors"
	"strings"

	"github.com/poiesic/faqbot/core"
)

// Failure classifies why a generator call produced no usable text.
type Failure int

const (
	FailureNone Failure = iota
	// FailureTimeout means the call did not finish within the oracle timeout.
	FailureTimeout
	// FailureError means the generator returned an error.
	FailureError
	// FailureUnavailable means no generator is configured.
	FailureUnavailable
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureError:
		return "error"
	case FailureUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the result of one generator call.
type Outcome struct {
	Text    string
	Failure Failure
	Err     error
}

// OK reports whether the call produced text.
func (o Outcome) OK() bool {
	return o.Failure == FailureNone
}

type generation struct {
	text string
	err  error
}

// invoke calls the generator under the oracle timeout. A call that outlives
// the timeout keeps running in the background; its result is dropped.
func (c *Composer) invoke(ctx context.Context, prompt string) Outcome {
	if c.generator == nil {
		return Outcome{Failure: FailureUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.OracleTimeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		text, err := c.generator.Generate(ctx, prompt, c.config.Generate)
		done <- generation{text: text, err: err}
	}()

	select {
	case g := <-done:
		if g.err != nil {
			if errors.Is(g.err, context.DeadlineExceeded) {
				return Outcome{Failure: FailureTimeout, Err: g.err}
			}
			return Outcome{Failure: FailureError, Err: g.err}
		}
		return Outcome{Text: g.text}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome{Failure: FailureTimeout, Err: ctx.Err()}
		}
		return Outcome{Failure: FailureError, Err: ctx.Err()}
	}
}

// ValidateGenerated reports whether generated text may be shown: it must be
// at least minLength long after trimming and contain the canonical answer of
// one of entries verbatim.
func ValidateGenerated(text string, entries []*core.FAQEntry, minLength int) bool {
	text = strings.TrimSpace(text)
	if text == "" || len(text) < minLength {
		return false
	}
	for _, e := range entries {
		if e.Answer != "" && strings.Contains(text, e.Answer) {
			return true
		}
	}
	return false
}
