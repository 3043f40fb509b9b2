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
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/question"
	"github.com/poiesic/faqbot/session"
)

// Searcher retrieves ranked candidates for a query.
// *retrieval.Retriever satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]*core.SearchResult, error)
}

// Response is the outcome of one composed turn.
type Response struct {
	TurnID     string
	Text       string
	Strategy   core.Strategy
	EntryId    core.ID // 0 when no entry matched
	Generated  bool    // Text came from the generator and passed validation
	Failure    Failure // Why the generator produced nothing, if it was called
	Candidates []*core.SearchResult
}

// Composer decides and assembles responses.
type Composer struct {
	searcher  Searcher
	generator ai.Generator
	sessions  *session.Store
	config    Config
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer) error

// WithGenerator sets the text generator. Without one every strategy falls
// back to canonical answers.
func WithGenerator(generator ai.Generator) Option {
	return func(c *Composer) error {
		c.generator = generator
		return nil
	}
}

// WithConfig replaces the default decision parameters.
func WithConfig(config Config) Option {
	return func(c *Composer) error {
		if err := config.Validate(); err != nil {
			return err
		}
		c.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "compose")
		return nil
	}
}

// NewComposer creates a composer. Call Close to release its worker pool.
func NewComposer(searcher Searcher, sessions *session.Store, opts ...Option) (*Composer, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if sessions == nil {
		return nil, ErrSessionStoreRequired
	}

	c := &Composer{
		searcher: searcher,
		sessions: sessions,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "compose"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(c.config.Workers)
	if err != nil {
		return nil, err
	}
	c.pool = pool
	return c, nil
}

// Close releases the worker pool.
func (c *Composer) Close() error {
	c.pool.Release()
	return nil
}

// Compose answers message for userID and records the turn in the user's
// context. It never fails; every failure resolves to a fixed message or a
// canonical answer. Turns of one user must not run concurrently.
func (c *Composer) Compose(ctx context.Context, userID, message string, intent core.Intent) *Response {
	start := time.Now()
	resp := &Response{TurnID: uuid.NewString()}
	topic := c.sessions.Get(userID).LastTopic

	var best *core.FAQEntry
	if question.IsMultiQuestion(message) {
		best = c.composeMulti(ctx, resp, message, topic)
	} else {
		best = c.composeSingle(ctx, resp, message, intent, topic)
	}

	c.sessions.Update(userID, message, resp.Text, best)

	c.logger.Info("turn composed",
		"turn", resp.TurnID,
		"user", userID,
		"strategy", resp.Strategy,
		"entry", resp.EntryId,
		"generated", resp.Generated,
		"failure", resp.Failure,
		"elapsed", time.Since(start))
	return resp
}

func (c *Composer) composeSingle(ctx context.Context, resp *Response, message string, intent core.Intent, topic string) *core.FAQEntry {
	results, err := c.searcher.Search(ctx, message, c.config.TopK)
	if err != nil {
		c.logger.Warn("search failed", "turn", resp.TurnID, "err", err)
		results = nil
	}
	if len(results) == 0 {
		resp.Text = NoMatchMessage
		return nil
	}

	results, score := c.applyIntent(results, intent)
	resp.Candidates = results
	best := results[0].Entry
	resp.EntryId = best.Id
	resp.Strategy = c.tier(score)

	var prompt string
	switch resp.Strategy {
	case core.StrategyHigh:
		prompt = paraphrasePrompt(c.config.AssistantName, topic, best, message)
	case core.StrategyMedium:
		prompt = rephrasePrompt(c.config.AssistantName, topic, best, message)
	default:
		resp.Text = disambiguationMessage(results)
		return best
	}

	c.finish(ctx, resp, prompt, entriesOf(results), best.Answer)
	return best
}

func (c *Composer) composeMulti(ctx context.Context, resp *Response, message, topic string) *core.FAQEntry {
	subs := question.SplitAll(message)
	found := c.lookupAll(ctx, subs)

	seen := make(map[core.ID]bool, len(found))
	var best *core.FAQEntry
	for _, r := range found {
		if r == nil {
			continue
		}
		best = r.Entry
		if seen[r.Entry.Id] {
			continue
		}
		seen[r.Entry.Id] = true
		resp.Candidates = append(resp.Candidates, r)
	}
	if len(resp.Candidates) == 0 {
		resp.Text = CannotFindMessage
		return nil
	}

	resp.Strategy = core.StrategyMulti
	resp.EntryId = best.Id

	// The fallback is the first sub-question's canonical answer.
	entries := entriesOf(resp.Candidates)
	prompt := combinePrompt(topic, entries, message, c.config.MaxMultiSentences)
	c.finish(ctx, resp, prompt, entries, entries[0].Answer)
	return best
}

// finish calls the generator and sets the response text to the generated
// text if it validates against entries, or to fallback otherwise.
func (c *Composer) finish(ctx context.Context, resp *Response, prompt string, entries []*core.FAQEntry, fallback string) {
	out := c.invoke(ctx, prompt)
	resp.Failure = out.Failure
	if !out.OK() {
		if out.Failure != FailureUnavailable {
			c.logger.Warn("generator failed, using canonical answer", "turn", resp.TurnID, "failure", out.Failure, "err", out.Err)
		}
		resp.Text = fallback
		return
	}
	if !ValidateGenerated(out.Text, entries, c.config.MinResponseLength) {
		c.logger.Debug("generated text rejected", "turn", resp.TurnID, "text", out.Text)
		resp.Text = fallback
		return
	}
	resp.Text = strings.TrimSpace(out.Text)
	resp.Generated = true
}

// lookupAll retrieves the top result of every sub-question concurrently.
// The result slice is aligned with subs; nil marks no match.
func (c *Composer) lookupAll(ctx context.Context, subs []string) []*core.SearchResult {
	out := make([]*core.SearchResult, len(subs))
	var wg sync.WaitGroup
	for i, q := range subs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out[i] = c.top1(ctx, q)
		}
		if err := c.pool.Submit(task); err != nil {
			c.logger.Debug("pool unavailable, looking up inline", "err", err)
			task()
		}
	}
	wg.Wait()
	return out
}

func (c *Composer) top1(ctx context.Context, q string) *core.SearchResult {
	results, err := c.searcher.Search(ctx, q, 1)
	if err != nil {
		c.logger.Warn("search failed", "query", q, "err", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// applyIntent moves the entry routed from a confident intent to the front and
// lifts its score to at least the medium threshold. It returns the ranked
// candidates and the score that selects the tier.
func (c *Composer) applyIntent(results []*core.SearchResult, intent core.Intent) ([]*core.SearchResult, float32) {
	score := results[0].Score
	if intent.Confidence < c.config.IntentConfidenceThreshold {
		return results, score
	}
	id, ok := c.config.IntentRoutes[intent.Label]
	if !ok {
		return results, score
	}
	i := slices.IndexFunc(results, func(r *core.SearchResult) bool { return r.Entry.Id == id })
	if i < 0 {
		return results, score
	}

	routed := results[i]
	ranked := make([]*core.SearchResult, 0, len(results))
	ranked = append(ranked, routed)
	ranked = append(ranked, results[:i]...)
	ranked = append(ranked, results[i+1:]...)
	return ranked, max(routed.Score, c.config.MediumThreshold)
}

func (c *Composer) tier(score float32) core.Strategy {
	switch {
	case score >= c.config.HighThreshold:
		return core.StrategyHigh
	case score >= c.config.MediumThreshold:
		return core.StrategyMedium
	default:
		return core.StrategyLow
	}
}

func entriesOf(results []*core.SearchResult) []*core.FAQEntry {
	entries := make([]*core.FAQEntry, len(results))
	for i, r := range results {
		entries[i] = r.Entry
	}
	return entries
}
