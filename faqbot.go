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

// Package faqbot wires the FAQ corpus, embedding index, retriever, context
// store and response composer behind a single handle.
package faqbot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/ai/openai"
	"github.com/poiesic/faqbot/compose"
	"github.com/poiesic/faqbot/config"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/retrieval"
	"github.com/poiesic/faqbot/session"
	"github.com/poiesic/faqbot/storage"
	"github.com/poiesic/faqbot/storage/badger"
)

// Bot is the FAQ core. It is safe for concurrent use.
type Bot struct {
	config    *config.Config
	backend   *badger.Backend
	artifacts storage.ArtifactRepository
	store     corpus.Store
	watcher   *corpus.Watcher
	provider  ai.AIProvider
	index     *index.Index
	retriever *retrieval.Retriever
	sessions  *session.Store
	composer  *compose.Composer
	logger    *slog.Logger
}

// Status describes the corpus and index a Bot is serving.
type Status struct {
	CorpusVersion string
	IndexVersion  string
	Entries       int
	Indexed       int
	Dimension     int
	Embeddings    bool
	Generation    bool
}

// Option configures a Bot.
type Option func(*botOptions)

type botOptions struct {
	store    corpus.Store
	provider ai.AIProvider
	progress io.Writer
	monitor  retrieval.Monitor
	onReload func(err error)
	logger   *slog.Logger
}

// WithCorpusStore serves store instead of the file named in the configuration.
func WithCorpusStore(store corpus.Store) Option {
	return func(o *botOptions) {
		o.store = store
	}
}

// WithProvider uses provider instead of an OpenAI-compatible client.
// The embeddings and generation switches in the configuration still apply.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *botOptions) {
		o.provider = provider
	}
}

// WithProgress reports index build progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *botOptions) {
		o.progress = w
	}
}

// WithMonitor observes every retrieval.
func WithMonitor(monitor retrieval.Monitor) Option {
	return func(o *botOptions) {
		o.monitor = monitor
	}
}

// WithReloadHook is called after every corpus reload triggered by the
// file watcher.
func WithReloadHook(fn func(err error)) Option {
	return func(o *botOptions) {
		o.onReload = fn
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *botOptions) {
		o.logger = logger
	}
}

// New opens a Bot. A nil cfg means config.Default().
// The index is brought up to date with the corpus before New returns; a
// failure to do so is logged and leaves retrieval on the keyword fallback.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Bot, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := &botOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	b := &Bot{
		config: cfg,
		logger: options.logger.With("component", "faqbot"),
	}
	if err := b.open(ctx, options); err != nil {
		if closeErr := b.Close(); closeErr != nil {
			b.logger.Error("error releasing partially opened bot", "err", closeErr)
		}
		return nil, err
	}
	return b, nil
}

func (b *Bot) open(ctx context.Context, options *botOptions) error {
	cfg := b.config
	logger := options.logger

	backend, err := badger.OpenBackend(cfg.Index.Path, cfg.Index.InMemory)
	if err != nil {
		return err
	}
	b.backend = backend
	b.artifacts = badger.NewArtifactRepository(backend)

	if options.store != nil {
		b.store = options.store
	} else {
		fs := corpus.NewFileStore(cfg.Corpus.Path, corpus.WithLogger(logger))
		b.store = fs
		if cfg.Corpus.Watch {
			w, err := corpus.NewWatcher(fs,
				corpus.WithDebounce(time.Duration(cfg.Corpus.Debounce)),
				corpus.WithWatcherLogger(logger),
				corpus.WithReloadHook(options.onReload),
			)
			if err != nil {
				return err
			}
			b.watcher = w
			// The watcher runs until Close, independent of the ctx given to New.
			if err := w.Start(context.Background()); err != nil {
				return err
			}
		}
	}

	b.provider = options.provider
	if b.provider == nil && (cfg.AI.Embeddings || cfg.AI.Generation) {
		provider, err := openai.NewProvider(cfg.AIConfig())
		if err != nil {
			return err
		}
		b.provider = provider
	}

	var embedder ai.Embedder
	var generator ai.Generator
	if b.provider != nil {
		if cfg.AI.Embeddings {
			embedder = b.provider.Embedder()
		}
		if cfg.AI.Generation {
			generator = b.provider.Generator()
		}
	}

	indexOpts := append(cfg.IndexOptions(), index.WithLogger(logger))
	if options.progress != nil {
		indexOpts = append(indexOpts, index.WithProgress(options.progress))
	}
	idx, err := index.Open(ctx, b.artifacts, b.store, embedder, indexOpts...)
	if err != nil {
		return err
	}
	b.index = idx

	retrieverOpts := []retrieval.Option{retrieval.WithLogger(logger)}
	if options.monitor != nil {
		retrieverOpts = append(retrieverOpts, retrieval.WithMonitor(options.monitor))
	}
	b.retriever, err = retrieval.NewRetriever(idx, b.store, retrieverOpts...)
	if err != nil {
		return err
	}

	b.sessions = session.NewStore(session.WithShards(cfg.Session.Shards), session.WithLogger(logger))

	composeOpts := []compose.Option{
		compose.WithConfig(cfg.ComposeConfig()),
		compose.WithLogger(logger),
	}
	if generator != nil {
		composeOpts = append(composeOpts, compose.WithGenerator(generator))
	}
	b.composer, err = compose.NewComposer(b.retriever, b.sessions, composeOpts...)
	return err
}

// Retrieve returns up to topK entries relevant to query, best first.
func (b *Bot) Retrieve(ctx context.Context, query string, topK int) ([]*core.SearchResult, error) {
	return b.retriever.Search(ctx, query, topK)
}

// ComposeResponse answers message for userID and records the turn in the
// user's context.
func (b *Bot) ComposeResponse(ctx context.Context, userID, message string, intent core.Intent) *compose.Response {
	return b.composer.Compose(ctx, userID, message, intent)
}

// ClearContext forgets everything recorded for userID.
func (b *Bot) ClearContext(userID string) {
	b.sessions.Clear(userID)
}

// Context returns a copy of the context recorded for userID.
func (b *Bot) Context(userID string) core.UserContext {
	return b.sessions.Get(userID)
}

// Reindex rebuilds the index from the current corpus even when the stored
// artifact is fresh.
func (b *Bot) Reindex(ctx context.Context) error {
	if !b.index.HasEmbedder() {
		return index.ErrEmbedderRequired
	}
	snap := b.store.Snapshot()
	return b.index.Build(ctx, snap.Entries, snap.Version)
}

// Status reports what the bot is serving.
func (b *Bot) Status() Status {
	snap := b.store.Snapshot()
	return Status{
		CorpusVersion: snap.Version,
		IndexVersion:  b.index.Version(),
		Entries:       snap.Len(),
		Indexed:       b.index.Len(),
		Dimension:     b.index.Dimension(),
		Embeddings:    b.index.HasEmbedder(),
		Generation:    b.provider != nil && b.config.AI.Generation,
	}
}

// Close releases everything the bot opened, in reverse order.
func (b *Bot) Close() error {
	var errs []error
	if b.watcher != nil {
		if err := b.watcher.Close(); err != nil {
			b.logger.Error("error closing corpus watcher", "err", err)
			errs = append(errs, err)
		}
	}
	if b.composer != nil {
		if err := b.composer.Close(); err != nil {
			b.logger.Error("error closing composer", "err", err)
			errs = append(errs, err)
		}
	}
	if b.provider != nil {
		if err := b.provider.Close(); err != nil {
			b.logger.Error("error closing AI provider", "err", err)
		}
	}
	if b.artifacts != nil {
		if err := b.artifacts.Close(); err != nil {
			b.logger.Error("error closing artifact repository", "err", err)
			errs = append(errs, err)
		}
	}
	if b.backend != nil {
		if err := b.backend.Close(); err != nil {
			b.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
