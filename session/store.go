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

// Package session keeps the rolling conversational context of each user.
//
// Contexts live in memory only. The store is sharded by a hash of the user id
// so turns of different users do not contend on one lock. Turns of the same
// user must still be serialized by the caller: Update is a read-modify-write
// of that user's history and two concurrent turns would interleave.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/poiesic/faqbot/core"
)

// DefaultShards is the number of shards when none is configured.
const DefaultShards = 32

type shard struct {
	mu    sync.RWMutex
	users map[string]*core.UserContext
}

// Store maps user ids to their contexts.
type Store struct {
	shards []*shard
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithShards sets the shard count. Non-positive values keep the default.
func WithShards(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.shards = newShards(n)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.With("component", "session")
		}
	}
}

// WithClock sets the time source used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		shards: newShards(DefaultShards),
		now:    time.Now,
		logger: slog.Default().With("component", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{users: make(map[string]*core.UserContext)}
	}
	return shards
}

func (s *Store) shardFor(userID string) *shard {
	return s.shards[xxhash.Sum64String(userID)%uint64(len(s.shards))]
}

// Get returns a copy of the user's context, or the zero context for an
// unknown user.
func (s *Store) Get(userID string) core.UserContext {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	ctx, ok := sh.users[userID]
	if !ok {
		return core.UserContext{}
	}
	return ctx.Clone()
}

// Update records a completed turn. The topic becomes the first keyword of
// entry, or core.DefaultTopic when entry is nil or has no keywords. Only the
// core.MaxHistory most recent turns are kept.
func (s *Store) Update(userID, userMessage, botResponse string, entry *core.FAQEntry) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ctx, ok := sh.users[userID]
	if !ok {
		ctx = &core.UserContext{}
		sh.users[userID] = ctx
	}

	turn := core.Turn{
		UserText: userMessage,
		BotText:  botResponse,
		At:       s.now(),
	}
	ctx.LastTopic = entry.Topic()
	if entry != nil {
		turn.EntryId = entry.Id
		ctx.LastEntryId = entry.Id
		ctx.HasLastEntry = true
	} else {
		ctx.LastEntryId = 0
		ctx.HasLastEntry = false
	}
	ctx.LastUserMessage = userMessage
	ctx.TurnCount++

	ctx.History = append(ctx.History, turn)
	if over := len(ctx.History) - core.MaxHistory; over > 0 {
		// Copy so the dropped turns can be collected.
		ctx.History = append([]core.Turn(nil), ctx.History[over:]...)
	}

	s.logger.Debug("context updated", "user", userID, "topic", ctx.LastTopic, "turns", ctx.TurnCount)
}

// Clear forgets the user. Clearing an unknown user is a no-op.
func (s *Store) Clear(userID string) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	delete(sh.users, userID)
	sh.mu.Unlock()
}

// Len returns the number of users with a context.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.users)
		sh.mu.RUnlock()
	}
	return n
}
