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

package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/faqbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jamBuka = &core.FAQEntry{Id: 1, Question: "Jam buka?", Answer: "08:00-20:00", Keywords: []string{"jam", "buka"}}

func TestGet_UnknownUser(t *testing.T) {
	s := NewStore()
	ctx := s.Get("nobody")
	assert.Equal(t, core.UserContext{}, ctx)
	assert.Equal(t, 0, s.Len())
}

func TestUpdate(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return at }))

	s.Update("u1", "jam buka?", "08:00-20:00", jamBuka)
	ctx := s.Get("u1")
	assert.Equal(t, "jam", ctx.LastTopic)
	assert.Equal(t, core.ID(1), ctx.LastEntryId)
	assert.True(t, ctx.HasLastEntry)
	assert.Equal(t, "jam buka?", ctx.LastUserMessage)
	assert.Equal(t, 1, ctx.TurnCount)
	require.Len(t, ctx.History, 1)
	assert.Equal(t, core.Turn{UserText: "jam buka?", BotText: "08:00-20:00", EntryId: 1, At: at}, ctx.History[0])

	s.Update("u1", "halo", "Maaf", nil)
	ctx = s.Get("u1")
	assert.Equal(t, core.DefaultTopic, ctx.LastTopic)
	assert.False(t, ctx.HasLastEntry)
	assert.Equal(t, core.ID(0), ctx.LastEntryId)
	assert.Equal(t, 2, ctx.TurnCount)

	noKeywords := &core.FAQEntry{Id: 7, Question: "q", Answer: "a"}
	s.Update("u1", "q", "a", noKeywords)
	assert.Equal(t, core.DefaultTopic, s.Get("u1").LastTopic)
}

func TestHistoryBound(t *testing.T) {
	s := NewStore()
	for i := range 12 {
		s.Update("u1", fmt.Sprintf("m%d", i), "r", jamBuka)
		assert.LessOrEqual(t, len(s.Get("u1").History), core.MaxHistory)
	}

	ctx := s.Get("u1")
	assert.Equal(t, 12, ctx.TurnCount)
	require.Len(t, ctx.History, core.MaxHistory)
	assert.Equal(t, "m7", ctx.History[0].UserText)
	assert.Equal(t, "m11", ctx.History[4].UserText)
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Update("u1", "a", "b", jamBuka)

	ctx := s.Get("u1")
	ctx.History[0].UserText = "changed"
	ctx.LastTopic = "changed"

	again := s.Get("u1")
	assert.Equal(t, "a", again.History[0].UserText)
	assert.Equal(t, "jam", again.LastTopic)
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Update("u1", "jam buka?", "08:00-20:00", jamBuka)
	s.Update("u2", "jam buka?", "08:00-20:00", jamBuka)

	s.Clear("u1")
	assert.Equal(t, core.UserContext{}, s.Get("u1"))
	assert.Equal(t, 1, s.Get("u2").TurnCount)

	s.Clear("u1")
	s.Clear("never-seen")
	assert.Equal(t, 1, s.Len())
}

func TestConcurrentUsers(t *testing.T) {
	s := NewStore(WithShards(4))
	var wg sync.WaitGroup
	for u := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", u)
			for i := range 8 {
				s.Update(id, fmt.Sprintf("m%d", i), "r", jamBuka)
				_ = s.Get(id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	for u := range 50 {
		ctx := s.Get(fmt.Sprintf("user-%d", u))
		assert.Equal(t, 8, ctx.TurnCount)
		assert.Len(t, ctx.History, core.MaxHistory)
	}
}
