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

package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies an FAQ entry. IDs are assigned by the corpus source and are
// stable across corpus versions.
type ID uint64

// MaxHistory is the number of turns retained per user.
const MaxHistory = 5

// DefaultTopic is used as the last topic when a turn matched no entry or the
// matched entry has no keywords.
const DefaultTopic = "general"

// VersionFromContent derives a corpus version marker from raw corpus bytes
// using BLAKE2b-256. Identical content always yields the identical version.
func VersionFromContent(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FAQEntry is one question/answer record of the corpus.
// Entries are immutable once loaded for a given corpus version.
type FAQEntry struct {
	Id       ID
	Question string
	Answer   string
	Keywords []string // Ordered set, first keyword doubles as the entry topic
}

// IndexText returns the text embedded for the entry: the question followed by
// its keywords.
func (e *FAQEntry) IndexText() string {
	if len(e.Keywords) == 0 {
		return e.Question
	}
	return e.Question + " " + strings.Join(e.Keywords, " ")
}

// Topic returns the entry's first keyword, or DefaultTopic.
func (e *FAQEntry) Topic() string {
	if e == nil || len(e.Keywords) == 0 || e.Keywords[0] == "" {
		return DefaultTopic
	}
	return e.Keywords[0]
}

// Clone returns a deep copy of the entry.
func (e *FAQEntry) Clone() *FAQEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.Keywords = append([]string(nil), e.Keywords...)
	return &c
}

// SearchMethod records which retrieval path produced a result.
type SearchMethod int

const (
	// SearchMethodVector marks a nearest-neighbor match.
	SearchMethodVector SearchMethod = iota + 1
	// SearchMethodKeyword marks a keyword-containment match.
	SearchMethodKeyword
)

func (m SearchMethod) String() string {
	switch m {
	case SearchMethodVector:
		return "vector"
	case SearchMethodKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// SearchResult is a retrieved entry with its similarity score in [0,1].
// Results are produced per query and never persisted.
type SearchResult struct {
	Entry  *FAQEntry
	Score  float32
	Method SearchMethod
}

// Intent is the externally classified intent of an utterance.
type Intent struct {
	Label      string
	Confidence float32
}

// Turn is one completed exchange in a user's history.
type Turn struct {
	UserText string
	BotText  string
	EntryId  ID // 0 when the turn matched no entry
	At       time.Time
}

// UserContext is the rolling conversational state of a single user.
type UserContext struct {
	LastTopic       string
	LastEntryId     ID
	HasLastEntry    bool
	LastUserMessage string
	TurnCount       int
	History         []Turn // At most MaxHistory turns, oldest first
}

// Clone returns a deep copy of the context.
func (c *UserContext) Clone() UserContext {
	out := *c
	out.History = append([]Turn(nil), c.History...)
	return out
}

// Strategy is the response strategy chosen for a turn.
type Strategy int

const (
	StrategyNone Strategy = iota
	// StrategyHigh paraphrases the best answer.
	StrategyHigh
	// StrategyMedium rephrases the best answer without answering independently.
	StrategyMedium
	// StrategyLow asks the user to disambiguate between candidates.
	StrategyLow
	// StrategyMulti combines the answers of several sub-questions.
	StrategyMulti
)

func (s Strategy) String() string {
	switch s {
	case StrategyHigh:
		return "high"
	case StrategyMedium:
		return "medium"
	case StrategyLow:
		return "low"
	case StrategyMulti:
		return "multi"
	default:
		return "none"
	}
}
