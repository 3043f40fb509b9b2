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

// Package question detects utterances that ask several things at once and
// splits them into single questions.
package question

import (
	"iter"
	"slices"
	"strings"
	"unicode"
)

var conjunctions = map[string]bool{
	"dan":   true,
	"serta": true,
	"juga":  true,
	"and":   true,
}

var questionWords = map[string]bool{
	"apa": true, "apakah": true, "berapa": true, "kapan": true,
	"dimana": true, "bagaimana": true, "siapa": true, "mengapa": true,
	"kenapa": true, "bisa": true, "bisakah": true,
	"what": true, "when": true, "where": true, "how": true, "who": true,
	"why": true, "is": true, "are": true, "can": true, "do": true, "does": true,
}

// Two-word question words.
var questionPhrases = [][2]string{{"di", "mana"}}

// IsMultiQuestion reports whether text holds more than one question: either
// two or more clauses ending in '?', or one question whose conjunction joins
// fragments that each carry a question word.
func IsMultiQuestion(text string) bool {
	if terminatedClauses(text) >= 2 {
		return true
	}
	return len(conjunctionFragments(text)) >= 2
}

// Split yields the single questions of text, each trimmed and ending in '?'.
// Text is split on '?'; a single question joined by a conjunction is split on
// the conjunction instead. Empty text yields nothing. The sequence can be
// ranged over more than once.
func Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if terminatedClauses(text) < 2 {
			if fragments := conjunctionFragments(text); len(fragments) >= 2 {
				for _, f := range fragments {
					if !yield(f + "?") {
						return
					}
				}
				return
			}
		}
		for part := range strings.SplitSeq(text, "?") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !yield(part + "?") {
				return
			}
		}
	}
}

// SplitAll collects Split into a slice.
func SplitAll(text string) []string {
	return slices.Collect(Split(text))
}

// terminatedClauses counts non-empty clauses followed by '?'.
func terminatedClauses(text string) int {
	parts := strings.Split(text, "?")
	n := 0
	for _, p := range parts[:len(parts)-1] {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}

// conjunctionFragments splits a single question at its conjunctions when
// every resulting fragment carries a question word. It returns nil otherwise.
func conjunctionFragments(text string) []string {
	words := strings.Fields(strings.ReplaceAll(text, "?", " "))
	var fragments [][]string
	var current []string
	for _, w := range words {
		if conjunctions[normalize(w)] {
			fragments = append(fragments, current)
			current = nil
			continue
		}
		current = append(current, w)
	}
	fragments = append(fragments, current)
	if len(fragments) < 2 {
		return nil
	}

	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if len(f) == 0 || !hasQuestionWord(f) {
			return nil
		}
		out = append(out, strings.TrimRightFunc(strings.Join(f, " "), unicode.IsPunct))
	}
	return out
}

func hasQuestionWord(words []string) bool {
	for i, w := range words {
		n := normalize(w)
		if questionWords[n] {
			return true
		}
		if i+1 < len(words) {
			next := normalize(words[i+1])
			for _, p := range questionPhrases {
				if n == p[0] && next == p[1] {
					return true
				}
			}
		}
	}
	return false
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimFunc(word, unicode.IsPunct))
}
