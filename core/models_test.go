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

import "testing"

func TestVersionFromContent(t *testing.T) {
	v1 := VersionFromContent([]byte(`[{"id":1}]`))
	v2 := VersionFromContent([]byte(`[{"id":1}]`))
	v3 := VersionFromContent([]byte(`[{"id":2}]`))

	if v1 != v2 {
		t.Errorf("VersionFromContent() produced different versions for same content: %s vs %s", v1, v2)
	}
	if v1 == v3 {
		t.Errorf("VersionFromContent() produced same version for different content")
	}
	if len(v1) != 64 {
		t.Errorf("VersionFromContent() length = %d, want 64", len(v1))
	}
}

func TestFAQEntry_IndexText(t *testing.T) {
	tests := []struct {
		name  string
		entry FAQEntry
		want  string
	}{
		{
			name:  "question and keywords",
			entry: FAQEntry{Question: "Jam buka?", Keywords: []string{"jam", "buka"}},
			want:  "Jam buka? jam buka",
		},
		{
			name:  "no keywords",
			entry: FAQEntry{Question: "Jam buka?"},
			want:  "Jam buka?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.IndexText(); got != tt.want {
				t.Errorf("FAQEntry.IndexText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFAQEntry_Topic(t *testing.T) {
	var nilEntry *FAQEntry
	if got := nilEntry.Topic(); got != DefaultTopic {
		t.Errorf("nil entry Topic() = %q, want %q", got, DefaultTopic)
	}

	entry := &FAQEntry{Keywords: []string{"bpjs", "asuransi"}}
	if got := entry.Topic(); got != "bpjs" {
		t.Errorf("Topic() = %q, want %q", got, "bpjs")
	}

	if got := (&FAQEntry{}).Topic(); got != DefaultTopic {
		t.Errorf("Topic() without keywords = %q, want %q", got, DefaultTopic)
	}
}

func TestFAQEntry_Clone(t *testing.T) {
	entry := &FAQEntry{Id: 1, Question: "q", Answer: "a", Keywords: []string{"x"}}
	c := entry.Clone()
	c.Keywords[0] = "y"
	if entry.Keywords[0] != "x" {
		t.Errorf("Clone() shares keyword storage with the original")
	}
}

func TestStrategy_String(t *testing.T) {
	cases := map[Strategy]string{
		StrategyNone:   "none",
		StrategyHigh:   "high",
		StrategyMedium: "medium",
		StrategyLow:    "low",
		StrategyMulti:  "multi",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("Strategy(%d).String() = %q, want %q", s, got, want)
		}
	}
	if SearchMethodVector.String() != "vector" || SearchMethodKeyword.String() != "keyword" {
		t.Errorf("unexpected SearchMethod strings")
	}
}
