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
	"errors"
	"testing"
)

func TestValidateFAQEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *FAQEntry
		wantErr error
	}{
		{
			name: "valid entry",
			entry: &FAQEntry{
				Id:       1,
				Question: "Jam buka?",
				Answer:   "08:00-20:00",
				Keywords: []string{"jam", "buka"},
			},
			wantErr: nil,
		},
		{
			name: "valid entry without keywords",
			entry: &FAQEntry{
				Id:       2,
				Question: "Apakah menerima BPJS?",
				Answer:   "Ya, kami menerima BPJS.",
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidFAQEntry,
		},
		{
			name: "zero id",
			entry: &FAQEntry{
				Question: "Jam buka?",
				Answer:   "08:00-20:00",
			},
			wantErr: ErrZeroID,
		},
		{
			name: "blank question",
			entry: &FAQEntry{
				Id:       1,
				Question: "   ",
				Answer:   "08:00-20:00",
			},
			wantErr: ErrEmptyQuestion,
		},
		{
			name: "empty answer",
			entry: &FAQEntry{
				Id:       1,
				Question: "Jam buka?",
			},
			wantErr: ErrEmptyAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFAQEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFAQEntry() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFAQEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{" jam ", "Buka", "", "JAM", "buka", "weekend"})
	want := []string{"jam", "Buka", "weekend"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeKeywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeKeywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
