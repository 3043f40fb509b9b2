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
	"fmt"
	"strings"
)

// ValidateFAQEntry validates an FAQEntry according to domain rules.
//
// Validation rules:
//   - Id must not be zero
//   - Question must not be blank
//   - Answer must not be blank
//
// Keywords may be empty; such an entry is only reachable through the vector
// path.
func ValidateFAQEntry(entry *FAQEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidFAQEntry)
	}

	if entry.Id == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFAQEntry, ErrZeroID)
	}

	if strings.TrimSpace(entry.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFAQEntry, ErrEmptyQuestion)
	}

	if strings.TrimSpace(entry.Answer) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFAQEntry, ErrEmptyAnswer)
	}

	return nil
}

// NormalizeKeywords trims keywords and removes blanks and case-insensitive
// duplicates, keeping the first occurrence and the original order.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}
