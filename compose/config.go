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
	"fmt"
	"time"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
)

const (
	DefaultTopK                      = 3
	DefaultHighThreshold             = 0.8
	DefaultMediumThreshold           = 0.4
	DefaultIntentConfidenceThreshold = 0.7
	DefaultMinResponseLength         = 10
	DefaultOracleTimeout             = 10 * time.Second
	DefaultWorkers                   = 4
	DefaultAssistantName             = "RS Bhayangkara Brimob"
	DefaultMaxMultiSentences         = 3
)

// Config holds the decision parameters of a Composer.
type Config struct {
	// TopK is the number of candidates retrieved for a single question.
	TopK int

	// HighThreshold and MediumThreshold split the top score into tiers.
	HighThreshold   float32
	MediumThreshold float32

	// IntentRoutes maps intent labels to the entry they ask about.
	IntentRoutes map[string]core.ID

	// IntentConfidenceThreshold is the minimum classifier confidence for an
	// intent route to take effect.
	IntentConfidenceThreshold float32

	// MinResponseLength is the minimum trimmed length of accepted generated text.
	MinResponseLength int

	// OracleTimeout bounds a single generator call.
	OracleTimeout time.Duration

	// Workers bounds concurrent sub-question lookups.
	Workers int

	// AssistantName is how the generator is told to introduce itself.
	AssistantName string

	// MaxMultiSentences caps the combined answer of a compound question.
	MaxMultiSentences int

	// Generate holds the generation parameters for every generator call.
	Generate ai.GenerateOptions
}

// DefaultIntentRoutes returns the intent label routing of the stock corpus.
func DefaultIntentRoutes() map[string]core.ID {
	return map[string]core.ID{
		"faq_operating_hours":       1,
		"faq_bpjs":                  2,
		"faq_online_registration":   3,
		"faq_registration_location": 4,
		"faq_emergency":             5,
		"faq_dental":                6,
		"faq_pediatric":             7,
		"faq_fees":                  8,
	}
}

// DefaultConfig returns the default decision parameters.
func DefaultConfig() Config {
	return Config{
		TopK:                      DefaultTopK,
		HighThreshold:             DefaultHighThreshold,
		MediumThreshold:           DefaultMediumThreshold,
		IntentRoutes:              DefaultIntentRoutes(),
		IntentConfidenceThreshold: DefaultIntentConfidenceThreshold,
		MinResponseLength:         DefaultMinResponseLength,
		OracleTimeout:             DefaultOracleTimeout,
		Workers:                   DefaultWorkers,
		AssistantName:             DefaultAssistantName,
		MaxMultiSentences:         DefaultMaxMultiSentences,
		Generate:                  ai.DefaultGenerateOptions(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("%w: topK must be positive: %d", ErrInvalidConfig, c.TopK)
	}
	if c.MediumThreshold < 0 || c.HighThreshold > 1 || c.MediumThreshold > c.HighThreshold {
		return fmt.Errorf("%w: thresholds must satisfy 0 <= medium (%v) <= high (%v) <= 1",
			ErrInvalidConfig, c.MediumThreshold, c.HighThreshold)
	}
	if c.IntentConfidenceThreshold < 0 || c.IntentConfidenceThreshold > 1 {
		return fmt.Errorf("%w: intent confidence threshold out of range: %v", ErrInvalidConfig, c.IntentConfidenceThreshold)
	}
	if c.MinResponseLength < 0 {
		return fmt.Errorf("%w: minimum response length is negative", ErrInvalidConfig)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("%w: oracle timeout must be positive", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive: %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxMultiSentences <= 0 {
		return fmt.Errorf("%w: max multi sentences must be positive", ErrInvalidConfig)
	}
	if c.Generate.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalidConfig)
	}
	return nil
}
