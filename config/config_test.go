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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/faqbot/compose"
	"github.com/poiesic/faqbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faqbot.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cc := cfg.ComposeConfig()
	want := compose.DefaultConfig()
	assert.Equal(t, want, cc)
	assert.Equal(t, core.ID(2), cc.IntentRoutes["faq_bpjs"])
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[corpus]
path = "/srv/faqs.json"
watch = true
debounce = "1s"

[index]
in_memory = true
batch_size = 8

[ai]
host = "http://gpu-box:8000"
generation = false

[compose]
top_k = 5
oracle_timeout = "2500ms"
stop = ["\n\n"]

[compose.intent_routes]
faq_parking = 9
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/faqs.json", cfg.Corpus.Path)
	assert.True(t, cfg.Corpus.Watch)
	assert.Equal(t, Duration(time.Second), cfg.Corpus.Debounce)
	assert.True(t, cfg.Index.InMemory)
	assert.Equal(t, 8, cfg.Index.BatchSize)
	assert.Equal(t, Default().Index.Workers, cfg.Index.Workers)
	assert.False(t, cfg.AI.Generation)
	assert.True(t, cfg.AI.Embeddings)

	cc := cfg.ComposeConfig()
	assert.Equal(t, 5, cc.TopK)
	assert.Equal(t, 2500*time.Millisecond, cc.OracleTimeout)
	assert.Equal(t, []string{"\n\n"}, cc.Generate.StopSequences)
	assert.Equal(t, map[string]core.ID{"faq_parking": 9}, cc.IntentRoutes)
	assert.InDelta(t, 0.8, cc.HighThreshold, 1e-6)
}

func TestAIConfig_HostPrecedence(t *testing.T) {
	cfg := Default()
	cfg.AI.Host = "http://shared:11434"
	cfg.AI.EmbeddingHost = ""
	cfg.AI.GeneratorHost = "http://gen:9000"

	aic := cfg.AIConfig()
	require.NoError(t, aic.Validate())
	assert.Equal(t, "http://shared:11434/v1", aic.EmbeddingHost)
	assert.Equal(t, "http://gen:9000/v1", aic.GeneratorHost)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[corpus]\npaht = \"x\"\n"},
		{"bad duration", "[compose]\noracle_timeout = \"soon\"\n"},
		{"bad thresholds", "[compose]\nmedium_threshold = 0.9\nhigh_threshold = 0.5\n"},
		{"empty corpus path", "[corpus]\npath = \"\"\n"},
		{"no index path", "[index]\npath = \"\"\n"},
		{"zero shards", "[session]\nshards = 0\n"},
		{"malformed", "[corpus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestIndexOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.IndexOptions(), 5)
	cfg.AI.Embeddings = false
	assert.Len(t, cfg.IndexOptions(), 4)
}
