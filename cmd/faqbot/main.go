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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/poiesic/faqbot"
	"github.com/poiesic/faqbot/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "faqbot",
		Usage: "Hospital FAQ retrieval and response composition",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				EnvVars: []string{"FAQBOT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "corpus",
				Usage: "Path to the FAQ corpus JSON file",
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Path to the BadgerDB index directory",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Keep the index in memory only",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL for both services",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "generator-model",
				Usage: "Generation model name",
			},
			&cli.BoolFlag{
				Name:  "no-embeddings",
				Usage: "Disable the vector path and retrieve by keywords only",
			},
			&cli.BoolFlag{
				Name:  "no-generation",
				Usage: "Disable generated responses and answer with canonical text",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Build or verify the embedding index for the corpus",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even when the stored index is current",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Retrieve the entries most relevant to a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results",
						Value:   3,
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Compose a response to a single message",
				ArgsUsage: "<message>",
				Action:    askCommand,
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:  "intent",
						Usage: "Intent label assigned by an external classifier",
					},
					&cli.Float64Flag{
						Name:  "confidence",
						Usage: "Confidence of the intent label",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Show strategy, candidates and generator outcome",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Converse interactively; /clear resets the context, /quit exits",
				Action: chatCommand,
				Flags: []cli.Flag{
					userFlag(),
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Show strategy and generator outcome after every response",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Write a starter corpus file",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "src",
						Usage: "File of seed records, one 'question | answer | keyword, keyword' per line",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing corpus file",
					},
				},
			},
		},
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "User identifier the conversation context is kept under",
		Value:   "cli",
	}
}

// loadConfig reads the configuration file, if any, and applies the global
// flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("corpus") {
		cfg.Corpus.Path = c.String("corpus")
	}
	if c.IsSet("index") {
		cfg.Index.Path = c.String("index")
	}
	if c.Bool("in-memory") {
		cfg.Index.InMemory = true
	}
	if c.IsSet("host") {
		cfg.AI.Host = c.String("host")
		cfg.AI.EmbeddingHost = ""
		cfg.AI.GeneratorHost = ""
	}
	if c.IsSet("embedding-model") {
		cfg.AI.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("generator-model") {
		cfg.AI.GeneratorModel = c.String("generator-model")
	}
	if c.Bool("no-embeddings") {
		cfg.AI.Embeddings = false
	}
	if c.Bool("no-generation") {
		cfg.AI.Generation = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openBot(c *cli.Context, opts ...faqbot.Option) (*faqbot.Bot, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	bot, err := faqbot.New(c.Context, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open bot: %w", err)
	}
	return bot, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
