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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/faqbot"
	"github.com/poiesic/faqbot/compose"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/retrieval"
	"github.com/urfave/cli/v2"
)

func indexCommand(c *cli.Context) error {
	bot, err := openBot(c, faqbot.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer bot.Close()

	status := bot.Status()
	if !status.Embeddings {
		return errors.New("embeddings are disabled, nothing to index")
	}
	if c.Bool("force") || status.IndexVersion != status.CorpusVersion || status.Indexed != status.Entries {
		if err := bot.Reindex(c.Context); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
		status = bot.Status()
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Corpus version: %s\n", shortVersion(status.CorpusVersion))
	fmt.Fprintf(w, "Index version: %s\n", shortVersion(status.IndexVersion))
	fmt.Fprintf(w, "Entries: %d\n", status.Entries)
	fmt.Fprintf(w, "Indexed: %d (dimension %d)\n", status.Indexed, status.Dimension)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required")
	}

	bot, err := openBot(c, faqbot.WithMonitor(retrieval.NewLogMonitor(nil)))
	if err != nil {
		return err
	}
	defer bot.Close()

	results, err := bot.Retrieve(c.Context, query, c.Int("top-k"))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: '%s' (%d)[%0.3f %s]\n", i, hit.Entry.Question, hit.Entry.Id, hit.Score, hit.Method)
	}
	return nil
}

func askCommand(c *cli.Context) error {
	message := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(message) == "" {
		return errors.New("a message is required")
	}

	bot, err := openBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	intent := core.Intent{
		Label:      c.String("intent"),
		Confidence: float32(c.Float64("confidence")),
	}
	resp := bot.ComposeResponse(c.Context, c.String("user"), message, intent)
	printResponse(c.App.Writer, resp, c.Bool("verbose"))
	return nil
}

func chatCommand(c *cli.Context) error {
	bot, err := openBot(c)
	if err != nil {
		return err
	}
	defer bot.Close()

	user := c.String("user")
	w := c.App.Writer
	scanner := bufio.NewScanner(c.App.Reader)
	fmt.Fprint(w, "> ")
	for scanner.Scan() {
		if err := c.Context.Err(); err != nil {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
		case "/quit", "/exit":
			return nil
		case "/clear":
			bot.ClearContext(user)
			fmt.Fprintln(w, "Context cleared.")
		default:
			resp := bot.ComposeResponse(c.Context, user, line, core.Intent{})
			printResponse(w, resp, c.Bool("verbose"))
		}
		fmt.Fprint(w, "> ")
	}
	fmt.Fprintln(w)
	return scanner.Err()
}

func printResponse(w io.Writer, resp *compose.Response, verbose bool) {
	fmt.Fprintln(w, resp.Text)
	if !verbose {
		return
	}
	fmt.Fprintf(w, "  [turn %s] strategy=%s entry=%d generated=%t failure=%s\n",
		resp.TurnID, resp.Strategy, resp.EntryId, resp.Generated, resp.Failure)
	for i, cand := range resp.Candidates {
		fmt.Fprintf(w, "  %d: '%s' (%d)[%0.3f %s]\n", i, cand.Entry.Question, cand.Entry.Id, cand.Score, cand.Method)
	}
}

func shortVersion(v string) string {
	if v == "" {
		return "(none)"
	}
	if len(v) > 12 {
		return v[:12]
	}
	return v
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
