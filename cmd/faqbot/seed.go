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
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/corpus"
	"github.com/urfave/cli/v2"
)

// Starter records, one per default intent route and in route order.
var seedRecords = []string{
	"Apa jam operasional RS Bhayangkara Brimob? | Rumah Sakit buka Senin sampai Jumat pukul 08.00-14.00 dan Sabtu pukul 08.00-12.00. | jam, operasional, buka, jadwal, waktu",
	"Apakah rumah sakit menerima pasien BPJS? | RS Bhayangkara Brimob menerima pasien BPJS Kesehatan dengan membawa kartu BPJS dan surat rujukan dari faskes tingkat pertama. | bpjs, jkn, asuransi, rujukan",
	"Bagaimana cara mendaftar online? | Pendaftaran online dapat dilakukan melalui aplikasi Mobile JKN atau situs resmi rumah sakit paling lambat H-1 sebelum kunjungan. | daftar online, online, aplikasi, pendaftaran",
	"Di mana lokasi pendaftaran pasien? | Loket pendaftaran pasien berada di lantai 1 gedung utama, dekat pintu masuk. | loket, lokasi, pendaftaran, lantai",
	"Apakah IGD buka 24 jam? | Instalasi Gawat Darurat (IGD) melayani pasien 24 jam setiap hari, termasuk hari libur. | igd, gawat darurat, darurat, emergency",
	"Apakah ada layanan dokter gigi? | Poli Gigi buka Senin sampai Jumat pukul 08.00-13.00 dengan pendaftaran di loket rawat jalan. | gigi, dokter gigi, poli gigi",
	"Apakah ada dokter anak? | Poli Anak melayani pemeriksaan dan imunisasi anak Senin sampai Sabtu pukul 08.00-12.00. | anak, dokter anak, poli anak, imunisasi",
	"Berapa biaya pemeriksaan umum? | Biaya pemeriksaan dokter umum untuk pasien umum adalah Rp75.000, belum termasuk obat dan tindakan. | biaya, tarif, harga, bayar",
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// parseSeedLine reads "question | answer | keyword, keyword".
// The keyword column is optional.
func parseSeedLine(line string) (*core.FAQEntry, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("expected 'question | answer | keywords', got %d columns", len(parts))
	}
	entry := &core.FAQEntry{
		Question: strings.TrimSpace(parts[0]),
		Answer:   strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		entry.Keywords = core.NormalizeKeywords(strings.Split(parts[2], ","))
	}
	return entry, nil
}

// collectSeed numbers the records of source from 1, skipping blank lines and
// '#' comments.
func collectSeed(source iter.Seq[string]) ([]*core.FAQEntry, error) {
	var entries []*core.FAQEntry
	lineNo := 0
	for line := range source {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseSeedLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entry.Id = core.ID(len(entries) + 1)
		if err := core.ValidateFAQEntry(entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func seedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	out := cfg.Corpus.Path
	if fileExists(out) && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", out)
	}

	source := linesFromSlice(seedRecords)
	if src := c.String("src"); src != "" {
		source, err = linesFromFile(src)
		if err != nil {
			return err
		}
	}

	entries, err := collectSeed(source)
	if err != nil {
		return err
	}
	data, err := corpus.EncodeEntries(entries)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Wrote %d entries to %s\n", len(entries), out)
	return nil
}
