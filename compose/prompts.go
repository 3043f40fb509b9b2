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
	"strings"

	"github.com/poiesic/faqbot/core"
)

const (
	// NoMatchMessage is returned when nothing relevant was retrieved.
	NoMatchMessage = "Maaf, saya tidak dapat membantu dengan pertanyaan tersebut. Silakan hubungi bagian administrasi untuk informasi lebih lanjut."

	// CannotFindMessage is returned when no part of a compound question matched.
	CannotFindMessage = "Maaf, saya tidak dapat menemukan jawaban untuk pertanyaan-pertanyaan tersebut. Silakan hubungi bagian administrasi untuk informasi lebih lanjut."
)

const paraphrasePromptTemplate = `Anda adalah asisten %s. Jawab pertanyaan berikut dengan sopan dan ringkas, berdasarkan FAQ:
%sPertanyaan: %s
Jawaban: %s
User: %s
Jawaban:`

const rephrasePromptTemplate = `Anda adalah asisten %s. Rephrase jawaban FAQ agar sesuai gaya pertanyaan user. Jangan menambahkan informasi di luar jawaban FAQ:
%sPertanyaan: %s
Jawaban: %s
User: %s
Jawaban:`

const combinePromptTemplate = `User bertanya beberapa hal sekaligus. Gabungkan jawaban FAQ berikut secara natural:
%s%s
User: %s
Jawaban gabungan (maksimal %d kalimat):`

const disambiguationTemplate = `Maaf, saya tidak yakin dengan jawaban. Mungkin Anda mencari informasi tentang:
%s
Silakan pilih atau tanyakan lebih spesifik.`

func topicLine(topic string) string {
	if topic == "" {
		return ""
	}
	return "Topik sebelumnya: " + topic + "\n"
}

func paraphrasePrompt(assistant, topic string, entry *core.FAQEntry, message string) string {
	return fmt.Sprintf(paraphrasePromptTemplate, assistant, topicLine(topic), entry.Question, entry.Answer, message)
}

func rephrasePrompt(assistant, topic string, entry *core.FAQEntry, message string) string {
	return fmt.Sprintf(rephrasePromptTemplate, assistant, topicLine(topic), entry.Question, entry.Answer, message)
}

func combinePrompt(topic string, entries []*core.FAQEntry, message string, maxSentences int) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s", e.Question, e.Answer)
	}
	return fmt.Sprintf(combinePromptTemplate, topicLine(topic), sb.String(), message, maxSentences)
}

// disambiguationMessage lists the candidate questions for the user to pick.
func disambiguationMessage(results []*core.SearchResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, "- "+r.Entry.Question)
	}
	return fmt.Sprintf(disambiguationTemplate, strings.Join(lines, "\n"))
}
