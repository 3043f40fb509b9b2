package openai

import "strings"

// answerLabels are prompt labels small models tend to echo back.
var answerLabels = []string{"Jawaban:", "Answer:", "Assistant:"}

// cleanCompletion trims whitespace, cuts the text at the first stop sequence
// the server did not honour, and drops an echoed answer label.
func cleanCompletion(s string, stops []string) string {
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if i := strings.Index(s, stop); i > 0 {
			s = s[:i]
		}
	}
	s = strings.TrimSpace(s)
	for _, label := range answerLabels {
		if strings.HasPrefix(s, label) {
			s = strings.TrimSpace(strings.TrimPrefix(s, label))
			break
		}
	}
	return s
}
