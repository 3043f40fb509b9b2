package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanCompletion(t *testing.T) {
	stops := []string{"\n\n", "User:"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  Poli gigi buka pukul 08:00.  ", "Poli gigi buka pukul 08:00."},
		{"cut at stop sequence", "Buka 24 jam.\n\nUser: terima kasih", "Buka 24 jam."},
		{"echoed label", "Jawaban: Ya, BPJS diterima.", "Ya, BPJS diterima."},
		{"leading stop is kept out", "\n\nHalo", "Halo"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanCompletion(tt.in, stops))
		})
	}
}
