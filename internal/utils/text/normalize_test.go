package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tickermate/internal/utils/text"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only punctuation", input: `"'...__--`, want: ""},
		{name: "quoted", input: `"Markets rally on tariff news."`, want: "Markets rally on tariff news"},
		{name: "markdown bullet", input: "- **Bullish** outlook", want: "Bullish** outlook"},
		{name: "collapses whitespace", input: "  Stocks \n\t fall   sharply  ", want: "Stocks fall sharply"},
		{name: "keeps inner punctuation", input: "'U.S. steel, up 5%'", want: "U.S. steel, up 5"},
		{name: "underscores", input: "__summary__", want: "summary"},
		{name: "unicode letters", input: "«Économie forte»", want: "Économie forte"},
		{name: "digits at edges", input: "2025 outlook 3", want: "2025 outlook 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		`  "Hello,   world!"  `,
		"...--__",
		"\t'Tariffs'\n\n  are  **big**  ",
		"日本語 テキスト。",
		"$TSLA to the moon 🚀",
	}

	for _, in := range inputs {
		once := text.Normalize(in)
		assert.Equal(t, once, text.Normalize(once), "input %q", in)
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", text.FirstLine("\n   \n  first  \nsecond"))
	assert.Equal(t, "", text.FirstLine(" \n\t\n"))
}
