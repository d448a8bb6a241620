package text_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tickermate/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "ASCII text", input: "hello", expected: 5},
		{name: "empty", input: "", expected: 0},
		{name: "Japanese", input: "こんにちは", expected: 5},
		{name: "mixed", input: "hello世界", expected: 7},
		{name: "emoji", input: "Hello👋", expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, text.CountRunes(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{name: "shorter than limit", input: "abc", n: 10, want: "abc"},
		{name: "exact", input: "abc", n: 3, want: "abc"},
		{name: "cut ASCII", input: "abcdef", n: 4, want: "abcd"},
		{name: "cut multibyte", input: "日本語テキスト", n: 3, want: "日本語"},
		{name: "zero", input: "abc", n: 0, want: ""},
		{name: "negative", input: "abc", n: -1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Truncate(tt.input, tt.n))
		})
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, text.CountWords("   "))
	assert.Equal(t, 4, text.CountWords(" tariffs lift  steel\nstocks "))
}
