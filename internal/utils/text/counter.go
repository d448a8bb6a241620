// Package text provides small rune-aware helpers for cleaning model output
// and source text before it is shown on the dashboard.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in text.
func CountRunes(text string) int {
	return len([]rune(text))
}

// Truncate returns at most n runes of text. Multi-byte characters are never split.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// CountWords counts whitespace separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
