package text

import (
	"strings"
	"unicode"
)

// Normalize cleans a model-generated line for display. Whitespace runs are
// collapsed to a single space, then leading and trailing characters that are
// not letters or digits (punctuation, quotes, underscores, stray markdown)
// are removed.
//
// Normalize is idempotent and returns "" for empty or all-punctuation input.
func Normalize(raw string) string {
	collapsed := strings.Join(strings.Fields(raw), " ")
	return strings.TrimFunc(collapsed, isNonWord)
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func isNonWord(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r))
}
