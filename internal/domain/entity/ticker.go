package entity

import (
	"regexp"
	"slices"
	"strings"
)

var (
	tickerPattern  = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)
	cashtagPattern = regexp.MustCompile(`\$(DJI|SPX|NDX|[A-Z]{1,5}(?:[.\-][A-Z]{1,2})?)\b`)
)

// NormalizeTicker upper-cases and validates a ticker symbol.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", &ValidationError{Field: "ticker", Message: "ticker is required"}
	}
	if !tickerPattern.MatchString(t) {
		return "", &ValidationError{Field: "ticker", Message: "ticker must be 1-10 letters, digits, dots or dashes"}
	}
	return t, nil
}

// ExtractTickers returns the cashtags ($TSLA, $SPX, $BRK.B) mentioned in text,
// without the dollar sign, in order of first appearance.
func ExtractTickers(text string) []string {
	matches := cashtagPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// MentionsTicker reports whether text carries ticker as a whole cashtag,
// case-insensitively. "$TSLA" does not mention T.
func MentionsTicker(text, ticker string) bool {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return false
	}
	return slices.Contains(ExtractTickers(strings.ToUpper(text)), ticker)
}
