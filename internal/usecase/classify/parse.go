package classify

import (
	"encoding/json"
	"regexp"
	"strings"

	"tickermate/internal/domain/entity"
	"tickermate/internal/utils/text"
)

// Kind tells how a model response was interpreted.
type Kind int

const (
	// Structured means the response carried a JSON object.
	Structured Kind = iota
	// Salvaged means no JSON was found and the first line was used as summary.
	Salvaged
)

func (k Kind) String() string {
	if k == Structured {
		return "structured"
	}
	return "salvaged"
}

// salvageLimit caps the summary taken from an unstructured response.
const salvageLimit = 60

var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// Parsed is the interpretation of one model response.
type Parsed struct {
	Kind           Kind
	Classification entity.Classification
}

type payload struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

// Parse interprets a model response. It tries, in order, a bare JSON
// object, a JSON object inside a fenced code block, and finally the first
// non-empty line truncated to 60 characters with an Unknown sentiment.
// Parse never fails.
func Parse(raw string) Parsed {
	trimmed := strings.TrimSpace(raw)

	if p, ok := decode(trimmed); ok {
		return structured(p)
	}
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		if p, ok := decode(strings.TrimSpace(m[1])); ok {
			return structured(p)
		}
	}

	return Parsed{
		Kind: Salvaged,
		Classification: entity.Classification{
			Summary:   text.Truncate(text.FirstLine(trimmed), salvageLimit),
			Sentiment: entity.SentimentUnknown,
		},
	}
}

func decode(s string) (payload, bool) {
	var p payload
	if !strings.HasPrefix(s, "{") {
		return p, false
	}
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return p, false
	}
	return p, true
}

func structured(p payload) Parsed {
	return Parsed{
		Kind: Structured,
		Classification: entity.Classification{
			Summary:   strings.TrimSpace(p.Summary),
			Sentiment: entity.ParseSentiment(p.Sentiment),
		},
	}
}
