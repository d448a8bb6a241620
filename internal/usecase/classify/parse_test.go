package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tickermate/internal/domain/entity"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		kind      Kind
		summary   string
		sentiment entity.Sentiment
	}{
		{
			name:      "bare json",
			raw:       `{"summary": "Tariffs weigh on automakers.", "sentiment": "Bearish"}`,
			kind:      Structured,
			summary:   "Tariffs weigh on automakers.",
			sentiment: entity.SentimentBearish,
		},
		{
			name:      "bare json with whitespace",
			raw:       "\n  {\"summary\":\"Up\",\"sentiment\":\"bullish\"}  \n",
			kind:      Structured,
			summary:   "Up",
			sentiment: entity.SentimentBullish,
		},
		{
			name:      "fenced json",
			raw:       "```json\n{\"summary\": \"Flat\", \"sentiment\": \"Neutral\"}\n```",
			kind:      Structured,
			summary:   "Flat",
			sentiment: entity.SentimentNeutral,
		},
		{
			name:      "fenced without language after prose",
			raw:       "Here you go:\n```\n{\"summary\": \"Flat\", \"sentiment\": \"Neutral\"}\n```",
			kind:      Structured,
			summary:   "Flat",
			sentiment: entity.SentimentNeutral,
		},
		{
			name:      "unknown sentiment label",
			raw:       `{"summary": "Hard to say", "sentiment": "Sideways"}`,
			kind:      Structured,
			summary:   "Hard to say",
			sentiment: entity.SentimentUnknown,
		},
		{
			name:      "free text",
			raw:       "\n\nStocks will probably rise.\nSentiment: Bullish",
			kind:      Salvaged,
			summary:   "Stocks will probably rise.",
			sentiment: entity.SentimentUnknown,
		},
		{
			name:      "broken json",
			raw:       `{"summary": "cut off`,
			kind:      Salvaged,
			summary:   `{"summary": "cut off`,
			sentiment: entity.SentimentUnknown,
		},
		{
			name:      "empty",
			raw:       "   ",
			kind:      Salvaged,
			summary:   "",
			sentiment: entity.SentimentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.summary, got.Classification.Summary)
			assert.Equal(t, tt.sentiment, got.Classification.Sentiment)
		})
	}
}

func TestParse_FencedEqualsBare(t *testing.T) {
	bare := `{"summary": "Chip stocks rally on export news", "sentiment": "Bullish"}`
	fenced := "```json\n" + bare + "\n```"
	assert.Equal(t, Parse(bare), Parse(fenced))
}

func TestParse_SalvageTruncatesToSixtyRunes(t *testing.T) {
	line := strings.Repeat("é", 80)
	got := Parse(line + "\nsecond line")
	assert.Equal(t, Salvaged, got.Kind)
	assert.Equal(t, strings.Repeat("é", 60), got.Classification.Summary)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "structured", Structured.String())
	assert.Equal(t, "salvaged", Salvaged.String())
}
