package entity

import "strings"

// Sentiment is the implied market direction of a piece of content.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
	SentimentUnknown Sentiment = "Unknown"
)

// ParseSentiment maps free text onto a Sentiment, case-insensitively.
// Anything unrecognized becomes SentimentUnknown.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(s), `."'`)) {
	case "bullish", "positive":
		return SentimentBullish
	case "bearish", "negative":
		return SentimentBearish
	case "neutral", "mixed":
		return SentimentNeutral
	default:
		return SentimentUnknown
	}
}

// Classification is the summary and sentiment produced for one ContentItem.
type Classification struct {
	Summary   string
	Sentiment Sentiment
}
