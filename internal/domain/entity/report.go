package entity

import (
	"fmt"
	"strings"
	"time"
)

// Channel selects which family of sources a report is built from.
type Channel string

const (
	// ChannelSocial is a single public social profile (statuses API, feed, rendered page, raw page).
	ChannelSocial Channel = "social"
	// ChannelNews is a news aggregation API with a headline feed fallback.
	ChannelNews Channel = "news"
	// ChannelStream is a per-symbol message stream.
	ChannelStream Channel = "stream"
)

// Channels lists every supported channel.
var Channels = []Channel{ChannelSocial, ChannelNews, ChannelStream}

// ParseChannel validates a channel name. An empty name selects ChannelSocial.
func ParseChannel(s string) (Channel, error) {
	if s == "" {
		return ChannelSocial, nil
	}
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Channels {
		if c == known {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "channel", Message: fmt.Sprintf("unknown channel %q", s)}
}

// ReportItem is one classified content item as presented to the dashboard.
type ReportItem struct {
	TimeAgo   string `json:"time_ago"`
	Source    string `json:"source,omitempty"`
	Sentiment string `json:"sentiment"`
	Summary   string `json:"summary"`
}

// Report is the JSON document served for a ticker.
type Report struct {
	Ticker      string       `json:"ticker"`
	Channel     Channel      `json:"channel"`
	Name        string       `json:"name"`
	Sector      string       `json:"sector"`
	Price       *string      `json:"price"`
	Change      string       `json:"change"`
	Highlight   string       `json:"highlight"`
	Items       []ReportItem `json:"items"`
	GeneratedAt time.Time    `json:"generated_at"`
}
