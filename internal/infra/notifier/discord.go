package notifier

import (
	"context"
	"time"

	"tickermate/internal/domain/entity"
)

const (
	maxTitleLength       = 256
	maxDescriptionLength = 4096

	colorBullish = 0x2ECC71
	colorBearish = 0xE74C3C
	colorNeutral = 0x5865F2
)

// DiscordPayload is a Discord webhook message.
type DiscordPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed is one embed of a Discord message.
type DiscordEmbed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
	Footer      DiscordFooter `json:"footer"`
	Timestamp   string        `json:"timestamp"`
}

// DiscordFooter is the footer of an embed.
type DiscordFooter struct {
	Text string `json:"text"`
}

// Discord posts reports to a Discord webhook.
type Discord struct {
	hook *webhook
}

// NewDiscord creates a Discord notifier paced at 30 messages per minute.
func NewDiscord(webhookURL string, timeout time.Duration) *Discord {
	return &Discord{hook: newWebhook("discord", webhookURL, timeout, 0.5, 3)}
}

// NotifyReport implements Notifier.
func (d *Discord) NotifyReport(ctx context.Context, rep *entity.Report) error {
	return d.hook.send(ctx, rep.Ticker, discordPayload(rep))
}

func discordPayload(rep *entity.Report) DiscordPayload {
	return DiscordPayload{Embeds: []DiscordEmbed{{
		Title:       truncate(headline(rep)+" "+rep.Name, maxTitleLength, "..."),
		Description: truncate(rep.Highlight, maxDescriptionLength, "..."),
		Color:       embedColor(rep),
		Footer:      DiscordFooter{Text: string(rep.Channel) + " • " + tally(rep)},
		Timestamp:   rep.GeneratedAt.UTC().Format(time.RFC3339),
	}}}
}

// embedColor follows the sentiment of the highlighted item.
func embedColor(rep *entity.Report) int {
	if len(rep.Items) == 0 {
		return colorNeutral
	}
	switch entity.Sentiment(rep.Items[0].Sentiment) {
	case entity.SentimentBullish:
		return colorBullish
	case entity.SentimentBearish:
		return colorBearish
	}
	return colorNeutral
}
