package notifier

import (
	"context"
	"fmt"
	"time"

	"tickermate/internal/domain/entity"
)

const (
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
)

// SlackPayload is an Incoming Webhook message using Block Kit.
type SlackPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock is a Block Kit block.
type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

// SlackText is a Block Kit text object.
type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Slack posts reports to a Slack Incoming Webhook.
type Slack struct {
	hook *webhook
}

// NewSlack creates a Slack notifier paced at one message per second.
func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	return &Slack{hook: newWebhook("slack", webhookURL, timeout, 1, 1)}
}

// NotifyReport implements Notifier.
func (s *Slack) NotifyReport(ctx context.Context, rep *entity.Report) error {
	return s.hook.send(ctx, rep.Ticker, slackPayload(rep))
}

func slackPayload(rep *entity.Report) SlackPayload {
	title := headline(rep)
	section := fmt.Sprintf("*%s* %s\n\n%s", title, rep.Name, rep.Highlight)
	footer := fmt.Sprintf("%s • %s • %s", rep.Channel, tally(rep), rep.GeneratedAt.UTC().Format(time.RFC3339))

	return SlackPayload{
		Text: title,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackText{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength, "...")}},
			{Type: "context", Elements: []SlackText{{Type: "mrkdwn", Text: truncate(footer, maxContextTextLength, "...")}}},
		},
	}
}
