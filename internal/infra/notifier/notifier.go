// Package notifier posts finished reports to chat webhooks so a watchlist
// digest reaches the team without opening the dashboard.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"tickermate/internal/domain/entity"
	pkgconfig "tickermate/internal/pkg/config"
)

// Notifier sends a notification about a built report.
type Notifier interface {
	NotifyReport(ctx context.Context, rep *entity.Report) error
}

// NoOp is used when no webhook is configured.
type NoOp struct{}

// NotifyReport does nothing.
func (NoOp) NotifyReport(context.Context, *entity.Report) error { return nil }

// Multi fans a report out to every notifier and joins their errors.
type Multi []Notifier

// NotifyReport implements Notifier.
func (m Multi) NotifyReport(ctx context.Context, rep *entity.Report) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyReport(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config enables the webhook targets.
type Config struct {
	SlackWebhookURL   string
	DiscordWebhookURL string
	Timeout           time.Duration
}

// LoadConfigFromEnv reads SLACK_ENABLED/SLACK_WEBHOOK_URL and
// DISCORD_ENABLED/DISCORD_WEBHOOK_URL. A target whose URL fails validation
// is disabled and reported as a fallback.
func LoadConfigFromEnv() (Config, []pkgconfig.Fallback) {
	cfg := Config{Timeout: 30 * time.Second}
	var fallbacks []pkgconfig.Fallback

	if pkgconfig.Bool("SLACK_ENABLED", false).Value {
		raw := pkgconfig.String("SLACK_WEBHOOK_URL", "")
		if err := validateWebhook(raw, "hooks.slack.com", "/services/"); err != nil {
			fallbacks = append(fallbacks, pkgconfig.Fallback{Key: "SLACK_WEBHOOK_URL", Reason: err.Error()})
		} else {
			cfg.SlackWebhookURL = raw
		}
	}
	if pkgconfig.Bool("DISCORD_ENABLED", false).Value {
		raw := pkgconfig.String("DISCORD_WEBHOOK_URL", "")
		if err := validateWebhook(raw, "discord.com", "/api/webhooks/"); err != nil {
			fallbacks = append(fallbacks, pkgconfig.Fallback{Key: "DISCORD_WEBHOOK_URL", Reason: err.Error()})
		} else {
			cfg.DiscordWebhookURL = raw
		}
	}
	return cfg, fallbacks
}

func validateWebhook(raw, host, pathPrefix string) error {
	if raw == "" {
		return errors.New("webhook URL is empty, notifications disabled")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL, notifications disabled: %w", err)
	}
	if u.Scheme != "https" {
		return errors.New("webhook URL must use https, notifications disabled")
	}
	if u.Host != host {
		return fmt.Errorf("webhook host must be %s, notifications disabled", host)
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		return fmt.Errorf("webhook path must start with %s, notifications disabled", pathPrefix)
	}
	return nil
}

// New builds the configured notifiers. It returns NoOp when none is enabled.
func New(cfg Config) Notifier {
	var out Multi
	if cfg.SlackWebhookURL != "" {
		out = append(out, NewSlack(cfg.SlackWebhookURL, cfg.Timeout))
	}
	if cfg.DiscordWebhookURL != "" {
		out = append(out, NewDiscord(cfg.DiscordWebhookURL, cfg.Timeout))
	}
	switch len(out) {
	case 0:
		return NoOp{}
	case 1:
		return out[0]
	}
	return out
}

// tally counts the sentiments of the report items.
func tally(rep *entity.Report) string {
	counts := map[string]int{}
	for _, it := range rep.Items {
		counts[it.Sentiment]++
	}
	var parts []string
	for _, s := range []entity.Sentiment{entity.SentimentBullish, entity.SentimentBearish, entity.SentimentNeutral, entity.SentimentUnknown} {
		if n := counts[string(s)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(s))))
		}
	}
	if len(parts) == 0 {
		return "no items"
	}
	return strings.Join(parts, ", ")
}

// headline is the one-line summary shared by every target.
func headline(rep *entity.Report) string {
	price := "N/A"
	if rep.Price != nil {
		price = *rep.Price
	}
	return fmt.Sprintf("%s %s (%s)", rep.Ticker, price, rep.Change)
}

// truncate cuts text to max bytes on a rune boundary and appends suffix.
func truncate(text string, max int, suffix string) string {
	if len(text) <= max {
		return text
	}
	cut := max - len(suffix)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + suffix
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
