// Package main builds one report from the command line.
// Usage: tickermate-report TICKER [--api-key KEY] [--max-posts N] [--channel social|news|stream] [--output text|json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tickermate/internal/app"
	"tickermate/internal/config"
	"tickermate/internal/domain/entity"
	"tickermate/internal/infra/llm"
	"tickermate/internal/observability/logging"
	"tickermate/internal/usecase/report"
)

type options struct {
	ticker   string
	apiKey   string
	maxPosts int
	channel  entity.Channel
	output   string
}

const usage = `Usage: tickermate-report TICKER [--api-key KEY] [--max-posts N] [--channel social|news|stream] [--output text|json]

Examples:
  tickermate-report SPX
  tickermate-report TSLA --channel news --max-posts 6
  tickermate-report NVDA --output json`

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", err, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()
	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyAPIKey(cfg, opts.apiKey)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	application, err := app.Build(ctx, cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = application.Close() }()

	rep, err := application.Service.BuildReport(ctx, report.Request{
		Ticker:  opts.ticker,
		Channel: opts.channel,
		Limit:   opts.maxPosts,
	})
	if err != nil {
		var cfgErr *entity.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Error: %v (set %s or pass --api-key)\n", err, cfgErr.Setting)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if err := write(os.Stdout, rep, opts.output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to write report: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs accepts the ticker before, after or between flags.
func parseArgs(args []string) (options, error) {
	var (
		opts    options
		channel string
	)
	fs := flag.NewFlagSet("tickermate-report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.apiKey, "api-key", "", "LLM API key; overrides the provider's environment variable")
	fs.IntVar(&opts.maxPosts, "max-posts", report.DefaultLimit, "Number of items to classify")
	fs.StringVar(&channel, "channel", string(entity.ChannelSocial), "Channel: social, news or stream")
	fs.StringVar(&opts.output, "output", "text", "Output format: text or json")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return opts, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if len(positional) == 0 {
		return opts, errors.New("ticker is required")
	}
	if len(positional) > 1 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	}
	opts.ticker = positional[0]

	ch, err := entity.ParseChannel(channel)
	if err != nil {
		return opts, err
	}
	opts.channel = ch

	if opts.output != "text" && opts.output != "json" {
		return opts, fmt.Errorf("output must be text or json, got %q", opts.output)
	}
	return opts, nil
}

// applyAPIKey sets key as the credential of the configured provider.
func applyAPIKey(cfg *config.Config, key string) {
	if key == "" {
		return
	}
	if strings.EqualFold(cfg.LLM.Provider, llm.ProviderClaude) {
		cfg.LLM.AnthropicKey = key
		return
	}
	cfg.LLM.OpenAIKey = key
}

func write(w io.Writer, rep *entity.Report, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return writeText(w, rep)
}

func writeText(w io.Writer, rep *entity.Report) error {
	price := "N/A"
	if rep.Price != nil {
		price = *rep.Price
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s (%s)\n", rep.Ticker, rep.Name, rep.Sector)
	fmt.Fprintf(&b, "Price: %s  Change: %s\n\n", price, rep.Change)
	fmt.Fprintf(&b, "%s\n", rep.Highlight)
	for _, it := range rep.Items {
		src := ""
		if it.Source != "" {
			src = " " + it.Source
		}
		fmt.Fprintf(&b, "\n[%s] %s%s\n  %s\n", it.Sentiment, it.TimeAgo, src, it.Summary)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
