// Package main checks every content strategy on its own and reports which
// ones still return items.
// Usage: tickermate-diagnose [--ticker SPX] [--limit N] [--timeout 30s] [--output text|json]
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
	"time"

	"github.com/joho/godotenv"

	"tickermate/internal/config"
	"tickermate/internal/domain/entity"
	"tickermate/internal/infra/scraper"
	"tickermate/internal/observability/logging"
	"tickermate/internal/usecase/fetch"
)

// Diagnostic is the result of running one strategy.
type Diagnostic struct {
	Channel    entity.Channel `json:"channel"`
	Strategy   string         `json:"strategy"`
	Status     string         `json:"status"` // OK, EMPTY, or the failure kind
	ItemCount  int            `json:"item_count"`
	Latest     string         `json:"latest,omitempty"`
	Error      string         `json:"error,omitempty"`
	ResponseMS int64          `json:"response_time_ms"`
}

// OK reports whether the strategy returned content.
func (d Diagnostic) OK() bool { return d.Status == "OK" }

func main() {
	var (
		ticker  string
		limit   int
		timeout time.Duration
		output  string
	)
	flag.StringVar(&ticker, "ticker", "SPX", "Ticker passed to every strategy")
	flag.IntVar(&limit, "limit", 5, "Items requested from every strategy")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Timeout per strategy")
	flag.StringVar(&output, "output", "text", "Output format: text or json")
	flag.Parse()

	_ = godotenv.Load()
	slog.SetDefault(logging.NewTextLogger())

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	symbol, err := entity.NormalizeTicker(ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	factory := scraper.Factory{Sources: cfg.Sources, HTTP: scraper.DefaultHTTPOptions()}
	strategies := make(map[entity.Channel][]fetch.Strategy, len(entity.Channels))
	for _, ch := range entity.Channels {
		s, err := factory.Strategies(ch)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		strategies[ch] = s
	}

	diags := diagnose(context.Background(), strategies, fetch.Query{Symbol: symbol, Limit: limit}, timeout)

	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(diags)
	} else {
		err = writeReport(os.Stdout, diags)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to write report: %v\n", err)
		os.Exit(1)
	}

	for _, d := range diags {
		if !d.OK() {
			os.Exit(3)
		}
	}
}

// diagnose runs each strategy once, in channel order.
func diagnose(ctx context.Context, strategies map[entity.Channel][]fetch.Strategy, q fetch.Query, timeout time.Duration) []Diagnostic {
	var out []Diagnostic
	for _, ch := range entity.Channels {
		for _, s := range strategies[ch] {
			slog.Info("diagnosing strategy", slog.String("channel", string(ch)), slog.String("strategy", s.Name()))
			out = append(out, diagnoseOne(ctx, ch, s, q, timeout))
		}
	}
	return out
}

func diagnoseOne(ctx context.Context, ch entity.Channel, s fetch.Strategy, q fetch.Query, timeout time.Duration) Diagnostic {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := Diagnostic{Channel: ch, Strategy: s.Name()}
	start := time.Now()
	items, err := s.Fetch(ctx, q)
	d.ResponseMS = time.Since(start).Milliseconds()

	if err != nil {
		var re *fetch.RetrievalError
		if !errors.As(err, &re) {
			re = fetch.NewRetrievalError(s.Name(), err)
		}
		d.Status = string(re.Kind)
		d.Error = err.Error()
		return d
	}
	d.ItemCount = len(items)
	if len(items) == 0 {
		d.Status = "EMPTY"
		return d
	}
	d.Status = "OK"
	latest := items[0].CreatedAt
	for _, it := range items[1:] {
		if it.CreatedAt.After(latest) {
			latest = it.CreatedAt
		}
	}
	d.Latest = latest.Format(time.RFC3339)
	return d
}

func writeReport(w io.Writer, diags []Diagnostic) error {
	ok := 0
	for _, d := range diags {
		if d.OK() {
			ok++
		}
	}

	var err error
	writef := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	writef("STRATEGY DIAGNOSTIC REPORT\n")
	writef("Working: %d of %d\n\n", ok, len(diags))
	for _, d := range diags {
		writef("%-6s %-14s %-18s items=%d %dms\n", d.Channel, d.Strategy, d.Status, d.ItemCount, d.ResponseMS)
		if d.Latest != "" {
			writef("       latest: %s\n", d.Latest)
		}
		if d.Error != "" {
			writef("       error: %s\n", d.Error)
		}
	}
	return err
}
