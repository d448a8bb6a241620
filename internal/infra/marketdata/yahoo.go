package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"tickermate/internal/observability/metrics"
	"tickermate/internal/observability/tracing"
	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/resilience/retry"
)

// DefaultYahooURL is the Yahoo Finance chart endpoint; the symbol is appended.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// indexSymbols maps cashtag index names to Yahoo symbols.
var indexSymbols = map[string]string{
	"SPX": "^GSPC",
	"DJI": "^DJI",
	"NDX": "^NDX",
}

// YahooConfig configures the Yahoo Finance provider.
type YahooConfig struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string
	Retry     retry.Config
	// MinInterval spaces consecutive requests.
	MinInterval time.Duration

	// ProfileURL enables the sector lookup through quoteSummary. The three
	// profile URLs default to Yahoo's only when BaseURL is left empty.
	ProfileURL string
	CrumbURL   string
	SessionURL string
}

// Yahoo reads price, previous close and name from the Yahoo Finance chart
// API and the sector from the company profile. A failed sector lookup
// leaves Quote.Sector empty.
type Yahoo struct {
	cfg     YahooConfig
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
	profile *profileClient
}

// NewYahoo creates the provider. Zero fields take defaults.
func NewYahoo(cfg YahooConfig) *Yahoo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultYahooURL
		if cfg.ProfileURL == "" {
			cfg.ProfileURL = DefaultProfileURL
			cfg.CrumbURL = DefaultCrumbURL
			cfg.SessionURL = DefaultSessionURL
		}
	}
	if cfg.ProfileURL != "" && !strings.HasSuffix(cfg.ProfileURL, "/") {
		cfg.ProfileURL += "/"
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (TickerMateBot/1.3)"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.MarketDataConfig()
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	y := &Yahoo{
		cfg:     cfg,
		breaker: circuitbreaker.New(circuitbreaker.MarketDataConfig()),
		limiter: rate.NewLimiter(limit, 1),
	}
	if cfg.ProfileURL != "" && cfg.CrumbURL != "" && cfg.SessionURL != "" {
		y.profile = newProfileClient(cfg, y.limiter)
	}
	return y
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"previousClose"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
}

// GetSnapshot implements Provider.
func (y *Yahoo) GetSnapshot(ctx context.Context, symbol string) (Quote, error) {
	ctx, span := tracing.StartSpan(ctx, "marketdata.quote", attribute.String("symbol", symbol))

	q, err := retry.Do(ctx, y.cfg.Retry, func(ctx context.Context) (Quote, error) {
		return circuitbreaker.Call(y.breaker, func() (Quote, error) {
			return y.fetch(ctx, symbol)
		})
	})
	metrics.RecordMarketData(err == nil)
	tracing.EndSpan(span, err)
	if err != nil {
		return Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}

	if _, index := indexSymbols[symbol]; !index && y.profile != nil {
		sector, err := y.profile.Sector(ctx, symbol)
		if err != nil {
			slog.DebugContext(ctx, "sector lookup failed",
				slog.String("symbol", symbol),
				slog.Any("error", err))
		}
		q.Sector = sector
	}
	return q, nil
}

func (y *Yahoo) fetch(ctx context.Context, symbol string) (Quote, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return Quote{}, err
	}

	remote := symbol
	if alias, ok := indexSymbols[symbol]; ok {
		remote = alias
	}
	u := y.cfg.BaseURL + url.PathEscape(remote) + "?range=1d&interval=1d"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", y.cfg.UserAgent)

	resp, err := y.cfg.Client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Quote{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, retry.Permanent(fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol))
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return Quote{}, retry.Permanent(fmt.Errorf("decode chart response: %w", err))
	}
	if cr.Chart.Error != nil {
		return Quote{}, retry.Permanent(fmt.Errorf("%w: %s: %s", ErrSymbolNotFound, symbol, cr.Chart.Error.Description))
	}
	if len(cr.Chart.Result) == 0 || cr.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return Quote{}, retry.Permanent(fmt.Errorf("%w: %s: empty result", ErrSymbolNotFound, symbol))
	}

	m := cr.Chart.Result[0].Meta
	prev := m.PreviousClose
	if prev == 0 {
		prev = m.ChartPreviousClose
	}
	name := m.LongName
	if name == "" {
		name = m.ShortName
	}

	slog.DebugContext(ctx, "quote fetched",
		slog.String("symbol", symbol),
		slog.Float64("price", m.RegularMarketPrice),
		slog.Float64("previous_close", prev))

	return Quote{
		Symbol:        symbol,
		Price:         m.RegularMarketPrice,
		PreviousClose: prev,
		Name:          name,
		Currency:      m.Currency,
	}, nil
}
