// Package scraper implements the content retrieval strategies: a
// Mastodon-compatible statuses API, syndication feeds, a headless browser,
// raw HTML pages, a news aggregation API and a per-symbol message stream.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/usecase/fetch"
)

const (
	maxBodySize = 10 * 1024 * 1024

	// DefaultUserAgent identifies the bot to sources.
	DefaultUserAgent = "Mozilla/5.0 (TickerMateBot/1.3)"

	defaultMaxPages = 5
)

// HTTPOptions are shared by every HTTP-based strategy.
type HTTPOptions struct {
	Client    *http.Client
	UserAgent string
	Retry     retry.Config
	// MaxPages caps how many pages one Fetch may request.
	MaxPages int
	// PageInterval is the minimum spacing between page requests.
	PageInterval time.Duration
}

// DefaultHTTPOptions returns options with a 30s client timeout and scraper retry policy.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Client:       &http.Client{Timeout: 30 * time.Second},
		UserAgent:    DefaultUserAgent,
		Retry:        retry.ScraperConfig(),
		MaxPages:     defaultMaxPages,
		PageInterval: 500 * time.Millisecond,
	}
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	def := DefaultHTTPOptions()
	if o.Client == nil {
		o.Client = def.Client
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = def.Retry
	}
	if o.MaxPages <= 0 {
		o.MaxPages = def.MaxPages
	}
	return o
}

// httpSource is the transport shared by HTTP strategies: every request goes
// through retry, then the strategy's circuit breaker, then the pacer.
type httpSource struct {
	name    string
	opts    HTTPOptions
	breaker *circuitbreaker.CircuitBreaker
	pacer   *rate.Limiter
}

func newHTTPSource(name string, opts HTTPOptions) httpSource {
	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.PageInterval > 0 {
		limit = rate.Every(opts.PageInterval)
	}
	return httpSource{
		name:    name,
		opts:    opts,
		breaker: circuitbreaker.New(circuitbreaker.SourceConfig(name)),
		pacer:   rate.NewLimiter(limit, 1),
	}
}

// get performs a GET and returns the body, limited to maxBodySize.
func (s *httpSource) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return retry.Do(ctx, s.opts.Retry, func(ctx context.Context) ([]byte, error) {
		return circuitbreaker.Call(s.breaker, func() ([]byte, error) {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, err
			}
			return s.doGet(ctx, url, header)
		})
	})
}

func (s *httpSource) doGet(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		httpErr := &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: %w", fetch.ErrAccessBlocked, httpErr)
		}
		return nil, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (s *httpSource) getJSON(ctx context.Context, url string, out any) error {
	body, err := s.get(ctx, url, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", fetch.ErrParse, s.name, err)
	}
	return nil
}

// getHTML performs a GET and parses the body as HTML.
func (s *httpSource) getHTML(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := s.get(ctx, url, http.Header{"Accept": []string{"text/html"}})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: parse HTML: %v", fetch.ErrParse, err)
	}
	return doc, nil
}

func (s *httpSource) logPage(page, got, kept int) {
	slog.Debug("fetched page",
		slog.String("strategy", s.name),
		slog.Int("page", page),
		slog.Int("items", got),
		slog.Int("kept", kept))
}

// htmlToText flattens an HTML fragment into text, one line per block element.
func htmlToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return joinLines(doc.Text())
}

// selectionText returns the trimmed text nodes of sel, one per line.
func selectionText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				if t := strings.TrimSpace(c.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return strings.Join(parts, "\n")
}

func joinLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
