package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/usecase/fetch"
)

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// BrowserConfig configures the headless browser strategy.
type BrowserConfig struct {
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
	// ExecPath is the Chrome binary. Empty searches PATH.
	ExecPath string `yaml:"exec_path"`
	// Cookie is a raw Cookie header value ("a=1; b=2") injected before navigation.
	Cookie    string `yaml:"-"`
	UserAgent string `yaml:"user_agent"`
	// WaitSelector must become visible before the page is read.
	WaitSelector string    `yaml:"wait_selector"`
	Selectors    Selectors `yaml:"selectors"`
	// Timeout bounds the whole browser session.
	Timeout time.Duration `yaml:"timeout"`
	// WaitTimeout bounds the wait for WaitSelector.
	WaitTimeout time.Duration `yaml:"wait_timeout"`
	// MaxScrolls caps how many times the page is scrolled to load older posts.
	MaxScrolls  int           `yaml:"max_scrolls"`
	ScrollDelay time.Duration `yaml:"scroll_delay"`
}

// DefaultBrowserConfig returns defaults for the profile page.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		UserAgent:    DefaultUserAgent,
		WaitSelector: "div.card",
		Selectors:    DefaultSelectors(),
		Timeout:      60 * time.Second,
		WaitTimeout:  20 * time.Second,
		MaxScrolls:   3,
		ScrollDelay:  1500 * time.Millisecond,
	}
}

// BrowserStrategy renders the profile page in headless Chrome via chromedp.
type BrowserStrategy struct {
	cfg     BrowserConfig
	breaker *circuitbreaker.CircuitBreaker
}

// NewBrowserStrategy creates the browser strategy. Zero fields take defaults.
func NewBrowserStrategy(cfg BrowserConfig) *BrowserStrategy {
	def := DefaultBrowserConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.WaitSelector == "" {
		cfg.WaitSelector = def.WaitSelector
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = def.WaitTimeout
	}
	if cfg.MaxScrolls < 0 {
		cfg.MaxScrolls = 0
	}
	if cfg.ScrollDelay <= 0 {
		cfg.ScrollDelay = def.ScrollDelay
	}
	cfg.Selectors = cfg.Selectors.withDefaults()
	return &BrowserStrategy{cfg: cfg, breaker: circuitbreaker.New(circuitbreaker.SourceConfig("browser"))}
}

// Name returns the strategy identifier.
func (b *BrowserStrategy) Name() string { return "browser" }

// Fetch renders the page and extracts posts. It fails fast with
// fetch.ErrEngineUnavailable when no Chrome binary can be found.
func (b *BrowserStrategy) Fetch(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error) {
	execPath, err := findChrome(b.cfg.ExecPath)
	if err != nil {
		return nil, err
	}
	return circuitbreaker.Call(b.breaker, func() ([]entity.ContentItem, error) {
		return b.render(ctx, execPath, q)
	})
}

func (b *BrowserStrategy) render(ctx context.Context, execPath string, q fetch.Query) ([]entity.ContentItem, error) {
	pageURL, err := url.Parse(b.cfg.URL)
	if err != nil || pageURL.Host == "" {
		return nil, fmt.Errorf("%w: invalid page URL %q", fetch.ErrParse, b.cfg.URL)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, b.cfg.Timeout)
	defer cancel()

	if err := chromedp.Run(runCtx, network.Enable(), b.injectCookies(pageURL.Hostname())); err != nil {
		return nil, fmt.Errorf("%w: %v", fetch.ErrEngineUnavailable, err)
	}

	if err := chromedp.Run(runCtx, chromedp.Navigate(b.cfg.URL)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", b.cfg.URL, err)
	}

	waitCtx, cancelWait := context.WithTimeout(runCtx, b.cfg.WaitTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitVisible(b.cfg.WaitSelector, chromedp.ByQuery))
	cancelWait()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %q not visible after %v", fetch.ErrLikelyBlocked, b.cfg.WaitSelector, b.cfg.WaitTimeout)
		}
		return nil, err
	}

	var items []entity.ContentItem
	prevCards := -1
	for scroll := 0; ; scroll++ {
		var html string
		if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return nil, fmt.Errorf("%w: parse rendered page: %v", fetch.ErrParse, err)
		}

		cards := extractCards(doc, b.cfg.Selectors, b.cfg.Source, pageURL)
		c := fetch.NewCollector(q)
		for _, item := range cards {
			if c.Add(item) {
				break
			}
		}
		items = c.Items()

		if c.Full() || len(cards) == prevCards || scroll >= b.cfg.MaxScrolls {
			break
		}
		prevCards = len(cards)

		slog.Debug("scrolling for older posts",
			slog.String("strategy", b.Name()),
			slog.Int("cards", len(cards)),
			slog.Int("matched", len(items)))
		if err := chromedp.Run(runCtx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(b.cfg.ScrollDelay),
		); err != nil {
			break
		}
	}
	return items, nil
}

func (b *BrowserStrategy) injectCookies(host string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range parseCookies(b.cfg.Cookie) {
			if err := network.SetCookie(c.name, c.value).
				WithDomain(host).
				WithPath("/").
				WithSecure(true).
				Do(ctx); err != nil {
				slog.Warn("failed to inject cookie",
					slog.String("cookie_name", c.name),
					slog.Any("error", err))
			}
		}
		return nil
	})
}

type cookie struct {
	name  string
	value string
}

// parseCookies splits a raw Cookie header value into name/value pairs.
// Values containing characters outside printable Latin-1 are percent-encoded,
// since the browser rejects them otherwise.
func parseCookies(raw string) []cookie {
	var out []cookie
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		out = append(out, cookie{name: name, value: encodeCookieValue(strings.TrimSpace(value))})
	}
	return out
}

func encodeCookieValue(v string) string {
	for _, r := range v {
		if !isPrintableLatin1(r) {
			return url.QueryEscape(v)
		}
	}
	return v
}

func isPrintableLatin1(r rune) bool {
	return (r >= 0x20 && r <= 0x7e) || (r >= 0xa0 && r <= 0xff)
}

// findChrome returns the browser executable, or fetch.ErrEngineUnavailable.
func findChrome(configured string) (string, error) {
	if configured != "" {
		if st, err := os.Stat(configured); err == nil && !st.IsDir() {
			return configured, nil
		}
		return "", fmt.Errorf("%w: %s not found", fetch.ErrEngineUnavailable, configured)
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no Chrome or Chromium binary on PATH", fetch.ErrEngineUnavailable)
}
