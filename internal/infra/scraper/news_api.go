package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tickermate/internal/domain/entity"
	"tickermate/internal/usecase/fetch"
	"tickermate/internal/utils/timeago"
)

const (
	// DefaultNewsAPIURL is the Marketaux news endpoint.
	DefaultNewsAPIURL = "https://api.marketaux.com/v1/news/all"

	newsPageSize = 3
	newsWindow   = 24 * time.Hour
)

// NewsAPIConfig configures the news aggregation API strategy.
type NewsAPIConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"-"`
	// Language filters articles; empty means "en".
	Language string `yaml:"language"`
	// Window is how far back articles are requested; zero means 24h.
	Window time.Duration `yaml:"window"`
	// PageSize is the per-request article count. Free plans cap it at 3.
	PageSize int              `yaml:"page_size"`
	Now      func() time.Time `yaml:"-"`
}

// NewsAPIStrategy queries a Marketaux-compatible endpoint for articles
// tagged with the symbol, newest first.
type NewsAPIStrategy struct {
	cfg NewsAPIConfig
	src httpSource
}

// NewNewsAPIStrategy creates the news API strategy.
func NewNewsAPIStrategy(cfg NewsAPIConfig, opts HTTPOptions) *NewsAPIStrategy {
	if cfg.URL == "" {
		cfg.URL = DefaultNewsAPIURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Window <= 0 {
		cfg.Window = newsWindow
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = newsPageSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &NewsAPIStrategy{cfg: cfg, src: newHTTPSource("news-api", opts)}
}

// Name returns the strategy identifier.
func (n *NewsAPIStrategy) Name() string { return "news-api" }

type newsResponse struct {
	Meta struct {
		Found    int `json:"found"`
		Returned int `json:"returned"`
		Page     int `json:"page"`
	} `json:"meta"`
	Data []newsArticle `json:"data"`
}

type newsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// Fetch pages through the API until q.Limit articles are collected or the
// result set is exhausted.
func (n *NewsAPIStrategy) Fetch(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error) {
	if n.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: news API key not configured", fetch.ErrAccessBlocked)
	}

	now := n.cfg.Now().UTC()
	c := fetch.NewCollector(q)
	seen := 0
	for page := 1; page <= n.src.opts.MaxPages && !c.Full(); page++ {
		var resp newsResponse
		if err := n.src.getJSON(ctx, n.pageURL(q.Symbol, now, page), &resp); err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}

		kept := len(c.Items())
		for _, a := range resp.Data {
			if c.Add(n.toItem(a)) {
				break
			}
		}
		n.src.logPage(page, len(resp.Data), len(c.Items())-kept)

		seen += len(resp.Data)
		if resp.Meta.Found > 0 && seen >= resp.Meta.Found {
			break
		}
	}
	return c.Items(), nil
}

func (n *NewsAPIStrategy) pageURL(symbol string, now time.Time, page int) string {
	v := url.Values{}
	v.Set("api_token", n.cfg.APIKey)
	v.Set("symbols", symbol)
	v.Set("language", n.cfg.Language)
	v.Set("filter_entities", "true")
	v.Set("limit", strconv.Itoa(n.cfg.PageSize))
	v.Set("page", strconv.Itoa(page))
	v.Set("published_after", now.Add(-n.cfg.Window).Format("2006-01-02T15:04"))
	v.Set("published_before", now.Format("2006-01-02T15:04"))
	return n.cfg.URL + "?" + v.Encode()
}

// toItem leaves CreatedAt zero when published_at does not parse so the
// report shows it as of unknown age.
func (n *NewsAPIStrategy) toItem(a newsArticle) entity.ContentItem {
	created, _ := timeago.ParseTimestamp(a.PublishedAt, nil)

	body := strings.TrimSpace(a.Description)
	if body == "" {
		body = strings.TrimSpace(a.Snippet)
	}
	title := strings.TrimSpace(a.Title)
	switch {
	case body == "":
		body = title
	case title != "":
		body = title + "\n" + body
	}
	return entity.NewContentItem(created, body, a.Source, a.URL)
}
