package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/usecase/fetch"
)

// FeedConfig configures a syndication feed strategy.
type FeedConfig struct {
	// ID names the strategy, e.g. "feed" or "headline-feed".
	ID string `yaml:"id"`
	// URL is the feed address; "{symbol}" is replaced by the query symbol.
	URL string `yaml:"url"`
	// Source labels items when the feed entry has no author.
	Source string `yaml:"source"`
	// IncludeTitle prefixes the entry title to its text, for headline feeds.
	IncludeTitle bool `yaml:"include_title"`
}

// FeedStrategy reads RSS or Atom through gofeed.
type FeedStrategy struct {
	cfg            FeedConfig
	opts           HTTPOptions
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewFeedStrategy creates a feed strategy.
func NewFeedStrategy(cfg FeedConfig, opts HTTPOptions) *FeedStrategy {
	if cfg.ID == "" {
		cfg.ID = "feed"
	}
	return &FeedStrategy{
		cfg:            cfg,
		opts:           opts.withDefaults(),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SourceConfig(cfg.ID)),
	}
}

// Name returns the strategy identifier.
func (f *FeedStrategy) Name() string { return f.cfg.ID }

// Fetch parses the feed and returns matching entries in feed order.
// A feed is a single page.
func (f *FeedStrategy) Fetch(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error) {
	feedURL := strings.ReplaceAll(f.cfg.URL, "{symbol}", url.QueryEscape(q.Symbol))

	feed, err := retry.Do(ctx, f.opts.Retry, func(ctx context.Context) (*gofeed.Feed, error) {
		return circuitbreaker.Call(f.circuitBreaker, func() (*gofeed.Feed, error) {
			return f.doFetch(ctx, feedURL)
		})
	})
	if err != nil {
		return nil, err
	}

	c := fetch.NewCollector(q)
	for _, it := range feed.Items {
		if c.Add(f.toItem(feed, it)) {
			break
		}
	}
	return c.Items(), nil
}

func (f *FeedStrategy) doFetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = f.opts.UserAgent
	fp.Client = f.opts.Client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			re := &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return nil, fmt.Errorf("%w: %w", fetch.ErrAccessBlocked, re)
			}
			return nil, re
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, fmt.Errorf("%w: %v", fetch.ErrParse, err)
		}
		return nil, err
	}
	return feed, nil
}

func (f *FeedStrategy) toItem(feed *gofeed.Feed, it *gofeed.Item) entity.ContentItem {
	var created time.Time
	switch {
	case it.PublishedParsed != nil:
		created = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		created = *it.UpdatedParsed
	}

	body := it.Content
	if body == "" {
		body = it.Description
	}
	body = htmlToText(body)
	title := strings.TrimSpace(it.Title)
	switch {
	case body == "":
		body = title
	case f.cfg.IncludeTitle && title != "" && !strings.HasPrefix(body, title):
		body = title + "\n" + body
	}

	source := f.cfg.Source
	if it.Author != nil && it.Author.Name != "" && source == "" {
		source = it.Author.Name
	}
	if source == "" {
		source = feed.Title
	}
	return entity.NewContentItem(created, body, source, it.Link)
}
