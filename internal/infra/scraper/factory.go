package scraper

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"tickermate/internal/domain/entity"
	"tickermate/internal/usecase/fetch"
)

// Strategy names accepted in an order list.
const (
	StrategyStatusAPI    = "status-api"
	StrategyFeed         = "feed"
	StrategyBrowser      = "browser"
	StrategyRawHTML      = "raw-html"
	StrategyNewsAPI      = "news-api"
	StrategyHeadlineFeed = "headline-feed"
	StrategyStream       = "stream"
)

// SourcesConfig describes every channel's strategies and their order.
// It is read from the optional strategy YAML file on top of DefaultSources.
type SourcesConfig struct {
	Social SocialSources `yaml:"social"`
	News   NewsSources   `yaml:"news"`
	Stream StreamSources `yaml:"stream"`
}

// SocialSources configures the social profile channel.
type SocialSources struct {
	Order     []string        `yaml:"order"`
	StatusAPI StatusAPIConfig `yaml:"status_api"`
	Feed      FeedConfig      `yaml:"feed"`
	Browser   BrowserConfig   `yaml:"browser"`
	HTML      HTMLConfig      `yaml:"html"`
}

// NewsSources configures the news channel.
type NewsSources struct {
	Order     []string      `yaml:"order"`
	API       NewsAPIConfig `yaml:"api"`
	Headlines FeedConfig    `yaml:"headlines"`
	// EnrichBelow replaces article bodies shorter than this many runes
	// with the readable page text. Zero disables enrichment.
	EnrichBelow int `yaml:"enrich_below"`
}

// StreamSources configures the message stream channel.
type StreamSources struct {
	Order  []string     `yaml:"order"`
	Stream StreamConfig `yaml:"stream"`
}

// DefaultSources targets the Truth Social profile of @realDonaldTrump,
// Marketaux with Yahoo Finance headlines, and StockTwits.
func DefaultSources() SourcesConfig {
	const (
		base    = "https://truthsocial.com"
		account = "realDonaldTrump"
		social  = "Truth Social"
	)
	browser := DefaultBrowserConfig()
	browser.URL = base + "/@" + account
	browser.Source = social

	return SourcesConfig{
		Social: SocialSources{
			Order: []string{StrategyStatusAPI, StrategyFeed, StrategyBrowser, StrategyRawHTML},
			StatusAPI: StatusAPIConfig{
				BaseURL: base,
				Account: account,
				Source:  social,
			},
			Feed: FeedConfig{
				ID:     StrategyFeed,
				URL:    base + "/@" + account + ".rss",
				Source: social,
			},
			Browser: browser,
			HTML: HTMLConfig{
				URL:       base + "/@" + account,
				Source:    social,
				Selectors: DefaultSelectors(),
			},
		},
		News: NewsSources{
			Order: []string{StrategyNewsAPI, StrategyHeadlineFeed},
			API:   NewsAPIConfig{URL: DefaultNewsAPIURL, Language: "en"},
			Headlines: FeedConfig{
				ID:           StrategyHeadlineFeed,
				URL:          "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US",
				Source:       "Yahoo Finance",
				IncludeTitle: true,
			},
			EnrichBelow: 280,
		},
		Stream: StreamSources{
			Order:  []string{StrategyStream},
			Stream: StreamConfig{URL: DefaultStreamURL, Source: "StockTwits"},
		},
	}
}

// LoadSources reads path over DefaultSources. An empty path returns the defaults.
func LoadSources(path string) (SourcesConfig, error) {
	cfg := DefaultSources()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read strategy config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse strategy config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that every order list names known strategies of its channel.
func (c SourcesConfig) Validate() error {
	checks := []struct {
		channel entity.Channel
		order   []string
		allowed []string
	}{
		{entity.ChannelSocial, c.Social.Order, []string{StrategyStatusAPI, StrategyFeed, StrategyBrowser, StrategyRawHTML}},
		{entity.ChannelNews, c.News.Order, []string{StrategyNewsAPI, StrategyHeadlineFeed}},
		{entity.ChannelStream, c.Stream.Order, []string{StrategyStream}},
	}
	for _, chk := range checks {
		seen := map[string]bool{}
		for _, name := range chk.order {
			if !slices.Contains(chk.allowed, name) {
				return fmt.Errorf("channel %s: unknown strategy %q", chk.channel, name)
			}
			if seen[name] {
				return fmt.Errorf("channel %s: strategy %q listed twice", chk.channel, name)
			}
			seen[name] = true
		}
	}
	return nil
}

// Factory builds the strategy chain of each channel.
type Factory struct {
	Sources SourcesConfig
	HTTP    HTTPOptions
	// Content enriches short news bodies; nil disables enrichment.
	Content fetch.ContentFetcher
}

// Strategies returns the channel's strategies in configured order.
func (f Factory) Strategies(ch entity.Channel) ([]fetch.Strategy, error) {
	var order []string
	switch ch {
	case entity.ChannelSocial:
		order = f.Sources.Social.Order
	case entity.ChannelNews:
		order = f.Sources.News.Order
	case entity.ChannelStream:
		order = f.Sources.Stream.Order
	default:
		return nil, fmt.Errorf("unknown channel %q", ch)
	}

	out := make([]fetch.Strategy, 0, len(order))
	for _, name := range order {
		s, err := f.build(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Fetchers builds one Fetcher per channel.
func (f Factory) Fetchers() (map[entity.Channel]*fetch.Fetcher, error) {
	out := make(map[entity.Channel]*fetch.Fetcher, len(entity.Channels))
	for _, ch := range entity.Channels {
		strategies, err := f.Strategies(ch)
		if err != nil {
			return nil, err
		}
		out[ch] = fetch.NewFetcher(strategies...)
	}
	return out, nil
}

func (f Factory) build(name string) (fetch.Strategy, error) {
	src := f.Sources
	switch name {
	case StrategyStatusAPI:
		return NewStatusAPIStrategy(src.Social.StatusAPI, f.HTTP), nil
	case StrategyFeed:
		cfg := src.Social.Feed
		cfg.ID = StrategyFeed
		return NewFeedStrategy(cfg, f.HTTP), nil
	case StrategyBrowser:
		return NewBrowserStrategy(src.Social.Browser), nil
	case StrategyRawHTML:
		return NewHTMLStrategy(src.Social.HTML, f.HTTP), nil
	case StrategyNewsAPI:
		return fetch.WithEnrichment(NewNewsAPIStrategy(src.News.API, f.HTTP), f.Content, src.News.EnrichBelow), nil
	case StrategyHeadlineFeed:
		cfg := src.News.Headlines
		cfg.ID = StrategyHeadlineFeed
		return fetch.WithEnrichment(NewFeedStrategy(cfg, f.HTTP), f.Content, src.News.EnrichBelow), nil
	case StrategyStream:
		return NewStreamStrategy(src.Stream.Stream, f.HTTP), nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}
