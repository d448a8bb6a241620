package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"tickermate/internal/domain/entity"
	"tickermate/internal/usecase/fetch"
	"tickermate/internal/utils/timeago"
)

// Selectors locate posts on a rendered profile page.
type Selectors struct {
	// Card matches one post container.
	Card string `yaml:"card"`
	// Body matches the post text inside a card.
	Body string `yaml:"body"`
	// Time matches an element with a datetime attribute inside a card.
	Time string `yaml:"time"`
	// Link matches the post permalink inside a card (optional).
	Link string `yaml:"link"`
	// Next matches the "older posts" link on the page (optional).
	Next string `yaml:"next"`
}

// DefaultSelectors match the public profile markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Card: "div.card",
		Body: "div.post-body",
		Time: "time[datetime]",
		Link: "a.status-link",
		Next: "a[rel=next]",
	}
}

func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if s == (Selectors{}) {
		return def
	}
	if s.Card == "" {
		s.Card = def.Card
	}
	if s.Body == "" {
		s.Body = def.Body
	}
	if s.Time == "" {
		s.Time = def.Time
	}
	return s
}

// extractCards returns the posts found in doc, in page order. Cards
// without a body are skipped; cards without a timestamp keep a zero CreatedAt.
func extractCards(doc *goquery.Document, sel Selectors, source string, base *url.URL) []entity.ContentItem {
	var items []entity.ContentItem
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		body := card.Find(sel.Body).First()
		if body.Length() == 0 {
			return
		}
		text := selectionText(body)
		if text == "" {
			return
		}

		var created time.Time
		if dt, ok := card.Find(sel.Time).First().Attr("datetime"); ok {
			if t, err := timeago.ParseTimestamp(dt, nil); err == nil {
				created = t
			}
		}

		link := ""
		if sel.Link != "" {
			if href, ok := card.Find(sel.Link).First().Attr("href"); ok {
				link = resolveURL(base, href)
			}
		}
		items = append(items, entity.NewContentItem(created, text, source, link))
	})
	return items
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// HTMLConfig configures the raw HTML strategy.
type HTMLConfig struct {
	URL       string    `yaml:"url"`
	Source    string    `yaml:"source"`
	Selectors Selectors `yaml:"selectors"`
}

// HTMLStrategy downloads the profile page without running scripts and
// extracts posts with CSS selectors, following the next-page link.
type HTMLStrategy struct {
	cfg HTMLConfig
	src httpSource
}

// NewHTMLStrategy creates the raw HTML strategy.
func NewHTMLStrategy(cfg HTMLConfig, opts HTTPOptions) *HTMLStrategy {
	cfg.Selectors = cfg.Selectors.withDefaults()
	return &HTMLStrategy{cfg: cfg, src: newHTTPSource("raw-html", opts)}
}

// Name returns the strategy identifier.
func (h *HTMLStrategy) Name() string { return "raw-html" }

// Fetch collects matching posts across at most MaxPages pages.
func (h *HTMLStrategy) Fetch(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error) {
	c := fetch.NewCollector(q)
	pageURL := h.cfg.URL
	seen := map[string]bool{}

	for page := 1; page <= h.src.opts.MaxPages && pageURL != "" && !seen[pageURL]; page++ {
		seen[pageURL] = true
		doc, err := h.src.getHTML(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		base, _ := url.Parse(pageURL)

		cards := extractCards(doc, h.cfg.Selectors, h.cfg.Source, base)
		kept := len(c.Items())
		for _, item := range cards {
			if c.Add(item) {
				break
			}
		}
		h.src.logPage(page, len(cards), len(c.Items())-kept)
		if c.Full() || h.cfg.Selectors.Next == "" {
			break
		}

		pageURL = ""
		if href, ok := doc.Find(h.cfg.Selectors.Next).First().Attr("href"); ok {
			pageURL = resolveURL(base, href)
		}
	}
	return c.Items(), nil
}
