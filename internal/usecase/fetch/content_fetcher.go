package fetch

import (
	"context"
	"errors"
	"log/slog"

	"tickermate/internal/domain/entity"
	"tickermate/internal/observability/metrics"
)

// ContentFetcher extracts the readable text of an article page.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Sentinel errors for content fetching operations.
var (
	// ErrInvalidURL indicates the URL is malformed or not http(s).
	ErrInvalidURL = errors.New("invalid URL or unsupported scheme")

	// ErrPrivateIP indicates the URL resolves to a private address.
	ErrPrivateIP = errors.New("private IP access denied (SSRF prevention)")

	// ErrTooManyRedirects indicates the redirect chain exceeded the configured maximum.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("request timeout")

	// ErrReadabilityFailed indicates no article text could be extracted.
	ErrReadabilityFailed = errors.New("content extraction failed")
)

// enrichingStrategy replaces short item bodies, such as news API snippets,
// with the full article text. Enrichment failures keep the original body.
type enrichingStrategy struct {
	inner     Strategy
	content   ContentFetcher
	threshold int
}

// WithEnrichment wraps s so that items whose body has fewer than threshold
// runes and that carry a URL are expanded through cf.
func WithEnrichment(s Strategy, cf ContentFetcher, threshold int) Strategy {
	if cf == nil || threshold <= 0 {
		return s
	}
	return &enrichingStrategy{inner: s, content: cf, threshold: threshold}
}

func (e *enrichingStrategy) Name() string { return e.inner.Name() }

func (e *enrichingStrategy) Fetch(ctx context.Context, q Query) ([]entity.ContentItem, error) {
	items, err := e.inner.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		if item.URL == "" || len([]rune(item.Body)) >= e.threshold {
			metrics.RecordContentEnrich("skipped")
			continue
		}
		body, err := e.content.FetchContent(ctx, item.URL)
		if err != nil || len([]rune(body)) <= len([]rune(item.Body)) {
			metrics.RecordContentEnrich("failed")
			slog.Debug("keeping source snippet",
				slog.String("strategy", e.inner.Name()),
				slog.String("url", item.URL),
				slog.Any("error", err))
			continue
		}
		metrics.RecordContentEnrich("success")
		items[i] = entity.NewContentItem(item.CreatedAt, body, item.Source, item.URL)
	}
	return items, nil
}
