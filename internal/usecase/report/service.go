// Package report assembles the dashboard report for a ticker: a market
// snapshot, the channel's recent content, and a model-written highlight
// and per-item summaries.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"tickermate/internal/domain/entity"
	"tickermate/internal/infra/marketdata"
	"tickermate/internal/observability/metrics"
	"tickermate/internal/observability/tracing"
	"tickermate/internal/usecase/classify"
	"tickermate/internal/usecase/fetch"
	"tickermate/internal/utils/text"
	"tickermate/internal/utils/timeago"
)

const (
	// DefaultLimit is the number of content items requested when none is given.
	DefaultLimit = 4
	// MaxLimit caps the number of content items per report.
	MaxLimit = 20

	// HighlightWords is the word budget of the first item's summary.
	HighlightWords = 50
	// ItemWords is the word budget of every other summary.
	ItemWords = 15

	// NoMentions is the highlight of a report with no content.
	NoMentions = "No recent mentions."

	notAvailable = "N/A"
)

// Request selects the report to build.
type Request struct {
	Ticker  string
	Channel entity.Channel
	Limit   int
}

// Normalize validates r and fills defaults.
func (r Request) Normalize() (Request, error) {
	t, err := entity.NormalizeTicker(r.Ticker)
	if err != nil {
		return r, err
	}
	r.Ticker = t
	if r.Channel == "" {
		r.Channel = entity.ChannelSocial
	}
	if _, err := entity.ParseChannel(string(r.Channel)); err != nil {
		return r, err
	}
	switch {
	case r.Limit == 0:
		r.Limit = DefaultLimit
	case r.Limit < 0 || r.Limit > MaxLimit:
		return r, &entity.ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", MaxLimit)}
	}
	return r, nil
}

// ContentSource returns up to q.Limit items for a channel. *fetch.Fetcher implements it.
type ContentSource interface {
	Fetch(ctx context.Context, q fetch.Query) []entity.ContentItem
}

// Service builds reports.
type Service struct {
	quotes     marketdata.Provider
	sources    map[entity.Channel]ContentSource
	classifier *classify.Classifier
	ages       *timeago.Formatter
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for relative ages and GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.ages = &timeago.Formatter{Now: now, Layouts: timeago.DefaultLayouts}
	}
}

// NewService creates a Service. The classifier's template is replaced per channel.
func NewService(quotes marketdata.Provider, sources map[entity.Channel]ContentSource, classifier *classify.Classifier, opts ...Option) *Service {
	s := &Service{
		quotes:     quotes,
		sources:    sources,
		classifier: classifier,
		ages:       timeago.New(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildReport fetches the snapshot and content for req and summarizes the
// content. The first item becomes the highlight, the rest become items.
// Content is classified one item at a time, in discovery order.
//
// A failing quote provider degrades to a null price. With no content the
// report says NoMentions and no model is called. With content but no model
// credential BuildReport returns a *entity.ConfigurationError.
func (s *Service) BuildReport(ctx context.Context, req Request) (rep *entity.Report, err error) {
	req, err = req.Normalize()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "report.build",
		attribute.String("ticker", req.Ticker),
		attribute.String("channel", string(req.Channel)))
	defer func() {
		metrics.RecordReportBuilt(string(req.Channel), err == nil, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	snap := s.snapshot(ctx, req.Ticker)
	rep = &entity.Report{
		Ticker:      req.Ticker,
		Channel:     req.Channel,
		Name:        orNA(snap.Name),
		Sector:      orNA(snap.Sector),
		Price:       formatPrice(snap.Price),
		Change:      formatChange(snap.ChangePct),
		Items:       []entity.ReportItem{},
		GeneratedAt: s.now().UTC(),
	}

	items := s.content(ctx, req)
	span.SetAttributes(attribute.Int("items", len(items)))
	if len(items) == 0 {
		rep.Highlight = NoMentions
		return rep, nil
	}

	if s.classifier == nil {
		return nil, entity.MissingCredential("LLM_PROVIDER")
	}
	classifier := s.classifier.WithTemplate(classify.TemplateFor(req.Channel))
	for i, item := range items {
		words := ItemWords
		if i == 0 {
			words = HighlightWords
		}

		c, cerr := classifier.Classify(ctx, item.Body, words)
		if cerr != nil {
			var cfgErr *entity.ConfigurationError
			if errors.As(cerr, &cfgErr) {
				return nil, cfgErr
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("build report %s: %w", req.Ticker, ctx.Err())
			}
			slog.WarnContext(ctx, "classification failed, keeping item without summary",
				slog.String("ticker", req.Ticker),
				slog.Int("index", i),
				slog.Any("error", cerr))
		}

		summary := text.Normalize(c.Summary)
		if i == 0 {
			rep.Highlight = summary
			continue
		}
		rep.Items = append(rep.Items, entity.ReportItem{
			TimeAgo:   s.ages.Since(item.CreatedAt),
			Source:    item.Source,
			Sentiment: string(c.Sentiment),
			Summary:   summary,
		})
	}
	return rep, nil
}

func (s *Service) snapshot(ctx context.Context, ticker string) entity.MarketSnapshot {
	if s.quotes == nil {
		return entity.UnavailableSnapshot()
	}
	q, err := s.quotes.GetSnapshot(ctx, ticker)
	if err != nil {
		slog.WarnContext(ctx, "market snapshot unavailable, using empty snapshot",
			slog.String("ticker", ticker),
			slog.Any("error", err))
		return entity.UnavailableSnapshot()
	}
	return q.Snapshot()
}

func (s *Service) content(ctx context.Context, req Request) []entity.ContentItem {
	src, ok := s.sources[req.Channel]
	if !ok || src == nil {
		slog.WarnContext(ctx, "no content source for channel", slog.String("channel", string(req.Channel)))
		return nil
	}
	q := fetch.Query{Symbol: req.Ticker, Limit: req.Limit}
	if req.Channel == entity.ChannelSocial {
		ticker := req.Ticker
		q.Match = func(item entity.ContentItem) bool {
			return entity.MentionsTicker(item.Body, ticker)
		}
	}
	return src.Fetch(ctx, q)
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}

func formatPrice(p *float64) *string {
	if p == nil {
		return nil
	}
	v := decimal.NewFromFloat(*p).StringFixed(2)
	return &v
}

func formatChange(pct float64) string {
	return decimal.NewFromFloat(pct).StringFixed(2) + "%"
}
