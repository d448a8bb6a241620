package fetch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tickermate/internal/domain/entity"
	"tickermate/internal/observability/metrics"
	"tickermate/internal/observability/tracing"
)

// Outcome is the result of one strategy attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeError   Outcome = "error"
)

// Attempt records what one strategy did during a Fetch.
type Attempt struct {
	Strategy string
	Outcome  Outcome
	Items    int
	Err      *RetrievalError
	Duration time.Duration
}

// Fetcher tries its strategies in order and returns the first non-empty result.
type Fetcher struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher over strategies, tried in the given order.
func NewFetcher(strategies ...Strategy) *Fetcher {
	return &Fetcher{strategies: strategies, logger: slog.Default()}
}

// WithLogger sets the logger used for attempt records.
func (f *Fetcher) WithLogger(logger *slog.Logger) *Fetcher {
	f.logger = logger
	return f
}

// Strategies returns the strategy names in order.
func (f *Fetcher) Strategies() []string {
	names := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		names[i] = s.Name()
	}
	return names
}

// Fetch returns up to q.Limit items from the first strategy that yields any.
// Strategy failures are recorded and skipped; if every strategy fails or
// comes back empty the result is empty. Fetch never returns an error.
func (f *Fetcher) Fetch(ctx context.Context, q Query) []entity.ContentItem {
	items, _ := f.FetchDetailed(ctx, q)
	return items
}

// FetchDetailed is Fetch plus the record of every strategy attempted.
func (f *Fetcher) FetchDetailed(ctx context.Context, q Query) ([]entity.ContentItem, []Attempt) {
	if q.Limit <= 0 {
		return []entity.ContentItem{}, nil
	}

	attempts := make([]Attempt, 0, len(f.strategies))
	for _, s := range f.strategies {
		if ctx.Err() != nil {
			f.logger.Warn("fetch cancelled before next strategy",
				slog.String("strategy", s.Name()),
				slog.Any("error", ctx.Err()))
			break
		}

		a, items := f.try(ctx, s, q)
		attempts = append(attempts, a)
		if a.Outcome == OutcomeSuccess {
			if len(items) > q.Limit {
				items = items[:q.Limit]
			}
			return items, attempts
		}
	}

	f.logger.Info("no strategy returned content",
		slog.String("symbol", q.Symbol),
		slog.Int("strategies", len(f.strategies)))
	return []entity.ContentItem{}, attempts
}

func (f *Fetcher) try(ctx context.Context, s Strategy, q Query) (Attempt, []entity.ContentItem) {
	name := s.Name()
	ctx, span := tracing.StartSpan(ctx, "fetch.strategy",
		attribute.String("strategy", name),
		attribute.String("symbol", q.Symbol))

	start := time.Now()
	items, err := s.Fetch(ctx, q)
	a := Attempt{Strategy: name, Duration: time.Since(start)}

	switch {
	case err != nil:
		a.Outcome = OutcomeError
		a.Err = NewRetrievalError(name, err)
		metrics.RecordStrategyError(name, string(a.Err.Kind))
		f.logger.Warn("strategy failed, trying next",
			slog.String("strategy", name),
			slog.String("kind", string(a.Err.Kind)),
			slog.Duration("duration", a.Duration),
			slog.Any("error", err))
	case len(items) == 0:
		a.Outcome = OutcomeEmpty
		f.logger.Info("strategy returned no items, trying next",
			slog.String("strategy", name),
			slog.Duration("duration", a.Duration))
	default:
		a.Outcome = OutcomeSuccess
		a.Items = min(len(items), q.Limit)
		f.logger.Info("strategy succeeded",
			slog.String("strategy", name),
			slog.Int("items", a.Items),
			slog.Duration("duration", a.Duration))
	}

	metrics.RecordStrategyAttempt(name, string(a.Outcome), a.Duration, a.Items)
	if a.Err != nil {
		tracing.EndSpan(span, a.Err)
	} else {
		span.SetAttributes(attribute.Int("items", a.Items))
		tracing.EndSpan(span, nil)
	}
	return a, items
}
