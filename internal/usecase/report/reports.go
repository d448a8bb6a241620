package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tickermate/internal/domain/entity"
	"tickermate/internal/observability/metrics"
	"tickermate/internal/repository"
)

// ErrHistoryDisabled is returned by History when no archive is configured.
var ErrHistoryDisabled = errors.New("report history is not enabled")

// Builder builds one report. *Service implements it.
type Builder interface {
	BuildReport(ctx context.Context, req Request) (*entity.Report, error)
}

// Reports serves reports through an optional cache and records every
// newly built report in an optional archive.
type Reports struct {
	builder Builder
	cache   repository.ReportCache
	archive repository.ReportRepository
	ttl     time.Duration
}

// NewReports wraps builder. cache and archive may be nil.
func NewReports(builder Builder, cache repository.ReportCache, archive repository.ReportRepository, ttl time.Duration) *Reports {
	return &Reports{builder: builder, cache: cache, archive: archive, ttl: ttl}
}

// Get returns a cached report when one is fresh, otherwise builds one.
// Cache failures are logged and treated as misses.
func (r *Reports) Get(ctx context.Context, req Request) (*entity.Report, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	if r.cache != nil && r.ttl > 0 {
		rep, ok, err := r.cache.Get(ctx, req.Ticker, req.Channel, req.Limit)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			slog.WarnContext(ctx, "report cache lookup failed",
				slog.String("ticker", req.Ticker),
				slog.Any("error", err))
		case ok:
			metrics.RecordCacheLookup("hit")
			return rep, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}
	return r.Refresh(ctx, req)
}

// Refresh builds a new report and stores it in the cache and archive.
func (r *Reports) Refresh(ctx context.Context, req Request) (*entity.Report, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	rep, err := r.builder.BuildReport(ctx, req)
	if err != nil {
		return nil, err
	}

	if r.cache != nil && r.ttl > 0 {
		if err := r.cache.Set(ctx, rep, req.Limit, r.ttl); err != nil {
			slog.WarnContext(ctx, "failed to cache report",
				slog.String("ticker", rep.Ticker),
				slog.Any("error", err))
		}
	}
	if r.archive != nil {
		if _, err := r.archive.Save(ctx, rep); err != nil {
			slog.WarnContext(ctx, "failed to archive report",
				slog.String("ticker", rep.Ticker),
				slog.Any("error", err))
		}
	}
	return rep, nil
}

// History returns up to limit archived reports for ticker, newest first.
func (r *Reports) History(ctx context.Context, ticker string, limit int) ([]repository.ArchivedReport, error) {
	if r.archive == nil {
		return nil, ErrHistoryDisabled
	}
	t, err := entity.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out, err := r.archive.ListByTicker(ctx, t, limit)
	if err != nil {
		return nil, fmt.Errorf("list report history: %w", err)
	}
	return out, nil
}
