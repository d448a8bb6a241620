// Package prewarm rebuilds the reports of a watchlist ahead of dashboard
// requests so that most page loads are served from the cache.
package prewarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tickermate/internal/domain/entity"
	"tickermate/internal/usecase/report"
)

// Refresher rebuilds and stores one report. *report.Reports implements it.
type Refresher interface {
	Refresh(ctx context.Context, req report.Request) (*entity.Report, error)
}

// Pruner deletes archived reports older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Notifier publishes a freshly built report.
type Notifier interface {
	NotifyReport(ctx context.Context, rep *entity.Report) error
}

// Options configure a Job.
type Options struct {
	Tickers     []string
	Channels    []entity.Channel
	Limit       int
	Concurrency int
	// Retention prunes the archive after each run. Zero disables pruning.
	Retention time.Duration
	// OnReport is called after every report attempt.
	OnReport func(ticker string, ch entity.Channel, err error)
	// Notifier receives every built report. Delivery failures are logged only.
	Notifier Notifier
}

// Stats summarizes one run.
type Stats struct {
	Built    int64
	Failed   int64
	Pruned   int64
	Notified int64
	Duration time.Duration
}

// Job prewarms every ticker and channel combination.
type Job struct {
	reports Refresher
	pruner  Pruner
	opts    Options
	now     func() time.Time
}

// NewJob creates a Job. pruner may be nil.
func NewJob(reports Refresher, pruner Pruner, opts Options) *Job {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Job{reports: reports, pruner: pruner, opts: opts, now: time.Now}
}

// Run builds every report with at most Concurrency in flight. Individual
// failures are counted and logged. Run returns an error only when ctx ends
// before all reports were attempted.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(j.opts.Concurrency)

	for _, ticker := range j.opts.Tickers {
		for _, ch := range j.opts.Channels {
			eg.Go(func() error {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				rep, err := j.reports.Refresh(egCtx, report.Request{Ticker: ticker, Channel: ch, Limit: j.opts.Limit})
				if j.opts.OnReport != nil {
					j.opts.OnReport(ticker, ch, err)
				}
				if err != nil {
					atomic.AddInt64(&stats.Failed, 1)
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return err
					}
					slog.WarnContext(egCtx, "prewarm report failed",
						slog.String("ticker", ticker),
						slog.String("channel", string(ch)),
						slog.Any("error", err))
					return nil
				}
				atomic.AddInt64(&stats.Built, 1)
				if j.opts.Notifier != nil {
					if err := j.opts.Notifier.NotifyReport(egCtx, rep); err != nil {
						slog.WarnContext(egCtx, "report notification failed",
							slog.String("ticker", ticker),
							slog.Any("error", err))
					} else {
						atomic.AddInt64(&stats.Notified, 1)
					}
				}
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("prewarm interrupted: %w", err)
	}

	if j.pruner != nil && j.opts.Retention > 0 {
		n, err := j.pruner.Prune(ctx, j.now().Add(-j.opts.Retention))
		if err != nil {
			slog.WarnContext(ctx, "archive prune failed", slog.Any("error", err))
		} else {
			stats.Pruned = n
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
