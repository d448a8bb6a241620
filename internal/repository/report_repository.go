package repository

import (
	"context"
	"time"

	"tickermate/internal/domain/entity"
)

// ArchivedReport is a stored report with its row id.
type ArchivedReport struct {
	ID     int64
	Report *entity.Report
}

// ReportRepository keeps the history of built reports.
type ReportRepository interface {
	// Save stores r and returns its id.
	Save(ctx context.Context, r *entity.Report) (int64, error)
	// ListByTicker returns the most recent reports for ticker, newest first.
	ListByTicker(ctx context.Context, ticker string, limit int) ([]ArchivedReport, error)
	// Latest returns the newest report for ticker and channel, or entity.ErrNotFound.
	Latest(ctx context.Context, ticker string, channel entity.Channel) (*entity.Report, error)
	// Prune deletes reports generated before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportCache holds recently built reports for a short time.
type ReportCache interface {
	// Get returns the cached report, or (nil, false, nil) on a miss.
	Get(ctx context.Context, ticker string, channel entity.Channel, limit int) (*entity.Report, bool, error)
	Set(ctx context.Context, r *entity.Report, limit int, ttl time.Duration) error
}
