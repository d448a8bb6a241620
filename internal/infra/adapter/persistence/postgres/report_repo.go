// Package postgres archives built reports in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tickermate/internal/domain/entity"
	"tickermate/internal/observability/metrics"
	"tickermate/internal/repository"
	"tickermate/internal/resilience/circuitbreaker"
	"tickermate/internal/resilience/retry"
)

// ReportRepo stores each report as a JSONB payload next to the columns it
// is queried by.
type ReportRepo struct {
	db      *sql.DB
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
}

// NewReportRepo creates a ReportRepo.
func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{
		db:      db,
		breaker: circuitbreaker.New(circuitbreaker.DBConfig()),
		retry:   retry.DBConfig(),
	}
}

var _ repository.ReportRepository = (*ReportRepo)(nil)

func run[T any](ctx context.Context, repo *ReportRepo, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()
	return retry.Do(ctx, repo.retry, func(ctx context.Context) (T, error) {
		return circuitbreaker.Call(repo.breaker, func() (T, error) {
			return fn(ctx)
		})
	})
}

func (repo *ReportRepo) Save(ctx context.Context, r *entity.Report) (int64, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return 0, fmt.Errorf("Save: marshal report: %w", err)
	}
	const query = `
INSERT INTO reports (ticker, channel, highlight, payload, generated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	id, err := run(ctx, repo, "report_save", func(ctx context.Context) (int64, error) {
		var id int64
		err := repo.db.QueryRowContext(ctx, query,
			r.Ticker, string(r.Channel), r.Highlight, payload, r.GeneratedAt).Scan(&id)
		return id, err
	})
	if err != nil {
		return 0, fmt.Errorf("Save: %w", err)
	}
	return id, nil
}

func (repo *ReportRepo) ListByTicker(ctx context.Context, ticker string, limit int) ([]repository.ArchivedReport, error) {
	const query = `
SELECT id, payload
FROM reports
WHERE ticker = $1
ORDER BY generated_at DESC, id DESC
LIMIT $2`
	out, err := run(ctx, repo, "report_list", func(ctx context.Context) ([]repository.ArchivedReport, error) {
		rows, err := repo.db.QueryContext(ctx, query, ticker, limit)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()

		var list []repository.ArchivedReport
		for rows.Next() {
			var id int64
			var payload []byte
			if err := rows.Scan(&id, &payload); err != nil {
				return nil, err
			}
			r, err := decode(payload)
			if err != nil {
				return nil, retry.Permanent(fmt.Errorf("report %d: %w", id, err))
			}
			list = append(list, repository.ArchivedReport{ID: id, Report: r})
		}
		return list, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("ListByTicker: %w", err)
	}
	return out, nil
}

func (repo *ReportRepo) Latest(ctx context.Context, ticker string, channel entity.Channel) (*entity.Report, error) {
	const query = `
SELECT payload
FROM reports
WHERE ticker = $1 AND channel = $2
ORDER BY generated_at DESC, id DESC
LIMIT 1`
	payload, err := run(ctx, repo, "report_latest", func(ctx context.Context) ([]byte, error) {
		var payload []byte
		err := repo.db.QueryRowContext(ctx, query, ticker, string(channel)).Scan(&payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return payload, err
	})
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("Latest: %s/%s: %w", ticker, channel, entity.ErrNotFound)
	}
	r, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("Latest: %w", err)
	}
	return r, nil
}

func (repo *ReportRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM reports WHERE generated_at < $1`
	n, err := run(ctx, repo, "report_prune", func(ctx context.Context) (int64, error) {
		res, err := repo.db.ExecContext(ctx, query, cutoff)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		return 0, fmt.Errorf("Prune: %w", err)
	}
	return n, nil
}

func decode(payload []byte) (*entity.Report, error) {
	var r entity.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &r, nil
}
