package db

import (
	"context"
	"database/sql"
	"fmt"
)

var upStatements = []string{
	`CREATE TABLE IF NOT EXISTS reports (
    id           BIGSERIAL PRIMARY KEY,
    ticker       VARCHAR(10) NOT NULL,
    channel      VARCHAR(16) NOT NULL,
    highlight    TEXT NOT NULL DEFAULT '',
    payload      JSONB NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_ticker_generated_at ON reports(ticker, generated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_ticker_channel_generated_at ON reports(ticker, channel, generated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at)`,
}

var downStatements = []string{
	`DROP INDEX IF EXISTS idx_reports_generated_at`,
	`DROP INDEX IF EXISTS idx_reports_ticker_channel_generated_at`,
	`DROP INDEX IF EXISTS idx_reports_ticker_generated_at`,
	`DROP TABLE IF EXISTS reports`,
}

// MigrateUp creates the reports table and its indexes. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	return exec(ctx, db, "migrate up", upStatements)
}

// MigrateDown drops the reports table. Archived reports are lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	return exec(ctx, db, "migrate down", downStatements)
}

func exec(ctx context.Context, db *sql.DB, op string, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: statement %d: %w", op, i+1, err)
		}
	}
	return nil
}
