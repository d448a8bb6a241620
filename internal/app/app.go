// Package app wires configuration into the report use case and its
// optional cache and archive. The API server, the worker and the CLI all
// build their dependencies here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"tickermate/internal/config"
	"tickermate/internal/domain/entity"
	"tickermate/internal/infra/adapter/persistence/postgres"
	"tickermate/internal/infra/cache"
	"tickermate/internal/infra/db"
	"tickermate/internal/infra/fetcher"
	"tickermate/internal/infra/llm"
	"tickermate/internal/infra/marketdata"
	"tickermate/internal/infra/scraper"
	"tickermate/internal/repository"
	"tickermate/internal/usecase/classify"
	"tickermate/internal/usecase/fetch"
	"tickermate/internal/usecase/report"
)

// Options select the optional backends.
type Options struct {
	// UseCache connects to REDIS_URL when it is set.
	UseCache bool
	// UseArchive connects to DATABASE_URL when it is set and migrates it.
	UseArchive bool
}

// App holds the built dependency graph.
type App struct {
	Service *report.Service
	Reports *report.Reports
	// Archive is nil when no database is configured.
	Archive *postgres.ReportRepo

	db    *sql.DB
	redis *redis.Client
}

// Build constructs the App. An unreachable cache is logged and skipped;
// an unreachable database is an error because history was requested.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	completer, err := llm.New(cfg.LLM.Settings)
	if err != nil {
		return nil, &entity.ConfigurationError{Setting: "LLM_PROVIDER", Err: err}
	}
	classifier := classify.New(completer, classify.TemplateFor(entity.ChannelSocial), cfg.ClassifierConfig())

	var content fetch.ContentFetcher
	sources := cfg.Sources
	if cfg.Enrichment.Enabled {
		content = fetcher.NewReadabilityFetcher(cfg.Enrichment)
		if sources.News.EnrichBelow == 0 {
			sources.News.EnrichBelow = cfg.Enrichment.Threshold
		}
	}
	fetchers, err := scraper.Factory{
		Sources: sources,
		HTTP:    scraper.DefaultHTTPOptions(),
		Content: content,
	}.Fetchers()
	if err != nil {
		return nil, fmt.Errorf("build content strategies: %w", err)
	}
	channels := make(map[entity.Channel]report.ContentSource, len(fetchers))
	for ch, f := range fetchers {
		channels[ch] = f
		slog.Debug("content strategies", slog.String("channel", string(ch)), slog.Any("order", f.Strategies()))
	}

	a := &App{
		Service: report.NewService(marketdata.NewYahoo(marketdata.YahooConfig{}), channels, classifier),
	}

	var reportCache repository.ReportCache
	if opts.UseCache && cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("report cache disabled", slog.Any("error", err))
		} else {
			a.redis = client
			reportCache = cache.NewReportCache(client)
		}
	}

	var archive repository.ReportRepository
	if opts.UseArchive && cfg.DatabaseURL != "" {
		database, err := db.Open(ctx, cfg.DatabaseURL, db.ConnectionConfigFromEnv())
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := db.MigrateUp(ctx, database); err != nil {
			_ = database.Close()
			a.Close()
			return nil, err
		}
		a.db = database
		a.Archive = postgres.NewReportRepo(database)
		archive = a.Archive
	}

	a.Reports = report.NewReports(a.Service, reportCache, archive, cfg.CacheTTL)
	return a, nil
}

// DatabaseCheck pings the archive database. It is nil without a database.
func (a *App) DatabaseCheck() func(context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext
}

// CacheCheck pings Redis. It is nil without a cache.
func (a *App) CacheCheck() func(context.Context) error {
	if a.redis == nil {
		return nil
	}
	return func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
