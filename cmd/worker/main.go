package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"tickermate/internal/app"
	"tickermate/internal/config"
	"tickermate/internal/domain/entity"
	"tickermate/internal/handler/http/respond"
	"tickermate/internal/infra/notifier"
	workerPkg "tickermate/internal/infra/worker"
	"tickermate/internal/observability/logging"
	pkgconfig "tickermate/internal/pkg/config"
	"tickermate/internal/usecase/prewarm"
)

func main() {
	_ = godotenv.Load()
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, workerConfig, notifyConfig := loadConfig(logger)
	workerMetrics := workerPkg.NewMetrics(prometheus.DefaultRegisterer)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	application, err := app.Build(startCtx, cfg, app.Options{UseCache: true, UseArchive: true})
	cancel()
	if err != nil {
		logger.Error("failed to build application", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("failed to close connections", slog.Any("error", err))
		}
	}()

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger, prometheus.DefaultGatherer)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := newPrewarmJob(application, workerConfig, workerMetrics, notifier.New(notifyConfig))
	startCronWorker(ctx, logger, job, workerConfig, workerMetrics, healthServer)
}

// initLogger initializes the JSON logger at LOG_LEVEL and makes it the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads the shared, worker and notification configuration.
// Bad values fall back to defaults and are logged.
func loadConfig(logger *slog.Logger) (*config.Config, workerPkg.Config, notifier.Config) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	workerConfig, workerFallbacks, err := workerPkg.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}

	notifyConfig, notifyFallbacks := notifier.LoadConfigFromEnv()

	fallbacks := append(append(cfg.Fallbacks, workerFallbacks...), notifyFallbacks...)
	for _, f := range fallbacks {
		logger.Warn("configuration fallback applied",
			slog.String("key", f.Key),
			slog.String("reason", f.Reason))
	}
	pkgconfig.NewMetrics(prometheus.DefaultRegisterer, "worker").Record(fallbacks)

	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Any("watchlist", workerConfig.Watchlist),
		slog.Int("concurrency", workerConfig.Concurrency),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Duration("retention", workerConfig.Retention),
		slog.Bool("slack", notifyConfig.SlackWebhookURL != ""),
		slog.Bool("discord", notifyConfig.DiscordWebhookURL != ""))
	return cfg, workerConfig, notifyConfig
}

func newPrewarmJob(a *app.App, cfg workerPkg.Config, metrics *workerPkg.Metrics, n notifier.Notifier) *prewarm.Job {
	var pruner prewarm.Pruner
	if a.Archive != nil && cfg.Retention > 0 {
		pruner = a.Archive
	}
	return prewarm.NewJob(a.Reports, pruner, prewarm.Options{
		Tickers:     cfg.Watchlist,
		Channels:    cfg.Channels,
		Concurrency: cfg.Concurrency,
		Retention:   cfg.Retention,
		OnReport: func(_ string, ch entity.Channel, err error) {
			metrics.RecordReport(string(ch), err == nil)
		},
		Notifier: n,
	})
}

// startCronWorker schedules the prewarm job and blocks until ctx ends.
func startCronWorker(ctx context.Context, logger *slog.Logger, job *prewarm.Job, cfg workerPkg.Config, metrics *workerPkg.Metrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	run := func() { runPrewarmJob(ctx, logger, job, cfg, metrics, healthServer) }
	if _, err := c.AddFunc(cfg.CronSchedule, run); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	if cfg.RunOnStart {
		go run()
	}

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runPrewarmJob executes one prewarm run with timeout and records the outcome.
func runPrewarmJob(ctx context.Context, logger *slog.Logger, job *prewarm.Job, cfg workerPkg.Config, metrics *workerPkg.Metrics, healthServer *workerPkg.HealthServer) {
	started := time.Now()
	logger.Info("prewarm started")

	ctx, cancel := context.WithTimeout(ctx, cfg.JobTimeout)
	defer cancel()

	stats, err := job.Run(ctx)
	metrics.RecordPruned(stats.Pruned)
	healthServer.SetLastRun(workerPkg.RunSummary{
		StartedAt: started,
		Duration:  stats.Duration.String(),
		Built:     int(stats.Built),
		Failed:    int(stats.Failed),
		Pruned:    stats.Pruned,
	})

	if err != nil {
		logger.Error("prewarm failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordRun("failure", time.Since(started).Seconds())
		return
	}
	status := "success"
	if stats.Failed > 0 {
		status = "partial"
	}
	metrics.RecordRun(status, time.Since(started).Seconds())
	logger.Info("prewarm completed",
		slog.Int64("built", stats.Built),
		slog.Int64("failed", stats.Failed),
		slog.Int64("pruned", stats.Pruned),
		slog.Int64("notified", stats.Notified),
		slog.Duration("duration", stats.Duration))
}
