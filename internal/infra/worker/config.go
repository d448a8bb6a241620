// Package worker holds the prewarm worker's configuration, health probes
// and Prometheus metrics.
package worker

import (
	"errors"
	"fmt"
	"time"

	"tickermate/internal/domain/entity"
	"tickermate/internal/pkg/config"
)

// Config controls the scheduled report prewarm.
type Config struct {
	// CronSchedule is a five-field cron expression evaluated in Timezone.
	CronSchedule string
	Timezone     string
	// Watchlist is the tickers prewarmed on every run.
	Watchlist []string
	// Channels are built for every watchlist ticker.
	Channels []entity.Channel
	// Concurrency bounds how many reports are built at once.
	Concurrency int
	// JobTimeout bounds one whole run.
	JobTimeout time.Duration
	// Retention deletes archived reports older than this after each run. Zero keeps everything.
	Retention  time.Duration
	HealthPort int
	// RunOnStart triggers a run immediately instead of waiting for the first tick.
	RunOnStart bool
}

// DefaultConfig refreshes SPX and TSLA social reports every 15 minutes.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "*/15 * * * *",
		Timezone:     "America/New_York",
		Watchlist:    []string{"SPX", "TSLA"},
		Channels:     []entity.Channel{entity.ChannelSocial},
		Concurrency:  4,
		JobTimeout:   10 * time.Minute,
		Retention:    30 * 24 * time.Hour,
		HealthPort:   9091,
		RunOnStart:   true,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if len(c.Watchlist) == 0 {
		errs = append(errs, errors.New("watchlist: at least one ticker is required"))
	}
	for _, t := range c.Watchlist {
		if _, err := entity.NormalizeTicker(t); err != nil {
			errs = append(errs, fmt.Errorf("watchlist: %w", err))
		}
	}
	if len(c.Channels) == 0 {
		errs = append(errs, errors.New("channels: at least one channel is required"))
	}
	for _, ch := range c.Channels {
		if _, err := entity.ParseChannel(string(ch)); err != nil {
			errs = append(errs, fmt.Errorf("channels: %w", err))
		}
	}
	if err := config.ValidateIntRange(c.Concurrency, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("concurrency: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.JobTimeout); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if c.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention: must not be negative, got %v", c.Retention))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads CRON_SCHEDULE, WORKER_TIMEZONE, WATCHLIST,
// WORKER_CHANNELS, WORKER_CONCURRENCY, WORKER_JOB_TIMEOUT, REPORT_RETENTION,
// WORKER_HEALTH_PORT and WORKER_RUN_ON_START. Invalid scalar values fall
// back to their defaults and are returned as fallbacks.
func LoadConfigFromEnv() (Config, []config.Fallback, error) {
	def := DefaultConfig()

	schedule := config.StringWith("CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule)
	tz := config.StringWith("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone)
	concurrency := config.Int("WORKER_CONCURRENCY", def.Concurrency, func(n int) error {
		return config.ValidateIntRange(n, 1, 32)
	})
	timeout := config.Duration("WORKER_JOB_TIMEOUT", def.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 2*time.Hour)
	})
	retention := config.Duration("REPORT_RETENTION", def.Retention, nil)
	port := config.Int("WORKER_HEALTH_PORT", def.HealthPort, func(n int) error {
		return config.ValidateIntRange(n, 1024, 65535)
	})
	runOnStart := config.Bool("WORKER_RUN_ON_START", def.RunOnStart)

	var channels []entity.Channel
	for _, name := range config.List("WORKER_CHANNELS", nil) {
		channels = append(channels, entity.Channel(name))
	}
	if len(channels) == 0 {
		channels = def.Channels
	}

	cfg := Config{
		CronSchedule: schedule.Value,
		Timezone:     tz.Value,
		Watchlist:    config.List("WATCHLIST", def.Watchlist),
		Channels:     channels,
		Concurrency:  concurrency.Value,
		JobTimeout:   timeout.Value,
		Retention:    retention.Value,
		HealthPort:   port.Value,
		RunOnStart:   runOnStart.Value,
	}
	fallbacks := config.Fallbacks(schedule, tz, concurrency, timeout, retention, port, runOnStart)
	if err := cfg.Validate(); err != nil {
		return cfg, fallbacks, fmt.Errorf("worker configuration: %w", err)
	}
	return cfg, fallbacks, nil
}
