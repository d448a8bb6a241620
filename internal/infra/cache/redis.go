// Package cache stores recently built reports in Redis so repeated
// dashboard requests within the TTL skip the model calls.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tickermate/internal/domain/entity"
	"tickermate/internal/observability/metrics"
)

const keyPrefix = "report:"

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// Client is the subset of *redis.Client the cache needs.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Connect opens a Redis client for addr, which is either host:port or a
// redis:// or rediss:// URL, and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// ReportCache implements repository.ReportCache on Redis strings holding
// the JSON report.
type ReportCache struct {
	client Client
}

// NewReportCache creates a ReportCache.
func NewReportCache(client Client) *ReportCache {
	return &ReportCache{client: client}
}

// Key returns the cache key of a report, for example "report:TSLA:social:4".
func Key(ticker string, channel entity.Channel, limit int) string {
	return fmt.Sprintf("%s%s:%s:%d", keyPrefix, ticker, channel, limit)
}

// Get returns the cached report. A missing key is a miss, not an error.
func (c *ReportCache) Get(ctx context.Context, ticker string, channel entity.Channel, limit int) (*entity.Report, bool, error) {
	start := time.Now()
	data, err := c.client.Get(ctx, Key(ticker, channel, limit)).Bytes()
	metrics.RecordDBQuery("cache_get", time.Since(start))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached report: %w", err)
	}

	var r entity.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &r, true, nil
}

// Set stores r under its ticker, channel and limit for ttl.
func (c *ReportCache) Set(ctx context.Context, r *entity.Report, limit int, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	start := time.Now()
	err = c.client.Set(ctx, Key(r.Ticker, r.Channel, limit), data, ttl).Err()
	metrics.RecordDBQuery("cache_set", time.Since(start))
	if err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}
