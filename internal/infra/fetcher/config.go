package fetcher

import (
	"fmt"
	"time"

	pkgconfig "tickermate/internal/pkg/config"
)

// ContentFetchConfig controls article enrichment for short news snippets.
type ContentFetchConfig struct {
	// Enabled turns enrichment on. When false, source snippets are classified as-is.
	Enabled bool

	// Threshold is the snippet length, in runes, below which the full article is fetched.
	Threshold int

	// Timeout bounds a single article request.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to loopback, private or link-local addresses.
	DenyPrivateIPs bool

	// UserAgent is sent with every article request.
	UserAgent string
}

// DefaultConfig returns the default enrichment configuration.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Threshold:      280,
		Timeout:        10 * time.Second,
		MaxBodySize:    5 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "Mozilla/5.0 (TickerMateBot/1.3)",
	}
}

// Validate checks that the configuration is usable.
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads CONTENT_ENRICH_* variables over DefaultConfig and
// validates the result. Unparseable values keep their default and are
// returned as fallbacks.
func LoadConfigFromEnv() (ContentFetchConfig, []pkgconfig.Fallback, error) {
	def := DefaultConfig()
	enabled := pkgconfig.Bool("CONTENT_ENRICH_ENABLED", def.Enabled)
	threshold := pkgconfig.Int("CONTENT_ENRICH_THRESHOLD", def.Threshold, nil)
	timeout := pkgconfig.Duration("CONTENT_ENRICH_TIMEOUT", def.Timeout, nil)
	maxBody := pkgconfig.Int("CONTENT_ENRICH_MAX_BODY_SIZE", int(def.MaxBodySize), nil)
	redirects := pkgconfig.Int("CONTENT_ENRICH_MAX_REDIRECTS", def.MaxRedirects, nil)
	denyPrivate := pkgconfig.Bool("CONTENT_ENRICH_DENY_PRIVATE_IPS", def.DenyPrivateIPs)

	cfg := ContentFetchConfig{
		Enabled:        enabled.Value,
		Threshold:      threshold.Value,
		Timeout:        timeout.Value,
		MaxBodySize:    int64(maxBody.Value),
		MaxRedirects:   redirects.Value,
		DenyPrivateIPs: denyPrivate.Value,
		UserAgent:      pkgconfig.String("HTTP_USER_AGENT", def.UserAgent),
	}
	fallbacks := pkgconfig.Fallbacks(enabled, threshold, timeout, maxBody, redirects, denyPrivate)
	if err := cfg.Validate(); err != nil {
		return cfg, fallbacks, fmt.Errorf("content enrichment configuration: %w", err)
	}
	return cfg, fallbacks, nil
}
