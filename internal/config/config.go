// Package config assembles the application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tickermate/internal/infra/fetcher"
	"tickermate/internal/infra/llm"
	"tickermate/internal/infra/scraper"
	pkgconfig "tickermate/internal/pkg/config"
	"tickermate/internal/usecase/classify"
)

// Defaults.
const (
	DefaultHTTPAddr = ":8080"
	DefaultCacheTTL = 10 * time.Minute
)

// LLMConfig selects the completion provider and models.
type LLMConfig struct {
	llm.Settings
	Model         string
	FallbackModel string
}

// RateLimitConfig bounds requests per client IP on the API.
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerSecond is the sustained rate per IP.
	RequestsPerSecond float64
	Burst             int
}

// Config holds every setting shared by the API server and the CLI.
type Config struct {
	Version  string
	LogLevel string
	HTTPAddr string

	CORSAllowedOrigins []string
	RateLimit          RateLimitConfig

	LLM        LLMConfig
	Sources    scraper.SourcesConfig
	Enrichment fetcher.ContentFetchConfig

	// RedisURL enables the report cache. Empty disables it.
	RedisURL string
	// DatabaseURL enables the report archive. Empty disables it.
	DatabaseURL string
	CacheTTL    time.Duration

	// TracingSampleRatio is the fraction of traces kept.
	TracingSampleRatio float64

	// Fallbacks lists settings that held unusable values.
	Fallbacks []pkgconfig.Fallback
}

// Load reads the environment. Unusable numeric or duration values fall back
// to defaults and are listed in Config.Fallbacks. Load fails only when the
// strategy file cannot be read or the result does not validate.
func Load() (*Config, error) {
	sources, err := scraper.LoadSources(pkgconfig.String("STRATEGY_CONFIG_PATH", ""))
	if err != nil {
		return nil, err
	}
	applySourceOverrides(&sources)

	enrichment, enrichFallbacks, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	def := classify.DefaultConfig()
	llmTimeout := pkgconfig.Duration("LLM_TIMEOUT", 60*time.Second, pkgconfig.ValidatePositiveDuration)
	cacheTTL := pkgconfig.Duration("REPORT_CACHE_TTL", DefaultCacheTTL, nil)
	rateEnabled := pkgconfig.Bool("RATE_LIMIT_ENABLED", true)
	rps := pkgconfig.Int("RATE_LIMIT_RPS", 5, func(n int) error { return pkgconfig.ValidateIntRange(n, 1, 1000) })
	burst := pkgconfig.Int("RATE_LIMIT_BURST", 10, func(n int) error { return pkgconfig.ValidateIntRange(n, 1, 1000) })
	samplePct := pkgconfig.Int("TRACING_SAMPLE_PERCENT", 10, func(n int) error { return pkgconfig.ValidateIntRange(n, 0, 100) })

	cfg := &Config{
		Version:            pkgconfig.String("VERSION", "dev"),
		LogLevel:           pkgconfig.String("LOG_LEVEL", "info"),
		HTTPAddr:           pkgconfig.String("HTTP_ADDR", DefaultHTTPAddr),
		CORSAllowedOrigins: pkgconfig.List("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimit: RateLimitConfig{
			Enabled:           rateEnabled.Value,
			RequestsPerSecond: float64(rps.Value),
			Burst:             burst.Value,
		},
		LLM: LLMConfig{
			Settings: llm.Settings{
				Provider:     strings.ToLower(pkgconfig.String("LLM_PROVIDER", llm.ProviderOpenAI)),
				OpenAIKey:    pkgconfig.String("OPENAI_API_KEY", ""),
				AnthropicKey: pkgconfig.String("ANTHROPIC_API_KEY", ""),
				BaseURL:      pkgconfig.String("LLM_BASE_URL", ""),
				Timeout:      llmTimeout.Value,
			},
			Model:         pkgconfig.String("LLM_MODEL", def.Model),
			FallbackModel: pkgconfig.String("LLM_FALLBACK_MODEL", def.FallbackModel),
		},
		Sources:            sources,
		Enrichment:         enrichment,
		RedisURL:           pkgconfig.String("REDIS_URL", ""),
		DatabaseURL:        pkgconfig.String("DATABASE_URL", ""),
		CacheTTL:           cacheTTL.Value,
		TracingSampleRatio: float64(samplePct.Value) / 100,
	}
	cfg.Fallbacks = append(enrichFallbacks,
		pkgconfig.Fallbacks(llmTimeout, cacheTTL, rateEnabled, rps, burst, samplePct)...)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applySourceOverrides lays credentials and account settings from the
// environment over the strategy file.
func applySourceOverrides(s *scraper.SourcesConfig) {
	social := &s.Social
	if v := pkgconfig.String("SOCIAL_BASE_URL", ""); v != "" {
		v = strings.TrimRight(v, "/")
		account := pkgconfig.String("SOCIAL_ACCOUNT", social.StatusAPI.Account)
		social.StatusAPI.BaseURL = v
		social.Feed.URL = v + "/@" + account + ".rss"
		social.Browser.URL = v + "/@" + account
		social.HTML.URL = v + "/@" + account
	}
	if v := pkgconfig.String("SOCIAL_ACCOUNT", ""); v != "" {
		social.StatusAPI.Account = v
	}
	social.StatusAPI.AccountID = pkgconfig.String("SOCIAL_ACCOUNT_ID", social.StatusAPI.AccountID)
	social.Browser.Cookie = pkgconfig.String("SOCIAL_COOKIE", social.Browser.Cookie)
	social.Browser.ExecPath = pkgconfig.String("CHROME_PATH", social.Browser.ExecPath)
	s.News.API.APIKey = pkgconfig.String("MARKETAUX_API_KEY", s.News.API.APIKey)
}

// Validate checks the settings that cannot fall back to a default.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderClaude, llm.ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER: %w", pkgconfig.OneOf(llm.ProviderOpenAI, llm.ProviderClaude, llm.ProviderStatic)(c.LLM.Provider)))
	}
	if c.RedisURL != "" && strings.Contains(c.RedisURL, "://") {
		if err := pkgconfig.ValidateURL(c.RedisURL, "redis", "rediss"); err != nil {
			errs = append(errs, fmt.Errorf("REDIS_URL: %w", err))
		}
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			continue
		}
		if err := pkgconfig.ValidateURL(origin, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("CORS_ALLOWED_ORIGINS: %w", err))
		}
	}
	if err := c.Sources.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("strategy config: %w", err))
	}
	return errors.Join(errs...)
}

// ClassifierConfig returns the classifier settings for the configured models.
func (c *Config) ClassifierConfig() classify.Config {
	def := classify.DefaultConfig()
	cfg := def
	cfg.Model = c.LLM.Model
	cfg.FallbackModel = c.LLM.FallbackModel
	if c.LLM.Provider != llm.ProviderClaude {
		return cfg
	}
	// The OpenAI defaults mean LLM_MODEL or LLM_FALLBACK_MODEL was not set.
	if cfg.Model == def.Model {
		cfg.Model = llm.DefaultClaudeModel
	}
	if cfg.FallbackModel == def.FallbackModel {
		cfg.FallbackModel = ""
	}
	return cfg
}
