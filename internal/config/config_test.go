package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/infra/llm"
	"tickermate/internal/infra/scraper"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODEL", "REDIS_URL", "DATABASE_URL", "STRATEGY_CONFIG_PATH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.OpenAIKey)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.InDelta(t, 0.1, cfg.TracingSampleRatio, 1e-9)
	assert.Empty(t, cfg.Fallbacks)
	assert.Equal(t, scraper.DefaultSources().Social.Order, cfg.Sources.Social.Order)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("REPORT_CACHE_TTL", "2m")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/reports")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dash.example.com, http://localhost:3000")
	t.Setenv("MARKETAUX_API_KEY", "mx")
	t.Setenv("SOCIAL_COOKIE", "sid=1")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("SOCIAL_ACCOUNT_ID", "1077")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.OpenAIKey)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, []string{"https://dash.example.com", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "mx", cfg.Sources.News.API.APIKey)
	assert.Equal(t, "sid=1", cfg.Sources.Social.Browser.Cookie)
	assert.Equal(t, "/usr/bin/chromium", cfg.Sources.Social.Browser.ExecPath)
	assert.Equal(t, "1077", cfg.Sources.Social.StatusAPI.AccountID)
}

func TestLoad_SocialBaseURLRewritesEveryStrategy(t *testing.T) {
	t.Setenv("SOCIAL_BASE_URL", "https://social.example.com/")
	t.Setenv("SOCIAL_ACCOUNT", "someone")

	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.Sources.Social
	assert.Equal(t, "https://social.example.com", s.StatusAPI.BaseURL)
	assert.Equal(t, "someone", s.StatusAPI.Account)
	assert.Equal(t, "https://social.example.com/@someone.rss", s.Feed.URL)
	assert.Equal(t, "https://social.example.com/@someone", s.Browser.URL)
	assert.Equal(t, "https://social.example.com/@someone", s.HTML.URL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REPORT_CACHE_TTL", "soon")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.InDelta(t, 5.0, cfg.RateLimit.RequestsPerSecond, 1e-9)
	keys := make([]string, 0, len(cfg.Fallbacks))
	for _, f := range cfg.Fallbacks {
		keys = append(keys, f.Key)
	}
	assert.ElementsMatch(t, []string{"REPORT_CACHE_TTL", "RATE_LIMIT_RPS"}, keys)
}

func TestLoad_UnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
}

func TestLoad_BadCORSOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "dash.example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestLoad_StrategyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("social:\n  order: [feed, raw-html]\n"), 0o600))
	t.Setenv("STRATEGY_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{scraper.StrategyFeed, scraper.StrategyRawHTML}, cfg.Sources.Social.Order)
}

func TestLoad_MissingStrategyFile(t *testing.T) {
	t.Setenv("STRATEGY_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestClassifierConfig(t *testing.T) {
	t.Run("openai keeps configured models", func(t *testing.T) {
		cfg := &Config{LLM: LLMConfig{Settings: llm.Settings{Provider: llm.ProviderOpenAI}, Model: "gpt-4o", FallbackModel: "gpt-3.5-turbo"}}
		got := cfg.ClassifierConfig()
		assert.Equal(t, "gpt-4o", got.Model)
		assert.Equal(t, "gpt-3.5-turbo", got.FallbackModel)
	})

	t.Run("claude replaces the openai default", func(t *testing.T) {
		cfg := &Config{LLM: LLMConfig{Settings: llm.Settings{Provider: llm.ProviderClaude}, Model: "gpt-4o-mini", FallbackModel: "gpt-3.5-turbo"}}
		got := cfg.ClassifierConfig()
		assert.Equal(t, llm.DefaultClaudeModel, got.Model)
		assert.Empty(t, got.FallbackModel)
	})

	t.Run("claude keeps configured models", func(t *testing.T) {
		cfg := &Config{LLM: LLMConfig{Settings: llm.Settings{Provider: llm.ProviderClaude}, Model: "claude-sonnet-4-5", FallbackModel: "claude-3-5-haiku-latest"}}
		got := cfg.ClassifierConfig()
		assert.Equal(t, "claude-sonnet-4-5", got.Model)
		assert.Equal(t, "claude-3-5-haiku-latest", got.FallbackModel)
	})
}
