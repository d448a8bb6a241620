package scraper_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/domain/entity"
	"tickermate/internal/infra/scraper"
)

func TestDefaultSources_Valid(t *testing.T) {
	cfg := scraper.DefaultSources()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"status-api", "feed", "browser", "raw-html"}, cfg.Social.Order)
}

func TestLoadSources_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	yml := `
social:
  order: [raw-html, feed]
  html:
    url: https://mirror.example/@user
    selectors:
      card: article.post
  browser:
    wait_timeout: 5s
news:
  enrich_below: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := scraper.LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"raw-html", "feed"}, cfg.Social.Order)
	assert.Equal(t, "https://mirror.example/@user", cfg.Social.HTML.URL)
	assert.Equal(t, "article.post", cfg.Social.HTML.Selectors.Card)
	assert.Equal(t, "Truth Social", cfg.Social.HTML.Source)
	assert.Equal(t, 5*time.Second, cfg.Social.Browser.WaitTimeout)
	assert.Equal(t, 0, cfg.News.EnrichBelow)
	assert.Equal(t, []string{"news-api", "headline-feed"}, cfg.News.Order)
}

func TestLoadSources_EmptyPath(t *testing.T) {
	cfg, err := scraper.LoadSources("")
	require.NoError(t, err)
	assert.Equal(t, scraper.DefaultSources().Stream, cfg.Stream)
}

func TestLoadSources_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := scraper.LoadSources(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("social: [unclosed"), 0o600))
	_, err = scraper.LoadSources(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("news:\n  order: [browser]\n"), 0o600))
	_, err = scraper.LoadSources(unknown)
	assert.ErrorContains(t, err, `unknown strategy "browser"`)
}

func TestSourcesConfig_ValidateDuplicate(t *testing.T) {
	cfg := scraper.DefaultSources()
	cfg.Stream.Order = []string{"stream", "stream"}
	assert.ErrorContains(t, cfg.Validate(), "listed twice")
}

func TestFactory_StrategiesFollowOrder(t *testing.T) {
	f := scraper.Factory{Sources: scraper.DefaultSources()}

	tests := []struct {
		channel entity.Channel
		want    []string
	}{
		{entity.ChannelSocial, []string{"status-api", "feed", "browser", "raw-html"}},
		{entity.ChannelNews, []string{"news-api", "headline-feed"}},
		{entity.ChannelStream, []string{"stream"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			strategies, err := f.Strategies(tt.channel)
			require.NoError(t, err)
			names := make([]string, len(strategies))
			for i, s := range strategies {
				names[i] = s.Name()
			}
			assert.Equal(t, tt.want, names)
		})
	}

	_, err := f.Strategies(entity.Channel("fax"))
	assert.Error(t, err)
}

func TestFactory_Fetchers(t *testing.T) {
	fetchers, err := scraper.Factory{Sources: scraper.DefaultSources()}.Fetchers()
	require.NoError(t, err)
	require.Len(t, fetchers, len(entity.Channels))
	assert.Equal(t, []string{"stream"}, fetchers[entity.ChannelStream].Strategies())
}
