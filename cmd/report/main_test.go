package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/config"
	"tickermate/internal/domain/entity"
	"tickermate/internal/infra/llm"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr string
	}{
		{
			name: "ticker only",
			args: []string{"SPX"},
			want: options{ticker: "SPX", maxPosts: 4, channel: entity.ChannelSocial, output: "text"},
		},
		{
			name: "flags after ticker",
			args: []string{"TSLA", "--channel", "news", "--max-posts", "6", "--output", "json"},
			want: options{ticker: "TSLA", maxPosts: 6, channel: entity.ChannelNews, output: "json"},
		},
		{
			name: "flags around ticker",
			args: []string{"--api-key", "sk-test", "NVDA", "--channel=stream"},
			want: options{ticker: "NVDA", apiKey: "sk-test", maxPosts: 4, channel: entity.ChannelStream, output: "text"},
		},
		{name: "missing ticker", args: []string{"--output", "json"}, wantErr: "ticker is required"},
		{name: "two tickers", args: []string{"SPX", "TSLA"}, wantErr: "unexpected arguments: TSLA"},
		{name: "bad channel", args: []string{"SPX", "--channel", "fax"}, wantErr: "unknown channel"},
		{name: "bad output", args: []string{"SPX", "--output", "xml"}, wantErr: "output must be text or json"},
		{name: "unknown flag", args: []string{"SPX", "--verbose"}, wantErr: "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyAPIKey(t *testing.T) {
	cfg := &config.Config{}
	applyAPIKey(cfg, "sk-openai")
	assert.Equal(t, "sk-openai", cfg.LLM.OpenAIKey)

	cfg = &config.Config{}
	cfg.LLM.Provider = llm.ProviderClaude
	applyAPIKey(cfg, "sk-ant-key")
	assert.Equal(t, "sk-ant-key", cfg.LLM.AnthropicKey)
	assert.Empty(t, cfg.LLM.OpenAIKey)

	cfg = &config.Config{}
	cfg.LLM.OpenAIKey = "from-env"
	applyAPIKey(cfg, "")
	assert.Equal(t, "from-env", cfg.LLM.OpenAIKey)
}

func sampleReport() *entity.Report {
	price := "251.40"
	return &entity.Report{
		Ticker:    "TSLA",
		Channel:   entity.ChannelSocial,
		Name:      "Tesla, Inc.",
		Sector:    "Consumer Cyclical",
		Price:     &price,
		Change:    "+1.25%",
		Highlight: "Deliveries beat estimates.",
		Items: []entity.ReportItem{
			{TimeAgo: "2h ago", Sentiment: "Bullish", Summary: "Deliveries beat estimates."},
			{TimeAgo: "1d ago", Source: "Reuters", Sentiment: "Bearish", Summary: "Margins under pressure."},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, write(&buf, sampleReport(), "text"))

	out := buf.String()
	assert.Contains(t, out, "TSLA  Tesla, Inc. (Consumer Cyclical)")
	assert.Contains(t, out, "Price: 251.40  Change: +1.25%")
	assert.Contains(t, out, "[Bullish] 2h ago\n  Deliveries beat estimates.")
	assert.Contains(t, out, "[Bearish] 1d ago Reuters\n  Margins under pressure.")
}

func TestWriteText_NoPrice(t *testing.T) {
	rep := sampleReport()
	rep.Price = nil
	rep.Items = nil

	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, rep))
	assert.Contains(t, buf.String(), "Price: N/A")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, write(&buf, sampleReport(), "json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "TSLA", got["ticker"])
	assert.Equal(t, "251.40", got["price"])
	assert.Len(t, got["items"], 2)
}
