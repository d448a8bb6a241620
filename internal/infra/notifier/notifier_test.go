package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/domain/entity"
)

func testReport() *entity.Report {
	price := "251.40"
	return &entity.Report{
		Ticker:    "TSLA",
		Channel:   entity.ChannelSocial,
		Name:      "Tesla, Inc.",
		Price:     &price,
		Change:    "+1.25%",
		Highlight: "Deliveries beat estimates.",
		Items: []entity.ReportItem{
			{Sentiment: "Bullish", Summary: "Deliveries beat estimates."},
			{Sentiment: "Bullish", Summary: "Robotaxi launch."},
			{Sentiment: "Bearish", Summary: "Margins under pressure."},
		},
		GeneratedAt: time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC),
	}
}

func fast(h *webhook) {
	h.baseDelay = time.Millisecond
	h.limiter.SetLimit(1000)
	h.limiter.SetBurst(100)
}

func TestSlack_PostsBlockKitPayload(t *testing.T) {
	var got SlackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	n := NewSlack(srv.URL, time.Second)
	require.NoError(t, n.NotifyReport(context.Background(), testReport()))

	assert.Equal(t, "TSLA 251.40 (+1.25%)", got.Text)
	require.Len(t, got.Blocks, 2)
	assert.Contains(t, got.Blocks[0].Text.Text, "Deliveries beat estimates.")
	assert.Equal(t, "social • 2 bullish, 1 bearish • 2025-01-02T15:00:00Z", got.Blocks[1].Elements[0].Text)
}

func TestDiscord_ColorFollowsHighlight(t *testing.T) {
	var got DiscordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rep := testReport()
	rep.Items[0].Sentiment = "Bearish"
	require.NoError(t, NewDiscord(srv.URL, time.Second).NotifyReport(context.Background(), rep))

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, colorBearish, got.Embeds[0].Color)
	assert.Equal(t, "TSLA 251.40 (+1.25%) Tesla, Inc.", got.Embeds[0].Title)
	assert.Equal(t, "2025-01-02T15:00:00Z", got.Embeds[0].Timestamp)
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlack(srv.URL, time.Second)
	fast(n.hook)
	require.NoError(t, n.NotifyReport(context.Background(), testReport()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewSlack(srv.URL, time.Second)
	fast(n.hook)
	err := n.NotifyReport(context.Background(), testReport())

	var ce *ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusForbidden, ce.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_RateLimitUsesRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"slow down","retry_after":0.01}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewDiscord(srv.URL, time.Second)
	fast(n.hook)
	require.NoError(t, n.NotifyReport(context.Background(), testReport()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_ExhaustedWrapsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewSlack(srv.URL, time.Second)
	fast(n.hook)
	err := n.NotifyReport(context.Background(), testReport())

	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, 1500*time.Millisecond, retryAfter(resp, []byte(`{"retry_after":1.5}`)))

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfter(resp, []byte("rate limited")))

	assert.Equal(t, 5*time.Second, retryAfter(&http.Response{Header: http.Header{}}, nil))
}

type recorder struct {
	err   error
	calls int
}

func (r *recorder) NotifyReport(context.Context, *entity.Report) error {
	r.calls++
	return r.err
}

func TestMulti_NotifiesAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b := &recorder{err: boom}, &recorder{}

	err := Multi{a, b}.NotifyReport(context.Background(), testReport())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestNew(t *testing.T) {
	assert.IsType(t, NoOp{}, New(Config{}))
	assert.IsType(t, &Slack{}, New(Config{SlackWebhookURL: "https://hooks.slack.com/services/x"}))
	assert.IsType(t, Multi{}, New(Config{
		SlackWebhookURL:   "https://hooks.slack.com/services/x",
		DiscordWebhookURL: "https://discord.com/api/webhooks/1/x",
	}))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SLACK_ENABLED", "true")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T0/B0/x")
	t.Setenv("DISCORD_ENABLED", "true")
	t.Setenv("DISCORD_WEBHOOK_URL", "http://discord.com/api/webhooks/1/x")

	cfg, fallbacks := LoadConfigFromEnv()
	assert.Equal(t, "https://hooks.slack.com/services/T0/B0/x", cfg.SlackWebhookURL)
	assert.Empty(t, cfg.DiscordWebhookURL)
	require.Len(t, fallbacks, 1)
	assert.Equal(t, "DISCORD_WEBHOOK_URL", fallbacks[0].Key)
	assert.Contains(t, fallbacks[0].Reason, "https")
}

func TestValidateWebhook(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr string
	}{
		{"https://hooks.slack.com/services/T0/B0/x", ""},
		{"", "empty"},
		{"https://evil.example.com/services/x", "host"},
		{"https://hooks.slack.com/api/x", "path"},
	}
	for _, tt := range tests {
		err := validateWebhook(tt.raw, "hooks.slack.com", "/services/")
		if tt.wantErr == "" {
			assert.NoError(t, err, tt.raw)
			continue
		}
		require.Error(t, err, tt.raw)
		assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10, "..."))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7, "..."))
	// "é" is two bytes; the cut must not split it.
	assert.Equal(t, "a...", truncate("aééé", 5, "..."))
}
