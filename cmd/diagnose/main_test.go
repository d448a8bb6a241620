package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/retry"
	"tickermate/internal/usecase/fetch"
)

func strategy(id string, fn func(ctx context.Context, q fetch.Query) ([]entity.ContentItem, error)) fetch.Strategy {
	return fetch.StrategyFunc{ID: id, Fn: fn}
}

func TestDiagnose(t *testing.T) {
	older := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(3 * time.Hour)

	strategies := map[entity.Channel][]fetch.Strategy{
		entity.ChannelSocial: {
			strategy("status_api", func(context.Context, fetch.Query) ([]entity.ContentItem, error) {
				return nil, &retry.HTTPError{StatusCode: http.StatusForbidden, Message: "Forbidden"}
			}),
			strategy("feed", func(_ context.Context, q fetch.Query) ([]entity.ContentItem, error) {
				assert.Equal(t, "SPX", q.Symbol)
				return []entity.ContentItem{{CreatedAt: older}, {CreatedAt: newer}}, nil
			}),
		},
		entity.ChannelStream: {
			strategy("stream", func(context.Context, fetch.Query) ([]entity.ContentItem, error) {
				return nil, nil
			}),
		},
	}

	diags := diagnose(context.Background(), strategies, fetch.Query{Symbol: "SPX", Limit: 5}, time.Second)
	require.Len(t, diags, 3)

	assert.Equal(t, "status_api", diags[0].Strategy)
	assert.Equal(t, string(fetch.KindAccessBlocked), diags[0].Status)
	assert.NotEmpty(t, diags[0].Error)

	assert.True(t, diags[1].OK())
	assert.Equal(t, 2, diags[1].ItemCount)
	assert.Equal(t, "2025-01-01T13:00:00Z", diags[1].Latest)

	assert.Equal(t, entity.ChannelStream, diags[2].Channel)
	assert.Equal(t, "EMPTY", diags[2].Status)
}

func TestDiagnose_TimeoutPerStrategy(t *testing.T) {
	strategies := map[entity.Channel][]fetch.Strategy{
		entity.ChannelNews: {
			strategy("news_api", func(ctx context.Context, _ fetch.Query) ([]entity.ContentItem, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}),
		},
	}

	diags := diagnose(context.Background(), strategies, fetch.Query{Symbol: "TSLA", Limit: 1}, 10*time.Millisecond)
	require.Len(t, diags, 1)
	assert.Equal(t, string(fetch.KindTimeout), diags[0].Status)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	err := writeReport(&buf, []Diagnostic{
		{Channel: entity.ChannelSocial, Strategy: "feed", Status: "OK", ItemCount: 2, Latest: "2025-01-01T13:00:00Z"},
		{Channel: entity.ChannelNews, Strategy: "news_api", Status: "upstream", Error: errors.New("HTTP 502").Error()},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Working: 1 of 2")
	assert.Contains(t, out, "latest: 2025-01-01T13:00:00Z")
	assert.Contains(t, out, "error: HTTP 502")
}
