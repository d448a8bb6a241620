package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickermate/internal/domain/entity"
	"tickermate/internal/resilience/retry"
)

type stubStrategy struct {
	name  string
	items []entity.ContentItem
	err   error
	calls int
	got   Query
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Fetch(_ context.Context, q Query) ([]entity.ContentItem, error) {
	s.calls++
	s.got = q
	return s.items, s.err
}

func makeItems(bodies ...string) []entity.ContentItem {
	out := make([]entity.ContentItem, len(bodies))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, b := range bodies {
		out[i] = entity.NewContentItem(base.Add(time.Duration(i)*time.Minute), b, "test", "")
	}
	return out
}

func TestFetcher_FirstSuccessWins(t *testing.T) {
	a := &stubStrategy{name: "a", items: makeItems("one", "two")}
	b := &stubStrategy{name: "b", items: makeItems("three")}

	items := NewFetcher(a, b).Fetch(context.Background(), Query{Symbol: "TSLA", Limit: 5})

	require.Len(t, items, 2)
	assert.Equal(t, "one", items[0].Body)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestFetcher_ErrorFallsThrough(t *testing.T) {
	a := &stubStrategy{name: "a", err: &retry.HTTPError{StatusCode: 403, Message: "Forbidden"}}
	b := &stubStrategy{name: "b", items: makeItems("from b")}

	items, attempts := NewFetcher(a, b).FetchDetailed(context.Background(), Query{Limit: 3})

	require.Len(t, items, 1)
	assert.Equal(t, "from b", items[0].Body)
	require.Len(t, attempts, 2)
	assert.Equal(t, OutcomeError, attempts[0].Outcome)
	assert.Equal(t, KindAccessBlocked, attempts[0].Err.Kind)
	assert.Equal(t, OutcomeSuccess, attempts[1].Outcome)
}

func TestFetcher_EmptyFallsThrough(t *testing.T) {
	a := &stubStrategy{name: "a"}
	b := &stubStrategy{name: "b", items: makeItems("x")}

	items, attempts := NewFetcher(a, b).FetchDetailed(context.Background(), Query{Limit: 1})

	require.Len(t, items, 1)
	assert.Equal(t, OutcomeEmpty, attempts[0].Outcome)
	assert.Nil(t, attempts[0].Err)
}

func TestFetcher_AllFailReturnsEmpty(t *testing.T) {
	a := &stubStrategy{name: "a", err: ErrEngineUnavailable}
	b := &stubStrategy{name: "b"}
	c := &stubStrategy{name: "c", err: errors.New("boom")}

	items, attempts := NewFetcher(a, b, c).FetchDetailed(context.Background(), Query{Limit: 4})

	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.Len(t, attempts, 3)
	assert.Equal(t, KindEngineUnavailable, attempts[0].Err.Kind)
	assert.Equal(t, KindUpstream, attempts[2].Err.Kind)
}

func TestFetcher_NonPositiveLimitInvokesNothing(t *testing.T) {
	for _, limit := range []int{0, -3} {
		a := &stubStrategy{name: "a", items: makeItems("x")}
		items := NewFetcher(a).Fetch(context.Background(), Query{Limit: limit})
		assert.Empty(t, items)
		assert.Equal(t, 0, a.calls)
	}
}

func TestFetcher_TruncatesToLimit(t *testing.T) {
	a := &stubStrategy{name: "a", items: makeItems("1", "2", "3", "4")}

	items := NewFetcher(a).Fetch(context.Background(), Query{Limit: 2})

	require.Len(t, items, 2)
	assert.Equal(t, "2", items[1].Body)
}

func TestFetcher_PassesQueryThrough(t *testing.T) {
	match := func(i entity.ContentItem) bool { return strings.Contains(i.Body, "$TSLA") }
	a := &stubStrategy{name: "a"}

	NewFetcher(a).Fetch(context.Background(), Query{Symbol: "TSLA", Limit: 7, Match: match})

	assert.Equal(t, "TSLA", a.got.Symbol)
	assert.Equal(t, 7, a.got.Limit)
	require.NotNil(t, a.got.Match)
}

func TestFetcher_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &stubStrategy{name: "a", err: errors.New("fail")}
	b := &stubStrategy{name: "b", items: makeItems("late")}
	wrapped := StrategyFunc{ID: "a", Fn: func(ctx context.Context, q Query) ([]entity.ContentItem, error) {
		cancel()
		return a.Fetch(ctx, q)
	}}

	items := NewFetcher(wrapped, b).Fetch(ctx, Query{Limit: 1})

	assert.Empty(t, items)
	assert.Equal(t, 0, b.calls)
}

func TestFetcher_Strategies(t *testing.T) {
	f := NewFetcher(&stubStrategy{name: "status-api"}, &stubStrategy{name: "feed"})
	assert.Equal(t, []string{"status-api", "feed"}, f.Strategies())
}

func TestCollector(t *testing.T) {
	q := Query{Limit: 2, Match: func(i entity.ContentItem) bool { return strings.HasPrefix(i.Body, "keep") }}
	c := NewCollector(q)

	assert.False(t, c.Add(entity.ContentItem{Body: "drop"}))
	assert.False(t, c.Add(entity.ContentItem{Body: "keep 1"}))
	assert.False(t, c.Add(entity.ContentItem{Body: "   "}))
	assert.True(t, c.Add(entity.ContentItem{Body: "keep 2"}))
	assert.True(t, c.Add(entity.ContentItem{Body: "keep 3"}))

	require.Len(t, c.Items(), 2)
	assert.Equal(t, "keep 2", c.Items()[1].Body)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"blocked sentinel", ErrAccessBlocked, KindAccessBlocked},
		{"likely blocked", ErrLikelyBlocked, KindAccessBlocked},
		{"engine", ErrEngineUnavailable, KindEngineUnavailable},
		{"parse", ErrParse, KindParse},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"401", &retry.HTTPError{StatusCode: 401}, KindAccessBlocked},
		{"504", &retry.HTTPError{StatusCode: 504}, KindTimeout},
		{"500", &retry.HTTPError{StatusCode: 500}, KindUpstream},
		{"wrapped retrieval", &RetrievalError{Strategy: "x", Kind: KindParse, Err: errors.New("e")}, KindParse},
		{"other", errors.New("other"), KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestRetrievalError_Unwrap(t *testing.T) {
	err := NewRetrievalError("browser", ErrEngineUnavailable)

	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.Equal(t, "browser", err.Strategy)
	assert.Contains(t, err.Error(), "engine_unavailable")
}
