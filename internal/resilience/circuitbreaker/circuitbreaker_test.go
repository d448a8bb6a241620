package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          50 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig())

	require.NotNil(t, cb)
	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestCall_ReturnsTypedResult(t *testing.T) {
	cb := New(testConfig())

	got, err := Call(cb, func() (int, error) { return 7, nil })

	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestCall_NilBreakerRunsDirectly(t *testing.T) {
	got, err := Call[string](nil, func() (string, error) { return "direct", nil })

	require.NoError(t, err)
	assert.Equal(t, "direct", got)
}

func TestCall_TripsOpenAfterFailures(t *testing.T) {
	cb := New(testConfig())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := Call(cb, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.True(t, cb.IsOpen())

	calls := 0
	_, err := Call(cb, func() (int, error) {
		calls++
		return 1, nil
	})
	assert.True(t, IsOpenError(err))
	assert.Equal(t, 0, calls)
}

func TestCall_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig())
	for i := 0; i < 3; i++ {
		_, _ = Call(cb, func() (int, error) { return 0, errors.New("fail") })
	}
	require.True(t, cb.IsOpen())

	time.Sleep(80 * time.Millisecond)

	got, err := Call(cb, func() (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCall_MinRequestsPreventsEarlyTrip(t *testing.T) {
	cb := New(testConfig())
	for i := 0; i < 2; i++ {
		_, _ = Call(cb, func() (int, error) { return 0, errors.New("fail") })
	}
	assert.False(t, cb.IsOpen())
}

func TestPresetConfigs(t *testing.T) {
	assert.Equal(t, "openai-api", LLMConfig("openai").Name)
	assert.Equal(t, "source-status-api", SourceConfig("status-api").Name)
	assert.Equal(t, "market-data", MarketDataConfig().Name)
	assert.Equal(t, 1.0, DBConfig().FailureThreshold)

	def := DefaultConfig("x")
	assert.Equal(t, uint32(5), def.MinRequests)
	assert.Equal(t, 0.6, def.FailureThreshold)
}
