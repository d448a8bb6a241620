package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Setenv("TM_STRING", "  value ")
	assert.Equal(t, "value", String("TM_STRING", "def"))

	t.Setenv("TM_STRING", "   ")
	assert.Equal(t, "def", String("TM_STRING", "def"))
}

func TestStringWith(t *testing.T) {
	t.Setenv("TM_PROVIDER", "claude")
	r := StringWith("TM_PROVIDER", "openai", OneOf("openai", "claude"))
	assert.Equal(t, "claude", r.Value)
	assert.False(t, r.FallbackApplied)
	assert.Empty(t, r.Warning())

	t.Setenv("TM_PROVIDER", "bard")
	r = StringWith("TM_PROVIDER", "openai", OneOf("openai", "claude"))
	assert.Equal(t, "openai", r.Value)
	assert.True(t, r.FallbackApplied)
	assert.Contains(t, r.Warning(), `invalid TM_PROVIDER="bard"`)
	assert.Contains(t, r.Warning(), "falling back to default 'openai'")
}

func TestInt(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		want     int
		fallback bool
	}{
		{"unset", "", 4, false},
		{"valid", "12", 12, false},
		{"spaces", " 7 ", 7, false},
		{"not a number", "many", 4, true},
		{"decimal", "1.5", 4, true},
		{"out of range", "21", 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TM_INT", tt.env)
			r := Int("TM_INT", 4, func(n int) error { return ValidateIntRange(n, 1, 20) })
			assert.Equal(t, tt.want, r.Value)
			assert.Equal(t, tt.fallback, r.FallbackApplied)
		})
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("TM_TTL", "90s")
	r := Duration("TM_TTL", time.Minute, ValidatePositiveDuration)
	assert.Equal(t, 90*time.Second, r.Value)

	t.Setenv("TM_TTL", "-5m")
	r = Duration("TM_TTL", time.Minute, ValidatePositiveDuration)
	assert.Equal(t, time.Minute, r.Value)
	assert.True(t, r.FallbackApplied)

	t.Setenv("TM_TTL", "soon")
	r = Duration("TM_TTL", time.Minute, nil)
	assert.Equal(t, time.Minute, r.Value)
	assert.True(t, r.FallbackApplied)
}

func TestBool(t *testing.T) {
	for env, want := range map[string]bool{"true": true, "1": true, "FALSE": false, "0": false} {
		t.Setenv("TM_BOOL", env)
		assert.Equal(t, want, Bool("TM_BOOL", !want).Value, env)
	}

	t.Setenv("TM_BOOL", "yes please")
	r := Bool("TM_BOOL", true)
	assert.True(t, r.Value)
	assert.True(t, r.FallbackApplied)
}

func TestList(t *testing.T) {
	t.Setenv("TM_LIST", "TSLA, AAPL,,  NVDA ")
	assert.Equal(t, []string{"TSLA", "AAPL", "NVDA"}, List("TM_LIST", nil))

	t.Setenv("TM_LIST", " , ")
	assert.Equal(t, []string{"SPX"}, List("TM_LIST", []string{"SPX"}))
}

func TestFallbacks(t *testing.T) {
	t.Setenv("TM_A", "bad")
	t.Setenv("TM_B", "3")

	a := Int("TM_A", 1, nil)
	b := Int("TM_B", 1, nil)
	got := Fallbacks(a, b)

	assert.Len(t, got, 1)
	assert.Equal(t, "TM_A", got[0].Key)
	assert.Contains(t, got[0].Reason, "invalid integer format")
}
