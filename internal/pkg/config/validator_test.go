package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	for _, s := range []string{"*/15 13-21 * * 1-5", "0 * * * *", "30 5 * * *"} {
		assert.NoError(t, ValidateCronSchedule(s), s)
	}
	for _, s := range []string{"", "every minute", "60 * * * *", "* * * *"} {
		assert.Error(t, ValidateCronSchedule(s), s)
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("America/New_York"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, ValidateDuration(time.Minute, time.Second, time.Hour))
	assert.NoError(t, ValidateDuration(time.Hour, time.Second, time.Hour))
	assert.Error(t, ValidateDuration(time.Millisecond, time.Second, time.Hour))
	assert.Error(t, ValidateDuration(2*time.Hour, time.Second, time.Hour))
	assert.ErrorContains(t, ValidateDuration(time.Minute, time.Hour, time.Second), "invalid range")
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(1, 1, 20))
	assert.NoError(t, ValidateIntRange(20, 1, 20))
	assert.Error(t, ValidateIntRange(0, 1, 20))
	assert.Error(t, ValidateIntRange(21, 1, 20))
	assert.ErrorContains(t, ValidateIntRange(5, 10, 1), "invalid range")
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://truthsocial.com/@realDonaldTrump"))
	assert.NoError(t, ValidateURL("redis://cache:6379/0", "redis", "rediss"))
	assert.Error(t, ValidateURL("truthsocial.com"))
	assert.Error(t, ValidateURL("ftp://example.com", "http", "https"))
	assert.Error(t, ValidateURL("http://[::1"))
}

func TestOneOf(t *testing.T) {
	v := OneOf("text", "json")
	assert.NoError(t, v("JSON"))
	assert.ErrorContains(t, v("yaml"), "must be one of text, json")
}
