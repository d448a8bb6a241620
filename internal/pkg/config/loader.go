// Package config reads typed settings from environment variables.
//
// Loaders never fail. A value that does not parse or validate is replaced
// by the default and the Result carries a warning describing why:
//
//	ttl := config.Duration("REPORT_CACHE_TTL", 10*time.Minute, config.ValidatePositiveDuration)
//	if w := ttl.Warning(); w != "" {
//	    slog.Warn("config fallback", slog.String("reason", w))
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is a loaded setting.
type Result[T any] struct {
	Key   string
	Value T
	// FallbackApplied is true when the environment held an unusable value.
	FallbackApplied bool
	Err             error
	raw             string
}

// Warning returns a one-line description of the fallback, or "".
func (r Result[T]) Warning() string {
	if !r.FallbackApplied {
		return ""
	}
	return fmt.Sprintf("invalid %s=%q: %v, falling back to default '%v'", r.Key, r.raw, r.Err, r.Value)
}

// Fallback is a setting that fell back to its default.
type Fallback struct {
	Key    string
	Reason string
}

// Fallback reports whether r fell back, and why.
func (r Result[T]) Fallback() (Fallback, bool) {
	if !r.FallbackApplied {
		return Fallback{}, false
	}
	return Fallback{Key: r.Key, Reason: r.Warning()}, true
}

// Warner is implemented by every Result.
type Warner interface {
	Warning() string
	Fallback() (Fallback, bool)
}

// Fallbacks collects the fallbacks among results.
func Fallbacks(results ...Warner) []Fallback {
	var out []Fallback
	for _, r := range results {
		if f, ok := r.Fallback(); ok {
			out = append(out, f)
		}
	}
	return out
}

func load[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Key: key, Value: def}
	}
	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{Key: key, Value: def, FallbackApplied: true, Err: err, raw: raw}
	}
	return Result[T]{Key: key, Value: v, raw: raw}
}

// String returns the value of key, or def when it is unset or blank.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// StringWith loads a string and validates it.
func StringWith(key, def string, validate func(string) error) Result[string] {
	return load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// Int loads a base-10 integer.
func Int(key string, def int, validate func(int) error) Result[int] {
	return load(key, def, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return n, nil
	}, validate)
}

// Duration loads a time.ParseDuration value such as "90s" or "1h30m".
func Duration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return load(key, def, time.ParseDuration, validate)
}

// Bool loads a strconv.ParseBool value.
func Bool(key string, def bool) Result[bool] {
	return load(key, def, func(s string) (bool, error) {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("expected true or false")
		}
		return b, nil
	}, nil)
}

// List splits a comma separated value, dropping blank entries.
// It returns def when key is unset or holds no entries.
func List(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
