// Package timeago turns source timestamps into the short relative labels
// shown next to each report item ("5m ago", "3d ago").
package timeago

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnknownTime is returned for timestamps that match none of the layouts.
const UnknownTime = "Unknown Time"

// ErrUnparseable is returned when no layout matches.
var ErrUnparseable = errors.New("timestamp matches no known layout")

// DefaultLayouts are tried in order by ParseTimestamp when no layouts are given.
var DefaultLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000000Z",
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses text with the first matching layout and returns it in UTC.
func ParseTimestamp(text string, layouts []string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, text)
}

// Formatter renders relative ages against a clock.
type Formatter struct {
	Now     func() time.Time
	Layouts []string
}

// New returns a Formatter using the wall clock and DefaultLayouts.
func New() *Formatter {
	return &Formatter{Now: time.Now, Layouts: DefaultLayouts}
}

// RelativeAge parses text and formats its distance from now.
// Unparseable input yields UnknownTime.
func (f *Formatter) RelativeAge(text string) string {
	t, err := ParseTimestamp(text, f.Layouts)
	if err != nil {
		return UnknownTime
	}
	return Format(t, f.now())
}

// Since formats the distance between t and now.
func (f *Formatter) Since(t time.Time) string {
	if t.IsZero() {
		return UnknownTime
	}
	return Format(t, f.now())
}

func (f *Formatter) now() time.Time {
	if f == nil || f.Now == nil {
		return time.Now().UTC()
	}
	return f.Now().UTC()
}

// RelativeAge formats text against the wall clock using DefaultLayouts.
func RelativeAge(text string) string {
	return New().RelativeAge(text)
}

// Format buckets now-t, truncating:
//
//	< 1 minute  "Just now"
//	< 1 hour    "{n}m ago"
//	< 1 day     "{n}h ago"
//	< 7 days    "{n}d ago"
//	otherwise   the UTC date, YYYY-MM-DD
//
// Timestamps in the future are reported as "Just now".
func Format(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.UTC().Format("2006-01-02")
	}
}
