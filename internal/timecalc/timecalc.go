package timecalc

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a wall-clock time of day with minute resolution. It carries no
// date and no timezone.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM", "H:MM" or "HH:MM:SS[.ffffff]". Anything after the
// minutes is truncated, so "16:00:59" and "16:00" parse to the same Clock.
func ParseClock(s string) (Clock, error) {
	raw := strings.TrimSpace(s)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return Clock{}, fmt.Errorf("invalid time %q: missing colon", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: hour is not numeric", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return Clock{}, fmt.Errorf("invalid time %q: minute is not numeric", s)
	}
	if len(parts) > 2 {
		// Seconds are dropped, but must still look like a number.
		sec := strings.SplitN(parts[2], ".", 2)[0]
		if _, err := strconv.Atoi(sec); err != nil {
			return Clock{}, fmt.Errorf("invalid time %q: second is not numeric", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

// MustParseClock is ParseClock for literals; it panics on malformed input.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String formats the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is strictly earlier than o.
func (c Clock) Before(o Clock) bool {
	return c.Minutes() < o.Minutes()
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SpanSeconds returns the length of [start, end) in seconds. It is negative
// for inverted ranges.
func SpanSeconds(start, end Clock) int64 {
	return int64(end.Minutes()-start.Minutes()) * 60
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}
