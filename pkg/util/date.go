package util

import (
	"strconv"
	"time"
)

// DayLayout is the calendar-day format used on the wire.
const DayLayout = "2006-01-02"

// ParseTime tries YYYY-MM-DD, RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// FormatDay renders t as YYYY-MM-DD in its own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// TruncateDay drops the clock part of t, keeping its location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TradingWindow returns the calendar range [now-days, now]. Weekends and
// holidays inside the range simply yield no bars.
func TradingWindow(now time.Time, days int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -days), now
}
