package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDay(t *testing.T) {
	got, ok := ParseTime("2024-02-29")
	if !ok {
		t.Fatalf("expected ok")
	}
	if FormatDay(got) != "2024-02-29" {
		t.Fatalf("unexpected day %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-a-date", "-5", "31/05/2024"} {
		if _, ok := ParseTime(s); ok {
			t.Fatalf("%q should not parse", s)
		}
	}
}

func TestTradingWindow(t *testing.T) {
	now := time.Date(2024, 5, 31, 15, 0, 0, 0, time.UTC)
	start, end := TradingWindow(now, 140)
	if !end.Equal(now) {
		t.Fatalf("end should be now, got %v", end)
	}
	if FormatDay(start) != "2024-01-12" {
		t.Fatalf("unexpected start %v", start)
	}
}

func TestTruncateDay(t *testing.T) {
	got := TruncateDay(time.Date(2024, 5, 31, 15, 4, 5, 6, time.UTC))
	if !got.Equal(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected %v", got)
	}
}
