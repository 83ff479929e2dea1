// Package marketdata fetches daily OHLCV bars from remote vendors and our own
// ClickHouse store, with a cache in front.
package marketdata

import (
	"sort"
	"time"

	"FinSignal/internal/domain/models"
)

const (
	ProviderYahoo      = "yahoo"
	ProviderPolygon    = "polygon"
	ProviderClickHouse = "clickhouse"
)

// day maps any instant to midnight UTC of its calendar date in loc.
func day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalize sorts bars by date, keeps the last bar seen for a duplicated
// date and drops bars with non-positive prices.
func normalize(bars []models.Bar) models.Series {
	out := make(models.Series, 0, len(bars))
	for _, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			continue
		}
		if b.Volume < 0 {
			b.Volume = 0
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(b.Date) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

// clip keeps bars whose date falls inside [start, end] by calendar day.
func clip(s models.Series, start, end time.Time) models.Series {
	from := day(start, time.UTC)
	to := day(end, time.UTC)
	out := make(models.Series, 0, len(s))
	for _, b := range s {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out
}
