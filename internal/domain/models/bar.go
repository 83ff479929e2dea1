package models

import (
	"fmt"
	"time"
)

// Bar is one trading day of OHLCV data.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is a date-ascending sequence of bars. Missing trading days are absent, never filled.
type Series []Bar

func (s Series) Len() int { return len(s) }

// Closes returns the close prices in series order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Tail returns the last n bars, or the whole series when it is shorter.
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Last returns the most recent bar.
func (s Series) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Validate checks ordering and price sanity.
func (s Series) Validate() error {
	for i, b := range s {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): prices must be positive", i, b.Date.Format("2006-01-02"))
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume", i, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !b.Date.After(s[i-1].Date) {
			return fmt.Errorf("bar %d (%s): dates must be strictly increasing", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
