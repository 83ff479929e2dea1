package indicators

import (
	"math"
	"math/rand"
	"time"

	"FinSignal/internal/domain/models"
)

var seriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seriesFromCloses builds bars with high/low at close +/- 0.5.
func seriesFromCloses(closes []float64) models.Series {
	s := make(models.Series, len(closes))
	for i, c := range closes {
		s[i] = models.Bar{
			Date:   seriesStart.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return s
}

func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func flatSeries(n int, price float64) models.Series {
	s := make(models.Series, n)
	for i := range s {
		s[i] = models.Bar{Date: seriesStart.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return s
}

// randomWalk returns a reproducible OHLC walk with consistent high/low bounds.
func randomWalk(n int, seed int64) models.Series {
	r := rand.New(rand.NewSource(seed))
	s := make(models.Series, n)
	price := 50.0
	for i := range s {
		open := price
		price = math.Max(1, price*(1+r.NormFloat64()*0.02))
		hi := math.Max(open, price) * (1 + r.Float64()*0.01)
		lo := math.Min(open, price) * (1 - r.Float64()*0.01)
		s[i] = models.Bar{Date: seriesStart.AddDate(0, 0, i), Open: open, High: hi, Low: lo, Close: price, Volume: int64(1000 + r.Intn(5000))}
	}
	return s
}
