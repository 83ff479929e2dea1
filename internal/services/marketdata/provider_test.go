package marketdata

import (
	"testing"
	"time"

	"FinSignal/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, dd int) time.Time { return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC) }

func TestNormalizeSortsDedupesAndDropsBadBars(t *testing.T) {
	in := []models.Bar{
		{Date: d(2024, 1, 3), Open: 3, High: 3, Low: 3, Close: 3},
		{Date: d(2024, 1, 2), Open: 2, High: 2, Low: 2, Close: 2},
		{Date: d(2024, 1, 3), Open: 4, High: 4, Low: 4, Close: 4},
		{Date: d(2024, 1, 4), Open: 0, High: 5, Low: 5, Close: 5},
		{Date: d(2024, 1, 5), Open: 6, High: 6, Low: 6, Close: 6, Volume: -1},
	}
	out := normalize(in)

	assert.Len(t, out, 3)
	assert.Equal(t, d(2024, 1, 2), out[0].Date)
	assert.Equal(t, 4.0, out[1].Close, "later duplicate wins")
	assert.Equal(t, int64(0), out[2].Volume)
	assert.NoError(t, out.Validate())
}

func TestClipIsInclusiveByDay(t *testing.T) {
	s := models.Series{{Date: d(2024, 1, 1)}, {Date: d(2024, 1, 2)}, {Date: d(2024, 1, 3)}}
	out := clip(s, time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC), time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC))
	assert.Len(t, out, 2)
}

func TestPolygonTicker(t *testing.T) {
	assert.Equal(t, "THYAO", polygonTicker("THYAO.IS"))
	assert.Equal(t, "AAPL", polygonTicker("AAPL"))
}
