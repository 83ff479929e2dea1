package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	pkgch "FinSignal/pkg/clickhouse"
	apperr "FinSignal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *pkgch.Client { return pkgch.NewFromDB(nil, "finsignal") }

func TestSelectBarsQuery(t *testing.T) {
	s := NewCHBarStore(testClient(), "yahoo", nil)
	q, args, err := s.selectBars("THYAO.IS",
		time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT day, open, high, low, close, volume FROM finsignal.daily_bars FINAL "+
		"WHERE (symbol = ? AND day >= ? AND day <= ?) ORDER BY day ASC", q)
	assert.Equal(t, []interface{}{"THYAO.IS", "2024-01-01", "2024-03-01"}, args)
}

func TestInsertBarsQuery(t *testing.T) {
	s := NewCHBarStore(testClient(), "yahoo", nil)
	bars := models.Series{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 20},
	}
	q, args, err := s.insertBars("THYAO.IS", bars).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO finsignal.daily_bars (symbol,day,open,high,low,close,volume,source) "+
		"VALUES (?,?,?,?,?,?,?,?),(?,?,?,?,?,?,?,?)", q)
	require.Len(t, args, 16)
	assert.Equal(t, "2024-01-03", args[9])
	assert.Equal(t, "yahoo", args[15])
}

func TestSaveBarsRejectsInvalidSeries(t *testing.T) {
	s := NewCHBarStore(testClient(), "yahoo", nil)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	unordered := models.Series{
		{Date: day.AddDate(0, 0, 1), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Date: day, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}
	err := s.SaveBars(context.Background(), "THYAO.IS", unordered)
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidInput))

	zeroClose := models.Series{{Date: day, Open: 1, High: 2, Low: 0.5, Close: 0, Volume: 10}}
	assert.Error(t, s.SaveBars(context.Background(), "THYAO.IS", zeroClose))
}

func TestSnapshotOf(t *testing.T) {
	a := &models.Analysis{
		Symbol:       "THYAO",
		CurrentPrice: 281.5,
		AnalysisDate: "2024-03-01T10:15:00Z",
		PeriodDays:   90,
		Indicators: models.IndicatorSet{
			models.KindSMA: models.SMAResult{Current: 270.1, Period: 20, Values: []float64{270.1}},
		},
		Signals: models.AggregateSignal{Overall: models.SignalBuy, Strength: 0.67, Buy: 4, Sell: 1, Neutral: 1},
	}

	snap, err := SnapshotOf(a, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), snap.AnalyzedAt)
	assert.Equal(t, models.SignalBuy, snap.Overall)
	assert.Equal(t, 4, snap.Buy)

	var ind map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(snap.Indicators, &ind))
	assert.Equal(t, 270.1, ind["sma"]["current"])

	fallback := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	a.AnalysisDate = "not a date"
	snap, err = SnapshotOf(a, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, snap.AnalyzedAt)
}

func TestSelectLatestQuery(t *testing.T) {
	s := NewCHAnalysisStore(testClient(), nil)
	q, args, err := s.selectLatest("THYAO").ToSql()
	require.NoError(t, err)
	assert.Contains(t, q, "FROM finsignal.analysis_snapshots WHERE symbol = ? ORDER BY analyzed_at DESC LIMIT 1")
	assert.Equal(t, []interface{}{"THYAO"}, args)
}
