package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/indicators"
)

func barsFromCloses(closes []float64) models.Series {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.Series, len(closes))
	for i, c := range closes {
		s[i] = models.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 1000}
	}
	return s
}

func TestRisingSeriesScenario(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := barsFromCloses(closes)
	set := indicators.NewEngine(indicators.WithParallel(true)).Compute(series)
	require.Len(t, set, 7)

	agg := Classify(set, closes[len(closes)-1])
	assert.Equal(t, models.SignalBuy, agg.Individual[models.KindSMA])
	assert.Equal(t, models.SignalBuy, agg.Individual[models.KindEMA])
	assert.Equal(t, models.SignalBuy, agg.Individual[models.KindMACD])
	assert.NotEqual(t, models.SignalSell, agg.Individual[models.KindBollinger])

	// A zero average loss drives RSI to ~100, and the close pinned at the top of
	// its channel puts Stochastic and Williams %R in overbought territory.
	assert.Equal(t, models.SignalSell, agg.Individual[models.KindRSI])
	assert.Equal(t, models.SignalSell, agg.Individual[models.KindStochastic])
	assert.Equal(t, models.SignalSell, agg.Individual[models.KindWilliamsR])
	assert.Equal(t, 3, agg.Buy)
	assert.Equal(t, 3, agg.Sell)
	assert.Equal(t, models.SignalNeutral, agg.Overall)
	assert.Equal(t, 0.43, agg.Strength)
}

func TestReversalIntoUptrendIsBuy(t *testing.T) {
	// 40 bars of decline, then a +2/-1 zigzag recovery
	closes := make([]float64, 0, 60)
	for i := 0; i < 40; i++ {
		closes = append(closes, 150-float64(i))
	}
	for i := 0; i < 10; i++ {
		closes = append(closes, closes[len(closes)-1]+2)
		closes = append(closes, closes[len(closes)-1]-1)
	}
	series := barsFromCloses(closes)
	set := indicators.NewEngine().Compute(series)
	agg := Classify(set, closes[len(closes)-1])

	assert.Equal(t, models.SignalBuy, agg.Individual[models.KindSMA])
	assert.Equal(t, models.SignalBuy, agg.Individual[models.KindEMA])
	assert.Equal(t, models.SignalBuy, agg.Individual[models.KindMACD])
	assert.Equal(t, models.SignalNeutral, agg.Individual[models.KindRSI])
	assert.Equal(t, models.SignalNeutral, agg.Individual[models.KindBollinger])
	assert.Equal(t, 3, agg.Buy)
	assert.Equal(t, 2, agg.Sell)
	assert.Equal(t, models.SignalBuy, agg.Overall)
	assert.Equal(t, 0.43, agg.Strength)
}

func TestTenBarsScenario(t *testing.T) {
	series := barsFromCloses([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	agg := Classify(indicators.NewEngine().Compute(series), 10)
	assert.Empty(t, agg.Individual)
	assert.Equal(t, models.SignalNeutral, agg.Overall)
	assert.Equal(t, 0.0, agg.Strength)
	assert.Zero(t, agg.Buy)
	assert.Zero(t, agg.Sell)
	assert.Zero(t, agg.Neutral)
}

func TestFlatSeriesScenario(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := make(models.Series, 40)
	for i := range series {
		series[i] = models.Bar{Date: start.AddDate(0, 0, i), Open: 50, High: 50, Low: 50, Close: 50, Volume: 10}
	}
	set := indicators.NewEngine().Compute(series)
	require.Len(t, set, 7)
	bb := set[models.KindBollinger].(models.BollingerResult)
	assert.Equal(t, bb.MiddleBand, bb.UpperBand)
	assert.Equal(t, bb.MiddleBand, bb.LowerBand)

	agg := Classify(set, 50)
	assert.Equal(t, len(agg.Individual), agg.Buy+agg.Sell+agg.Neutral)
}

func TestFlatSeriesSignalsIgnorePriceLevel(t *testing.T) {
	var reference *models.AggregateSignal
	for _, level := range []float64{0.1, 3.3, 50, 12345.67} {
		closes := make([]float64, 40)
		for i := range closes {
			closes[i] = level
		}
		set := indicators.NewEngine().Compute(barsFromCloses(closes))
		require.Len(t, set, 7, "level %v", level)

		agg := Classify(set, level)
		assert.Equal(t, models.SignalSell, agg.Individual[models.KindSMA], "sma at %v", level)
		assert.Equal(t, models.SignalSell, agg.Individual[models.KindEMA], "ema at %v", level)
		assert.Equal(t, models.SignalSell, agg.Individual[models.KindMACD], "macd at %v", level)
		assert.Equal(t, models.SignalBuy, agg.Individual[models.KindRSI], "rsi at %v", level)
		assert.Equal(t, models.SignalNeutral, agg.Individual[models.KindBollinger], "bollinger at %v", level)
		assert.Equal(t, models.SignalSell, agg.Overall, "overall at %v", level)

		if reference == nil {
			reference = &agg
			continue
		}
		assert.Equal(t, reference.Individual, agg.Individual, "level %v", level)
		assert.Equal(t, reference.Buy, agg.Buy, "level %v", level)
		assert.Equal(t, reference.Sell, agg.Sell, "level %v", level)
		assert.Equal(t, reference.Neutral, agg.Neutral, "level %v", level)
	}
}
