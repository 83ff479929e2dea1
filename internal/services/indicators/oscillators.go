package indicators

import (
	"math"

	"FinSignal/internal/domain/models"
)

// RSI computes the relative strength index from simple rolling means of
// day-over-day gains and losses. A zero average loss is replaced by epsilon.
func RSI(series models.Series, period int) (models.RSIResult, error) {
	res, _, err := rsi(series, period)
	return res, err
}

func rsi(series models.Series, period int) (models.RSIResult, bool, error) {
	closes := series.Closes()
	gain := make([]float64, len(closes))
	loss := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		switch {
		case d > 0:
			gain[i] = d
		case d < 0:
			loss[i] = -d
		}
	}
	avgGain := rollingMean(gain, period)
	avgLoss := rollingMean(loss, period)

	out := nanSlice(len(closes))
	degenerate := false
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		if l == 0 {
			l = epsilon
			degenerate = i == len(out)-1
		}
		out[i] = 100 - 100/(1+g/l)
	}

	current := last(out)
	if err := checkFinite(models.KindRSI, current); err != nil {
		return models.RSIResult{}, false, err
	}
	return models.RSIResult{Current: current, Period: period, Values: tail(out, trailingValues)}, degenerate, nil
}

// rangePosition returns close's position inside the rolling high/low channel
// as (close-low)/(high-low) and (high-close)/(high-low). A flat channel uses
// epsilon as its width.
func rangePosition(series models.Series, period int) (fromLow, fromHigh []float64, degenerate bool) {
	closes := series.Closes()
	lowMin := rollingMin(series.Lows(), period)
	highMax := rollingMax(series.Highs(), period)

	fromLow = nanSlice(len(closes))
	fromHigh = nanSlice(len(closes))
	for i := range closes {
		lo, hi := lowMin[i], highMax[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			continue
		}
		den := hi - lo
		if den == 0 {
			den = epsilon
			degenerate = i == len(closes)-1
		}
		fromLow[i] = (closes[i] - lo) / den
		fromHigh[i] = (hi - closes[i]) / den
	}
	return fromLow, fromHigh, degenerate
}

// Stochastic computes %K over a rolling high/low channel and %D as its
// dPeriod-bar mean.
func Stochastic(series models.Series, period, dPeriod int) (models.StochasticResult, error) {
	res, _, err := stochastic(series, period, dPeriod)
	return res, err
}

func stochastic(series models.Series, period, dPeriod int) (models.StochasticResult, bool, error) {
	fromLow, _, degenerate := rangePosition(series, period)
	k := make([]float64, len(fromLow))
	for i, v := range fromLow {
		k[i] = 100 * v
	}
	d := rollingMean(k, dPeriod)

	kCur, dCur := last(k), last(d)
	if err := checkFinite(models.KindStochastic, kCur, dCur); err != nil {
		return models.StochasticResult{}, false, err
	}
	return models.StochasticResult{
		KPercent: kCur,
		DPercent: dCur,
		Period:   period,
		DPeriod:  dPeriod,
		KValues:  tail(k, trailingValues),
		DValues:  tail(d, trailingValues),
	}, degenerate, nil
}

// WilliamsR computes -100 * (high_max - close) / (high_max - low_min).
func WilliamsR(series models.Series, period int) (models.WilliamsRResult, error) {
	res, _, err := williamsR(series, period)
	return res, err
}

func williamsR(series models.Series, period int) (models.WilliamsRResult, bool, error) {
	_, fromHigh, degenerate := rangePosition(series, period)
	wr := make([]float64, len(fromHigh))
	for i, v := range fromHigh {
		wr[i] = -100 * v
		if wr[i] == 0 {
			wr[i] = 0 // drop the sign of -0
		}
	}

	current := last(wr)
	if err := checkFinite(models.KindWilliamsR, current); err != nil {
		return models.WilliamsRResult{}, false, err
	}
	return models.WilliamsRResult{Current: current, Period: period, Values: tail(wr, trailingValues)}, degenerate, nil
}
