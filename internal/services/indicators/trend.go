package indicators

import "FinSignal/internal/domain/models"

// MACD computes EMA(fast) - EMA(slow), its EMA(signal) line and the histogram.
func MACD(series models.Series, fast, slow, signal int) (models.MACDResult, error) {
	closes := series.Closes()
	emaFast := ewmMean(closes, fast)
	emaSlow := ewmMean(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	signalLine := ewmMean(line, signal)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signalLine[i]
	}

	m, s, h := last(line), last(signalLine), last(hist)
	if err := checkFinite(models.KindMACD, m, s, h); err != nil {
		return models.MACDResult{}, err
	}
	return models.MACDResult{
		MACDLine:     m,
		SignalLine:   s,
		Histogram:    h,
		FastPeriod:   fast,
		SlowPeriod:   slow,
		SignalPeriod: signal,
		MACDValues:   tail(line, trailingValues),
		SignalValues: tail(signalLine, trailingValues),
	}, nil
}

// Bollinger computes SMA(period) +/- width * sample stdev(period).
func Bollinger(series models.Series, period int, width float64) (models.BollingerResult, error) {
	closes := series.Closes()
	mid := rollingMean(closes, period)
	sd := rollingStd(closes, period)

	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		upper[i] = mid[i] + width*sd[i]
		lower[i] = mid[i] - width*sd[i]
	}

	u, m, l := last(upper), last(mid), last(lower)
	if err := checkFinite(models.KindBollinger, u, m, l); err != nil {
		return models.BollingerResult{}, err
	}
	return models.BollingerResult{
		UpperBand:   u,
		MiddleBand:  m,
		LowerBand:   l,
		Period:      period,
		StdDev:      width,
		UpperValues: tail(upper, trailingValues),
		LowerValues: tail(lower, trailingValues),
	}, nil
}
