package indicators

import "FinSignal/internal/domain/models"

// SMA computes the trailing simple moving average of close.
func SMA(series models.Series, period int) (models.SMAResult, error) {
	sma := rollingMean(series.Closes(), period)
	current := last(sma)
	if err := checkFinite(models.KindSMA, current); err != nil {
		return models.SMAResult{}, err
	}
	return models.SMAResult{Current: current, Period: period, Values: tail(sma, trailingValues)}, nil
}

// EMA computes the span-weighted exponential moving average of close.
func EMA(series models.Series, period int) (models.EMAResult, error) {
	ema := ewmMean(series.Closes(), period)
	current := last(ema)
	if err := checkFinite(models.KindEMA, current); err != nil {
		return models.EMAResult{}, err
	}
	return models.EMAResult{Current: current, Period: period, Values: tail(ema, trailingValues)}, nil
}
