package signals

import (
	"fmt"

	"FinSignal/internal/domain/models"
)

// Fixed thresholds.
const (
	RSIOverbought        = 70.0
	RSIOversold          = 30.0
	StochasticOverbought = 80.0
	StochasticOversold   = 20.0
	WilliamsOverbought   = -20.0
	WilliamsOversold     = -80.0
)

// ClassifyOne maps a single indicator result and the current price to a signal.
func ClassifyOne(result models.IndicatorResult, price float64) models.Signal {
	switch r := result.(type) {
	case models.SMAResult:
		return aboveBelow(price, r.Current)
	case models.EMAResult:
		return aboveBelow(price, r.Current)
	case models.RSIResult:
		return band(r.Current, RSIOverbought, RSIOversold)
	case models.MACDResult:
		return aboveBelow(r.MACDLine, r.SignalLine)
	case models.BollingerResult:
		switch {
		case price > r.UpperBand:
			return models.SignalSell
		case price < r.LowerBand:
			return models.SignalBuy
		default:
			return models.SignalNeutral
		}
	case models.StochasticResult:
		switch {
		case r.KPercent > StochasticOverbought && r.DPercent > StochasticOverbought:
			return models.SignalSell
		case r.KPercent < StochasticOversold && r.DPercent < StochasticOversold:
			return models.SignalBuy
		default:
			return models.SignalNeutral
		}
	case models.WilliamsRResult:
		return band(r.Current, WilliamsOverbought, WilliamsOversold)
	default:
		// IndicatorResult is sealed inside models; a new case must be added here.
		panic(fmt.Sprintf("signals: unhandled indicator result %T", result))
	}
}

// aboveBelow is BUY when v is strictly above ref, SELL otherwise.
func aboveBelow(v, ref float64) models.Signal {
	if v > ref {
		return models.SignalBuy
	}
	return models.SignalSell
}

// band is SELL above overbought, BUY below oversold, NEUTRAL in between.
func band(v, overbought, oversold float64) models.Signal {
	switch {
	case v > overbought:
		return models.SignalSell
	case v < oversold:
		return models.SignalBuy
	default:
		return models.SignalNeutral
	}
}

// Classify produces a signal for every indicator present in set and fuses them.
// Absent indicators get no entry.
func Classify(set models.IndicatorSet, price float64) models.AggregateSignal {
	individual := make(map[models.IndicatorKind]models.Signal, len(set))
	for kind, result := range set {
		individual[kind] = ClassifyOne(result, price)
	}
	return Fuse(individual)
}
