package signals

import (
	"github.com/shopspring/decimal"

	"FinSignal/internal/domain/models"
)

// Fuse tallies individual signals into an overall direction. Ties, including
// the empty case, are NEUTRAL. Strength is max(buy, sell)/total rounded to two
// decimals, or 0 without signals.
func Fuse(individual map[models.IndicatorKind]models.Signal) models.AggregateSignal {
	out := models.AggregateSignal{Individual: individual, Overall: models.SignalNeutral}
	if out.Individual == nil {
		out.Individual = map[models.IndicatorKind]models.Signal{}
	}
	for _, s := range out.Individual {
		switch s {
		case models.SignalBuy:
			out.Buy++
		case models.SignalSell:
			out.Sell++
		default:
			out.Neutral++
		}
	}

	switch {
	case out.Buy > out.Sell:
		out.Overall = models.SignalBuy
	case out.Sell > out.Buy:
		out.Overall = models.SignalSell
	}

	total := len(out.Individual)
	if total == 0 {
		return out
	}
	top := out.Buy
	if out.Sell > top {
		top = out.Sell
	}
	out.Strength = decimal.NewFromInt(int64(top)).
		DivRound(decimal.NewFromInt(int64(total)), 2).
		InexactFloat64()
	return out
}
