package models

// Signal is a categorical trading signal.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

// AggregateSignal is the fused view over all per-indicator signals.
// Buy+Sell+Neutral always equals len(Individual).
type AggregateSignal struct {
	Individual map[IndicatorKind]Signal `json:"individual_signals"`
	Overall    Signal                   `json:"overall_signal"`
	Strength   float64                  `json:"signal_strength"`
	Buy        int                      `json:"buy_signals"`
	Sell       int                      `json:"sell_signals"`
	Neutral    int                      `json:"neutral_signals"`
}
