package models

// IndicatorKind names one of the fixed indicator transforms. The string value
// is the key used in API documents.
type IndicatorKind string

const (
	KindSMA        IndicatorKind = "sma"
	KindEMA        IndicatorKind = "ema"
	KindRSI        IndicatorKind = "rsi"
	KindMACD       IndicatorKind = "macd"
	KindBollinger  IndicatorKind = "bollinger"
	KindStochastic IndicatorKind = "stochastic"
	KindWilliamsR  IndicatorKind = "williams_r"
)

// IndicatorKinds lists every kind in canonical order.
var IndicatorKinds = []IndicatorKind{
	KindSMA, KindEMA, KindRSI, KindMACD, KindBollinger, KindStochastic, KindWilliamsR,
}

// IndicatorResult is a closed set of per-kind results. Only the types in this
// file implement it.
type IndicatorResult interface {
	Kind() IndicatorKind
	indicatorResult()
}

type SMAResult struct {
	Current float64   `json:"current"`
	Period  int       `json:"period"`
	Values  []float64 `json:"values"`
}

type EMAResult struct {
	Current float64   `json:"current"`
	Period  int       `json:"period"`
	Values  []float64 `json:"values"`
}

type RSIResult struct {
	Current float64   `json:"current"`
	Period  int       `json:"period"`
	Values  []float64 `json:"values"`
}

type MACDResult struct {
	MACDLine     float64   `json:"macd_line"`
	SignalLine   float64   `json:"signal_line"`
	Histogram    float64   `json:"histogram"`
	FastPeriod   int       `json:"fast_period"`
	SlowPeriod   int       `json:"slow_period"`
	SignalPeriod int       `json:"signal_period"`
	MACDValues   []float64 `json:"macd_values"`
	SignalValues []float64 `json:"signal_values"`
}

type BollingerResult struct {
	UpperBand   float64   `json:"upper_band"`
	MiddleBand  float64   `json:"middle_band"`
	LowerBand   float64   `json:"lower_band"`
	Period      int       `json:"period"`
	StdDev      float64   `json:"std_dev"`
	UpperValues []float64 `json:"upper_values"`
	LowerValues []float64 `json:"lower_values"`
}

type StochasticResult struct {
	KPercent float64   `json:"k_percent"`
	DPercent float64   `json:"d_percent"`
	Period   int       `json:"period"`
	DPeriod  int       `json:"d_period"`
	KValues  []float64 `json:"k_values"`
	DValues  []float64 `json:"d_values"`
}

type WilliamsRResult struct {
	Current float64   `json:"current"`
	Period  int       `json:"period"`
	Values  []float64 `json:"values"`
}

func (SMAResult) Kind() IndicatorKind        { return KindSMA }
func (EMAResult) Kind() IndicatorKind        { return KindEMA }
func (RSIResult) Kind() IndicatorKind        { return KindRSI }
func (MACDResult) Kind() IndicatorKind       { return KindMACD }
func (BollingerResult) Kind() IndicatorKind  { return KindBollinger }
func (StochasticResult) Kind() IndicatorKind { return KindStochastic }
func (WilliamsRResult) Kind() IndicatorKind  { return KindWilliamsR }

func (SMAResult) indicatorResult()        {}
func (EMAResult) indicatorResult()        {}
func (RSIResult) indicatorResult()        {}
func (MACDResult) indicatorResult()       {}
func (BollingerResult) indicatorResult()  {}
func (StochasticResult) indicatorResult() {}
func (WilliamsRResult) indicatorResult()  {}

// IndicatorSet holds only the indicators that could be computed. An absent
// key means the indicator is unavailable.
type IndicatorSet map[IndicatorKind]IndicatorResult

// Kinds returns the present kinds in canonical order.
func (s IndicatorSet) Kinds() []IndicatorKind {
	out := make([]IndicatorKind, 0, len(s))
	for _, k := range IndicatorKinds {
		if _, ok := s[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
