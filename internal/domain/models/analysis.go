package models

import (
	"encoding/json"
	"time"
)

// PriceRecord is the API projection of a Bar.
type PriceRecord struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Analysis is the full technical analysis document for one symbol.
type Analysis struct {
	Symbol       string          `json:"symbol"`
	CurrentPrice float64         `json:"current_price"`
	AnalysisDate string          `json:"analysis_date"`
	PeriodDays   int             `json:"period_days"`
	DataPoints   int             `json:"data_points"`
	Indicators   IndicatorSet    `json:"indicators"`
	Signals      AggregateSignal `json:"signals"`
	PriceHistory []PriceRecord   `json:"price_history"`
}

// PriceHistory is the document served by the price history endpoint.
type PriceHistory struct {
	Symbol       string        `json:"symbol"`
	PriceHistory []PriceRecord `json:"price_history"`
	DataPoints   int           `json:"data_points"`
}

// AnalysisSnapshot is a stored summary of a past analysis.
type AnalysisSnapshot struct {
	Symbol       string          `json:"symbol"`
	AnalyzedAt   time.Time       `json:"analyzed_at"`
	PeriodDays   int             `json:"period_days"`
	CurrentPrice float64         `json:"current_price"`
	Overall      Signal          `json:"overall_signal"`
	Strength     float64         `json:"signal_strength"`
	Buy          int             `json:"buy_signals"`
	Sell         int             `json:"sell_signals"`
	Neutral      int             `json:"neutral_signals"`
	Indicators   json.RawMessage `json:"indicators"`
}
