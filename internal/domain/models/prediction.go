package models

// Prediction is the next-day forecast returned by the external LSTM service.
type Prediction struct {
	Symbol         string  `json:"symbol"`
	PredictedPrice float64 `json:"predicted_price"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChange    float64 `json:"price_change"`
	PercentChange  float64 `json:"percent_change"`
	PredictionDate string  `json:"prediction_date"`
	LastCloseDate  string  `json:"last_close_date"`
	DataPoints     int     `json:"data_points"`
	Accuracy       float64 `json:"accuracy"`
	MAE            float64 `json:"mae"`
	RMSE           float64 `json:"rmse"`
	R2             float64 `json:"r2"`
}
