package models

// Requests for the HTTP endpoints. Bound by echo, then defaulted and validated.

type AnalysisRequest struct {
	Symbol     string `param:"symbol" json:"symbol" validate:"required,max=20"`
	PeriodDays int    `query:"period_days" json:"period_days" default:"90" validate:"gte=1,lte=3650"`
}

type PriceHistoryRequest struct {
	Symbol     string `param:"symbol" json:"symbol" validate:"required,max=20"`
	PeriodDays int    `query:"period_days" json:"period_days" default:"90" validate:"gte=1,lte=3650"`
}

type PredictionRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=20"`
	Start  string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
}
