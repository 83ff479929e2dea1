package http

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details []ValidationError `json:"details,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"period_days"`
	Message string                 `json:"message,omitempty" example:"period_days is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
