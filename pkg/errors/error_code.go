package errors

// ErrorCode identifies a failure class across the engine and the service layers.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidInput     ErrorCode = 100
	ErrCodeInsufficientData ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeUpstreamDataUnavailable ErrorCode = 200
	ErrCodeStorageFailure          ErrorCode = 201

	// Indicator errors (300-399)
	ErrCodeUnexpectedComputation ErrorCode = 302
	ErrCodeNumericDegeneracy     ErrorCode = 303

	// Collaborator errors (700-799)
	ErrCodeProviderFailure  ErrorCode = 700
	ErrCodePredictorFailure ErrorCode = 710
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                 "unknown",
	ErrCodeInvalidInput:            "invalid_input",
	ErrCodeInsufficientData:        "insufficient_data",
	ErrCodeUpstreamDataUnavailable: "upstream_data_unavailable",
	ErrCodeStorageFailure:          "storage_failure",
	ErrCodeUnexpectedComputation:   "unexpected_computation",
	ErrCodeNumericDegeneracy:       "numeric_degeneracy",
	ErrCodeProviderFailure:         "provider_failure",
	ErrCodePredictorFailure:        "predictor_failure",
}

// String returns a stable snake_case label, used for metric labels and logs.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[ErrCodeUnknown]
}
