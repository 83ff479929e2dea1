package indicators

import (
	"FinSignal/internal/domain/models"
	apperr "FinSignal/pkg/errors"
)

// MinimumLength is the number of bars each indicator needs before its current
// value is meaningful.
var MinimumLength = map[models.IndicatorKind]int{
	models.KindSMA:        20,
	models.KindEMA:        20,
	models.KindRSI:        15,
	models.KindMACD:       35,
	models.KindBollinger:  20,
	models.KindStochastic: 17,
	models.KindWilliamsR:  14,
}

// Available reports whether the series has at least minLen bars.
func Available(series models.Series, minLen int) bool {
	return len(series) >= minLen
}

// checkLength returns an InsufficientDataError when the series is too short for kind.
func checkLength(kind models.IndicatorKind, series models.Series) error {
	required := MinimumLength[kind]
	if !Available(series, required) {
		return apperr.NewInsufficientDataError(string(kind), required, len(series))
	}
	return nil
}

// checkFinite rejects a result whose current value is NaN or infinite.
func checkFinite(kind models.IndicatorKind, values ...float64) error {
	for _, v := range values {
		if !isFinite(v) {
			return apperr.Newf(apperr.ErrCodeUnexpectedComputation, "%s: current value is not finite", kind)
		}
	}
	return nil
}
