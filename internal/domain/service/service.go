package service

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"
)

// SymbolNormalizer turns user input into the canonical exchange symbol.
type SymbolNormalizer interface {
	Normalize(raw string) (string, error)
	Display(canonical string) string
	Known() []string
}

// Predictor forecasts the next close from the history in [start, end].
type Predictor interface {
	Predict(ctx context.Context, symbol string, start, end time.Time) (models.Prediction, error)
}
