package repository

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"

	"github.com/moznion/go-optional"
)

// MarketDataProvider fetches daily bars for a canonical symbol over [start, end].
// An empty series with a nil error means the provider has no data.
type MarketDataProvider interface {
	Name() string
	Fetch(ctx context.Context, symbol string, start, end time.Time) (models.Series, error)
}

// BarStore is a provider backed by our own storage, which can also be written to.
type BarStore interface {
	MarketDataProvider
	SaveBars(ctx context.Context, symbol string, series models.Series) error
	Health(ctx context.Context) error
}

// AnalysisStore persists analysis snapshots.
type AnalysisStore interface {
	Save(ctx context.Context, a *models.Analysis) error
	// Latest returns None when nothing has been stored for symbol.
	Latest(ctx context.Context, symbol string) (optional.Option[models.AnalysisSnapshot], error)
}

// ResultPublisher ships finished analyses to downstream consumers.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result models.AnalysisJobResult) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(symbol string, overall models.Signal)
	RecordError(stage string)
	RecordLastPrice(symbol string, price float64)
	RecordProviderLatency(provider string, d time.Duration)
}
