//go:build wireinject
// +build wireinject

package di

import (
	"FinSignal/pkg/config"
	"FinSignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaConsumer,

		// Repositories
		ProvideBarStore,
		ProvideAnalysisStore,
		ProvideResultPublisher,

		// Services
		ProvideMarketData,
		ProvideSymbolNormalizer,
		ProvideEngine,
		ProvidePredictor,

		// Use cases
		ProvideAnalysisUseCase,
		ProvideHistoryUseCase,
		ProvideAnalysisJobsHandler,

		// HTTP
		ProvideHealthChecks,
		ProvideHTTPHandler,
		ProvideRateLimiter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
