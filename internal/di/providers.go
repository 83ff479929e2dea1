package di

import (
	"context"
	"fmt"
	"time"

	"FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/handler/api"
	internalrepo "FinSignal/internal/repository"
	svcmetrics "FinSignal/internal/service/metrics"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/services/indicators"
	"FinSignal/internal/services/marketdata"
	"FinSignal/internal/services/predictor"
	"FinSignal/internal/services/symbols"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"
	"FinSignal/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// Optional infrastructure is returned as nil when disabled in config; the
// consumers of those providers treat nil as "not configured".

// ProvideLogger creates the application logger. With a producer and
// log.error_topic set, error entries are also shipped to Kafka.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Log.ErrorTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			Service:   "finsignal",
			Topic:     cfg.Log.ErrorTopic,
			Publisher: producer,
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideCache creates the market data cache for the configured backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	c := cfg.Cache
	switch c.Backend {
	case "none":
		return cache.NopCache{}, nil
	case "memory":
		return cache.NewMemoryCache(cache.MemoryConfig{DefaultTTL: c.MemoryTTL}), nil
	}

	rc, err := cache.NewRedisCache(cache.RedisConfig{
		URL:      c.Redis.URL,
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		Prefix:   c.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if c.Backend == "layered" {
		return cache.NewLayeredCache(rc, cache.LayeredConfig{MemoryTTL: c.MemoryTTL}), nil
	}
	return rc, nil
}

// ProvideClickHouseClient creates a ClickHouse client and its tables.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(pkgch.Config{
		Host:             ch.Host,
		Port:             ch.Port,
		Database:         ch.Database,
		User:             ch.User,
		Password:         ch.Password,
		DialTimeout:      ch.DialTimeout,
		ReadTimeout:      ch.ReadTimeout,
		MaxExecutionTime: ch.MaxExecutionTime,
		UseHTTP:          ch.UseHTTP,
		AsyncInsert:      ch.AsyncInsert,
		WaitForAsync:     ch.WaitForAsync,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		internalrepo.DailyBarsDDL(db),
		internalrepo.AnalysisSnapshotsDDL(db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideBarStore exposes stored daily bars. Nil without ClickHouse.
func ProvideBarStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.BarStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHBarStore(ch, cfg.MarketData.Provider, l)
}

// ProvideAnalysisStore stores analysis snapshots. Nil without ClickHouse.
func ProvideAnalysisStore(ch *pkgch.Client, l *applogger.Logger) repository.AnalysisStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHAnalysisStore(ch, l)
}

// ProvideKafkaProducer creates a Kafka producer. Nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:          k.Brokers,
		RequiredAcks:     k.RequiredAcks,
		Compression:      k.Compression,
		MaxAttempts:      k.Producer.MaxAttempts,
		WriteTimeout:     k.Producer.WriteTimeout,
		ReadTimeout:      k.Producer.ReadTimeout,
		BatchSize:        k.Producer.BatchSize,
		BatchBytes:       k.Producer.BatchBytes,
		BatchTimeout:     k.Producer.Linger,
		Async:            k.Producer.Async,
		AutoCreateTopics: cfg.Environment != "production",
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher publishes analysis results. Nil without a producer.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.ResultPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.Topics.AnalysisResults, l)
}

// ProvideKafkaConsumer creates a Kafka consumer. Nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerAutoOffsetReset(cfg.Kafka.Consumer.AutoOffsetReset),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook{},
		pkgkafka.LoggingHook{Log: l.With(applogger.String("component", "kafka_hooks"))},
	))
	return consumer, nil
}

// ProvideMarketData builds the configured market data provider behind the cache.
func ProvideMarketData(
	cfg *config.Config,
	store repository.BarStore,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
) (repository.MarketDataProvider, error) {
	return marketdata.New(cfg, store, c, m, l)
}

// ProvideSymbolNormalizer creates the symbol normalizer.
func ProvideSymbolNormalizer(cfg *config.Config) domsvc.SymbolNormalizer {
	return symbols.NewNormalizer(cfg.Symbols.Suffix, cfg.Symbols.Known)
}

// ProvideEngine creates the indicator engine reporting to Prometheus.
func ProvideEngine(cfg *config.Config, l *applogger.Logger) *indicators.Engine {
	return indicators.NewEngine(
		indicators.WithParallel(cfg.Analysis.Parallel),
		indicators.WithObserver(svcmetrics.NewEngineObserver(l)),
	)
}

// ProvidePredictor creates the prediction service client.
func ProvidePredictor(cfg *config.Config, l *applogger.Logger) domsvc.Predictor {
	return predictor.NewClient(cfg.Predictor.BaseURL, cfg.Predictor.Timeout, cfg.Predictor.Retries, l)
}

func analysisSettings(cfg *config.Config) usecase.AnalysisSettings {
	return usecase.AnalysisSettings{
		DefaultPeriodDays: cfg.Analysis.DefaultPeriodDays,
		WarmupDays:        cfg.Analysis.WarmupDays,
		MinBars:           cfg.Analysis.MinBars,
		MaxPeriodDays:     cfg.Analysis.MaxPeriodDays,
		Timeout:           cfg.Analysis.Timeout,
	}
}

// ProvideAnalysisUseCase creates the technical analysis use case.
func ProvideAnalysisUseCase(
	cfg *config.Config,
	norm domsvc.SymbolNormalizer,
	provider repository.MarketDataProvider,
	engine *indicators.Engine,
	store repository.AnalysisStore,
	publisher repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisUseCase {
	opts := []usecase.AnalysisOption{usecase.WithAnalysisMetrics(m), usecase.WithAnalysisLogger(l)}
	if store != nil {
		opts = append(opts, usecase.WithAnalysisStore(store))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithResultPublisher(publisher))
	}
	return usecase.NewAnalysisUseCase(norm, provider, engine, analysisSettings(cfg), opts...)
}

// ProvideHistoryUseCase creates the price history use case.
func ProvideHistoryUseCase(
	cfg *config.Config,
	norm domsvc.SymbolNormalizer,
	provider repository.MarketDataProvider,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(norm, provider, analysisSettings(cfg), m, l)
}

// ProvideAnalysisJobsHandler creates the Kafka analysis request handler.
func ProvideAnalysisJobsHandler(
	cfg *config.Config,
	uc *usecase.AnalysisUseCase,
	publisher repository.ResultPublisher,
	l *applogger.Logger,
) *usecase.AnalysisJobsHandler {
	return usecase.NewAnalysisJobsHandler(cfg.Kafka.Topics.AnalysisRequests, uc, publisher, l)
}

// ProvideHealthChecks lists the backing services probed by /health.
func ProvideHealthChecks(ch *pkgch.Client, c cache.Service) map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{"cache": c.Ping}
	if ch != nil {
		checks["clickhouse"] = ch.Health
	}
	return checks
}

// ProvideHTTPHandler creates the HTTP API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	analysis *usecase.AnalysisUseCase,
	history *usecase.HistoryUseCase,
	pred domsvc.Predictor,
	norm domsvc.SymbolNormalizer,
	checks map[string]api.HealthCheck,
) xhttp.Handler {
	return api.NewAnalysisEchoHandler(l, analysis, history, pred, norm, checks, cfg.Predictor.LookbackDays)
}

// ProvideRateLimiter creates the per-client limiter. Nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	limiter *ratelimit.Limiter,
	consumer *pkgkafka.Consumer,
	jobs *usecase.AnalysisJobsHandler,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	c cache.Service,
) *server.App {
	app := server.New(cfg, l, handler,
		server.WithRateLimiter(limiter),
		server.WithCache(c),
	)
	if consumer != nil {
		app.WithConsumer(consumer, jobs)
	}
	if producer != nil {
		app.WithProducer(producer)
	}
	if ch != nil {
		app.WithClickHouse(ch)
	}
	return app
}
