package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinSignal/internal/service/ratelimit"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	"FinSignal/pkg/http/middleware"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
)

// limiterSweepInterval is how often idle rate limit buckets are dropped.
const limiterSweepInterval = time.Minute

// Option configures App.
type Option func(*App)

// WithRateLimiter limits requests per client IP. A nil limiter disables it.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(a *App) { a.limiter = l }
}

// WithCache hands the cache to the app so it is closed on shutdown.
func WithCache(c cache.Service) Option {
	return func(a *App) { a.cache = c }
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	httpServer *xhttp.Server
	limiter    *ratelimit.Limiter
	consumer   *pkgkafka.Consumer
	jobs       pkgkafka.MessageHandler
	producer   *pkgkafka.Producer
	chClient   *pkgch.Client
	cache      cache.Service
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, opts ...Option) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{cfg: cfg, log: l, handler: handler}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithConsumer runs jobs on consumer while the app is up.
func (a *App) WithConsumer(consumer *pkgkafka.Consumer, jobs pkgkafka.MessageHandler) {
	a.consumer = consumer
	a.jobs = jobs
}

// WithProducer hands the producer to the app so it is closed on shutdown.
func (a *App) WithProducer(p *pkgkafka.Producer) { a.producer = p }

// WithClickHouse hands the client to the app so it is closed on shutdown.
func (a *App) WithClickHouse(ch *pkgch.Client) { a.chClient = ch }

func (a *App) buildServer() *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
		xhttp.WithCORS(a.cfg.Server.CORSOrigins...),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	if a.limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(middleware.RateLimit(a.limiter, "/health", a.cfg.Metrics.Path)))
	}
	return xhttp.NewServer(a.handler, opts...)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = a.buildServer()

	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	if a.consumer != nil && a.jobs != nil {
		a.consumer.RegisterHandler(a.jobs)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(limiterSweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.log.Debug("rate limit buckets swept", applogger.Int("removed", n))
			}
		}
	}
}

// shutdown stops HTTP first, then the consumer, then closes the producer,
// ClickHouse and the cache.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// flush pending error logs while the producer is still open
	a.log.RemoveCollector()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
