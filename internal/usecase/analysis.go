package usecase

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/services/history"
	"FinSignal/internal/services/indicators"
	"FinSignal/internal/services/signals"
	apperr "FinSignal/pkg/errors"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"
)

// AnalysisSettings are the request-independent knobs of an analysis.
type AnalysisSettings struct {
	DefaultPeriodDays int
	WarmupDays        int
	MinBars           int
	MaxPeriodDays     int
	Timeout           time.Duration
}

// AnalysisOption configures AnalysisUseCase.
type AnalysisOption func(*AnalysisUseCase)

// WithAnalysisStore stores a snapshot of every successful analysis.
func WithAnalysisStore(s domrepo.AnalysisStore) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.store = s }
}

// WithResultPublisher publishes every successful analysis.
func WithResultPublisher(p domrepo.ResultPublisher) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.publisher = p }
}

// WithAnalysisMetrics sets the metrics recorder.
func WithAnalysisMetrics(m domrepo.Metrics) AnalysisOption {
	return func(uc *AnalysisUseCase) { uc.metrics = m }
}

// WithAnalysisLogger sets the logger.
func WithAnalysisLogger(l *applogger.Logger) AnalysisOption {
	return func(uc *AnalysisUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// AnalysisUseCase runs the technical analysis request flow: normalize the
// symbol, fetch the history with warm-up, compute and classify indicators,
// and format the display window.
type AnalysisUseCase struct {
	symbols   domsvc.SymbolNormalizer
	provider  domrepo.MarketDataProvider
	engine    *indicators.Engine
	settings  AnalysisSettings
	store     domrepo.AnalysisStore
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	now       func() time.Time
}

func NewAnalysisUseCase(
	symbols domsvc.SymbolNormalizer,
	provider domrepo.MarketDataProvider,
	engine *indicators.Engine,
	settings AnalysisSettings,
	opts ...AnalysisOption,
) *AnalysisUseCase {
	if settings.DefaultPeriodDays <= 0 {
		settings.DefaultPeriodDays = 90
	}
	if settings.MinBars <= 0 {
		settings.MinBars = 30
	}
	if settings.MaxPeriodDays <= 0 {
		settings.MaxPeriodDays = 3650
	}
	uc := &AnalysisUseCase{
		symbols:  symbols,
		provider: provider,
		engine:   engine,
		settings: settings,
		log:      applogger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.log = uc.log.With(applogger.String("component", "analysis"))
	return uc
}

// Analyze returns the analysis document for rawSymbol over the trailing
// periodDays. A non-positive periodDays means the default.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, rawSymbol string, periodDays int) (*models.Analysis, error) {
	a, err := uc.run(ctx, rawSymbol, periodDays)
	if err != nil {
		return nil, err
	}
	if uc.publisher != nil {
		res := models.AnalysisJobResult{Symbol: a.Symbol, Status: models.JobStatusOK, Analysis: a}
		if perr := uc.publisher.PublishResult(ctx, res); perr != nil {
			uc.recordError("publish")
			uc.log.Warn("publish analysis failed", applogger.String("symbol", a.Symbol), applogger.Error(perr))
		}
	}
	return a, nil
}

// run is Analyze without publication. Jobs publish their own result.
func (uc *AnalysisUseCase) run(ctx context.Context, rawSymbol string, periodDays int) (*models.Analysis, error) {
	if periodDays <= 0 {
		periodDays = uc.settings.DefaultPeriodDays
	}
	if periodDays > uc.settings.MaxPeriodDays {
		return nil, apperr.Newf(apperr.ErrCodeInvalidInput, "period_days must be between 1 and %d", uc.settings.MaxPeriodDays)
	}

	symbol, err := uc.symbols.Normalize(rawSymbol)
	if err != nil {
		return nil, err
	}
	display := uc.symbols.Display(symbol)

	if uc.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.settings.Timeout)
		defer cancel()
	}

	now := uc.now()
	start, end := util.TradingWindow(now, periodDays+uc.settings.WarmupDays)
	series, err := uc.provider.Fetch(ctx, symbol, start, end)
	if err != nil {
		uc.recordError("fetch")
		return nil, err
	}
	if len(series) == 0 {
		uc.recordError("no_data")
		return nil, apperr.Newf(apperr.ErrCodeUpstreamDataUnavailable, "no data found for %s", display)
	}
	if len(series) < uc.settings.MinBars {
		uc.recordError("insufficient_data")
		return nil, apperr.NewInsufficientDataError("", uc.settings.MinBars, len(series))
	}

	last, _ := series.Last()

	set, missing := uc.engine.ComputeDetailed(series)
	for kind, reason := range missing {
		uc.log.Debug("indicator unavailable",
			applogger.String("symbol", display),
			applogger.String("indicator", string(kind)),
			applogger.Error(reason),
		)
	}
	agg := signals.Classify(set, last.Close)
	records := history.FormatTail(series, periodDays)

	a := &models.Analysis{
		Symbol:       display,
		CurrentPrice: last.Close,
		AnalysisDate: now.Format(time.RFC3339),
		PeriodDays:   periodDays,
		DataPoints:   len(records),
		Indicators:   set,
		Signals:      agg,
		PriceHistory: records,
	}

	if uc.metrics != nil {
		uc.metrics.RecordAnalysis(display, agg.Overall)
		uc.metrics.RecordLastPrice(display, last.Close)
	}
	uc.log.Info("analysis done",
		applogger.String("symbol", display),
		applogger.Int("bars", len(series)),
		applogger.Int("indicators", len(set)),
		applogger.String("overall", string(agg.Overall)),
		applogger.Float64("strength", agg.Strength),
		applogger.Any("individual", agg.Individual),
	)

	if uc.store != nil {
		if serr := uc.store.Save(ctx, a); serr != nil {
			uc.recordError("store")
			uc.log.Warn("store snapshot failed", applogger.String("symbol", display), applogger.Error(serr))
		}
	}
	return a, nil
}

// Latest returns the most recent stored snapshot for rawSymbol.
func (uc *AnalysisUseCase) Latest(ctx context.Context, rawSymbol string) (*models.AnalysisSnapshot, error) {
	symbol, err := uc.symbols.Normalize(rawSymbol)
	if err != nil {
		return nil, err
	}
	display := uc.symbols.Display(symbol)
	if uc.store == nil {
		return nil, apperr.Newf(apperr.ErrCodeUpstreamDataUnavailable, "no stored analysis for %s", display)
	}

	snap, err := uc.store.Latest(ctx, display)
	if err != nil {
		uc.recordError("store")
		return nil, apperr.Wrap(apperr.ErrCodeStorageFailure, "load snapshot", err)
	}
	v, err := snap.Take()
	if err != nil {
		return nil, apperr.Newf(apperr.ErrCodeUpstreamDataUnavailable, "no stored analysis for %s", display)
	}
	return &v, nil
}

func (uc *AnalysisUseCase) recordError(stage string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(stage)
	}
}
