package usecase

import (
	"context"
	"time"

	"FinSignal/internal/domain/models"
	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/services/history"
	apperr "FinSignal/pkg/errors"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"
)

// HistoryUseCase serves plain price history without indicators or warm-up.
type HistoryUseCase struct {
	symbols  domsvc.SymbolNormalizer
	provider domrepo.MarketDataProvider
	settings AnalysisSettings
	metrics  domrepo.Metrics
	log      *applogger.Logger
	now      func() time.Time
}

func NewHistoryUseCase(symbols domsvc.SymbolNormalizer, provider domrepo.MarketDataProvider, settings AnalysisSettings, metrics domrepo.Metrics, l *applogger.Logger) *HistoryUseCase {
	if settings.DefaultPeriodDays <= 0 {
		settings.DefaultPeriodDays = 90
	}
	if settings.MaxPeriodDays <= 0 {
		settings.MaxPeriodDays = 3650
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &HistoryUseCase{
		symbols:  symbols,
		provider: provider,
		settings: settings,
		metrics:  metrics,
		log:      l.With(applogger.String("component", "history")),
		now:      time.Now,
	}
}

// PriceHistory returns the bars of the last periodDays calendar days.
func (uc *HistoryUseCase) PriceHistory(ctx context.Context, rawSymbol string, periodDays int) (*models.PriceHistory, error) {
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

	start, end := util.TradingWindow(uc.now(), periodDays)
	series, err := uc.provider.Fetch(ctx, symbol, start, end)
	if err != nil {
		uc.recordError("history_fetch")
		return nil, err
	}
	if len(series) == 0 {
		uc.recordError("history_no_data")
		return nil, apperr.Newf(apperr.ErrCodeUpstreamDataUnavailable, "no data found for %s", display)
	}

	records := history.Format(series)
	uc.log.Debug("price history served", applogger.String("symbol", display), applogger.Int("bars", len(records)))
	return &models.PriceHistory{Symbol: display, PriceHistory: records, DataPoints: len(records)}, nil
}

func (uc *HistoryUseCase) recordError(stage string) {
	if uc.metrics != nil {
		uc.metrics.RecordError(stage)
	}
}
