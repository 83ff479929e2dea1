package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"FinSignal/internal/domain/models"
	domsvc "FinSignal/internal/domain/service"
	xhttp "FinSignal/pkg/http"
	xlogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"

	"github.com/labstack/echo/v4"
)

// Version is reported by the index endpoint.
var Version = "1.0.0"

type Analyzer interface {
	Analyze(ctx context.Context, rawSymbol string, periodDays int) (*models.Analysis, error)
	Latest(ctx context.Context, rawSymbol string) (*models.AnalysisSnapshot, error)
}

type HistoryReader interface {
	PriceHistory(ctx context.Context, rawSymbol string, periodDays int) (*models.PriceHistory, error)
}

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// AnalysisEchoHandler serves the technical analysis, price history and
// prediction endpoints.
type AnalysisEchoHandler struct {
	logger       *xlogger.Logger
	analyzer     Analyzer
	history      HistoryReader
	predictor    domsvc.Predictor
	symbols      domsvc.SymbolNormalizer
	checks       map[string]HealthCheck
	lookbackDays int
	now          func() time.Time
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	analyzer Analyzer,
	history HistoryReader,
	predictor domsvc.Predictor,
	symbols domsvc.SymbolNormalizer,
	checks map[string]HealthCheck,
	lookbackDays int,
) *AnalysisEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	return &AnalysisEchoHandler{
		logger:       logger.With(xlogger.String("component", "api")),
		analyzer:     analyzer,
		history:      history,
		predictor:    predictor,
		symbols:      symbols,
		checks:       checks,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/health", h.Health)
	e.GET("/technical-analysis/:symbol", h.TechnicalAnalysis)
	e.GET("/technical-analysis/:symbol/latest", h.LatestAnalysis)
	e.GET("/price-history/:symbol", h.PriceHistory)
	e.GET("/prediction/:symbol", h.Prediction)
}

func (h *AnalysisEchoHandler) Index(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"name":              "FinSignal Technical Analysis API",
		"version":           Version,
		"status":            "running",
		"available_symbols": h.symbols.Known(),
		"endpoints": map[string]string{
			"/technical-analysis/<symbol>":        "GET - Technical indicators and signals (params: period_days)",
			"/technical-analysis/<symbol>/latest": "GET - Last stored analysis summary",
			"/price-history/<symbol>":             "GET - Daily price history (params: period_days)",
			"/prediction/<symbol>":                "GET - Next day price prediction (params: start, end)",
			"/health":                             "GET - Service health",
		},
	})
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("health check failed", xlogger.String("check", name), xlogger.Error(err))
			results[name] = "down"
			status = "degraded"
			continue
		}
		results[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return xhttp.JSONResponse(c, code, map[string]interface{}{"status": status, "checks": results})
}

func (h *AnalysisEchoHandler) TechnicalAnalysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.BindAndValidate(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), req.Symbol, req.PeriodDays)
	if err != nil {
		return h.fail(c, "technical analysis", req.Symbol, err, "analysis failed")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) LatestAnalysis(c echo.Context) error {
	symbol := c.Param("symbol")
	res, err := h.analyzer.Latest(c.Request().Context(), symbol)
	if err != nil {
		return h.fail(c, "latest analysis", symbol, err, "snapshot unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) PriceHistory(c echo.Context) error {
	req := &models.PriceHistoryRequest{}
	if verr := xhttp.BindAndValidate(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}

	res, err := h.history.PriceHistory(c.Request().Context(), req.Symbol, req.PeriodDays)
	if err != nil {
		return h.fail(c, "price history", req.Symbol, err, "price history unavailable")
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Prediction(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.BindAndValidate(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}

	end := util.TruncateDay(h.now().UTC())
	if t, ok := util.ParseTime(req.End); ok {
		end = t
	}
	start := end.AddDate(0, 0, -h.lookbackDays)
	if t, ok := util.ParseTime(req.Start); ok {
		start = t
	}
	if !start.Before(end) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("start must be before end"))
	}

	symbol, err := h.symbols.Normalize(req.Symbol)
	if err != nil {
		return h.fail(c, "prediction", req.Symbol, err, "prediction failed")
	}
	res, err := h.predictor.Predict(c.Request().Context(), symbol, start, end)
	if err != nil {
		return h.fail(c, "prediction", req.Symbol, err, "prediction failed")
	}
	res.Symbol = h.symbols.Display(symbol)
	return xhttp.SuccessResponse(c, res)
}

// fail maps err onto the response. Client errors are logged at Warn, the rest at Error.
func (h *AnalysisEchoHandler) fail(c echo.Context, op, symbol string, err error, fallback string) error {
	appErr := xhttp.FromError(err, fallback)
	log := h.logger.Error
	if appErr.Status < http.StatusInternalServerError {
		log = h.logger.Warn
	}
	log(op+" failed",
		xlogger.String("symbol", symbol),
		xlogger.Int("status", appErr.Status),
		xlogger.Error(err),
	)
	return xhttp.AppErrorResponse(c, appErr)
}
