package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	apperr "FinSignal/pkg/errors"
	xhttp "FinSignal/pkg/http"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/util"

	"github.com/shopspring/decimal"
)

// Client calls the external next-day price prediction service.
type Client struct {
	baseURL string
	client  *xhttp.Client
	log     *applogger.Logger
}

// NewClient builds a predictor client. Transport failures and 5xx answers are
// retried up to retries times.
func NewClient(baseURL string, timeout time.Duration, retries int, l *applogger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithRetries(retries, 500*time.Millisecond)),
		log:     l.With(applogger.String("component", "predictor")),
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Predict asks for the next close of symbol trained on [start, end].
func (c *Client) Predict(ctx context.Context, symbol string, start, end time.Time) (models.Prediction, error) {
	var p models.Prediction
	if c.baseURL == "" {
		return p, apperr.New(apperr.ErrCodePredictorFailure, "predictor is not configured")
	}

	query := map[string][]string{
		"symbol": {symbol},
		"start":  {util.FormatDay(start)},
		"end":    {util.FormatDay(end)},
	}
	began := time.Now()
	err := c.client.GetJSON(ctx, c.baseURL+"/predict", query, &p)
	if err != nil {
		c.log.Warn("prediction failed",
			applogger.String("symbol", symbol),
			applogger.Duration("took", time.Since(began)),
			applogger.Error(err),
		)
		return models.Prediction{}, classify(symbol, err)
	}

	p.PriceChange = round(p.PriceChange, 4)
	p.PercentChange = round(p.PercentChange, 2)
	c.log.Debug("prediction done",
		applogger.String("symbol", symbol),
		applogger.Float64("predicted_price", p.PredictedPrice),
		applogger.Duration("took", time.Since(began)),
	)
	return p, nil
}

// classify maps a 400 from the service to invalid input, keeping its message;
// anything else is a predictor failure.
func classify(symbol string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusBadRequest {
		var body errorBody
		if json.Unmarshal(se.Body, &body) == nil && body.Error != "" {
			return apperr.Wrap(apperr.ErrCodeInvalidInput, body.Error, err)
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, "invalid prediction request", err)
	}
	return apperr.Wrapf(apperr.ErrCodePredictorFailure, err, "predict %s", symbol)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
