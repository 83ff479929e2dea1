package marketdata

import (
	"context"
	"net/http"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	apperr "FinSignal/pkg/errors"

	polygon "github.com/polygon-io/client-go/rest"
	pmodels "github.com/polygon-io/client-go/rest/models"
)

// Polygon reads daily aggregates through the Polygon.io REST client.
type Polygon struct {
	client *polygon.Client
	loc    *time.Location
}

// NewPolygon builds a provider for apiKey. hc may be nil.
func NewPolygon(apiKey string, hc *http.Client) (*Polygon, error) {
	if apiKey == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "polygon api key is required")
	}
	var client *polygon.Client
	if hc != nil {
		client = polygon.NewWithClient(apiKey, hc)
	} else {
		client = polygon.New(apiKey)
	}
	// Daily aggregates are stamped at midnight New York time.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &Polygon{client: client, loc: loc}, nil
}

func (p *Polygon) Name() string { return ProviderPolygon }

// polygonTicker drops an exchange suffix such as ".IS"; Polygon keys US
// listings by the bare ticker.
func polygonTicker(symbol string) string {
	if i := strings.LastIndexByte(symbol, '.'); i > 0 && len(symbol)-i <= 3 {
		return symbol[:i]
	}
	return symbol
}

func (p *Polygon) Fetch(ctx context.Context, symbol string, start, end time.Time) (models.Series, error) {
	params := pmodels.ListAggsParams{
		Ticker:     polygonTicker(symbol),
		Multiplier: 1,
		Timespan:   pmodels.Day,
		From:       pmodels.Millis(day(start, time.UTC)),
		To:         pmodels.Millis(day(end, time.UTC)),
	}.WithAdjusted(true).WithOrder(pmodels.Asc).WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var bars []models.Bar
	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, models.Bar{
			Date:   day(time.Time(agg.Timestamp), p.loc),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: int64(agg.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Wrapf(apperr.ErrCodeProviderFailure, err, "polygon aggregates %s", symbol)
	}
	return clip(normalize(bars), start, end), nil
}
