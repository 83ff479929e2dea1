package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"FinSignal/internal/domain/models"
	apperr "FinSignal/pkg/errors"
	xhttp "FinSignal/pkg/http"
)

const yahooUserAgent = "Mozilla/5.0 (compatible; finsignal/1.0)"

// Yahoo reads daily bars from the public v8 chart endpoint.
type Yahoo struct {
	baseURL string
	client  *xhttp.Client
}

func NewYahoo(baseURL string, timeout time.Duration, retries int) *Yahoo {
	return &Yahoo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithRetries(retries, 300*time.Millisecond),
			xhttp.WithUserAgent(yahooUserAgent),
		),
	}
}

func (y *Yahoo) Name() string { return ProviderYahoo }

type yahooChartResponse struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Fetch returns bars for [start, end]. A symbol Yahoo does not know yields
// an empty series, not an error.
func (y *Yahoo) Fetch(ctx context.Context, symbol string, start, end time.Time) (models.Series, error) {
	var resp yahooChartResponse
	err := y.client.GetJSON(ctx, y.baseURL+"/v8/finance/chart/"+url.PathEscape(symbol), map[string][]string{
		"period1":  {strconv.FormatInt(day(start, time.UTC).Unix(), 10)},
		"period2":  {strconv.FormatInt(day(end, time.UTC).AddDate(0, 0, 1).Unix(), 10)},
		"interval": {"1d"},
		"events":   {"history"},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return models.Series{}, nil
		}
		return nil, apperr.Wrapf(apperr.ErrCodeProviderFailure, err, "yahoo chart %s", symbol)
	}

	if e := resp.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return models.Series{}, nil
		}
		return nil, apperr.Newf(apperr.ErrCodeProviderFailure, "yahoo chart %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.Series{}, nil
	}

	bars, err := yahooBars(resp.Chart.Result[0])
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrCodeProviderFailure, err, "yahoo chart %s", symbol)
	}
	return clip(normalize(bars), start, end), nil
}

func yahooBars(r yahooResult) ([]models.Bar, error) {
	if len(r.Timestamp) == 0 || len(r.Indicators.Quote) == 0 {
		return nil, nil
	}
	q := r.Indicators.Quote[0]
	n := len(r.Timestamp)
	if len(q.Open) != n || len(q.High) != n || len(q.Low) != n || len(q.Close) != n {
		return nil, fmt.Errorf("quote arrays do not match %d timestamps", n)
	}

	loc := time.FixedZone("exchange", r.Meta.GMTOffset)
	bars := make([]models.Bar, 0, n)
	for i, ts := range r.Timestamp {
		// Halted or not yet settled sessions come back as nulls.
		if q.Open[i] == nil || q.High[i] == nil || q.Low[i] == nil || q.Close[i] == nil {
			continue
		}
		var vol int64
		if i < len(q.Volume) && q.Volume[i] != nil {
			vol = int64(*q.Volume[i])
		}
		bars = append(bars, models.Bar{
			Date:   day(time.Unix(ts, 0), loc),
			Open:   *q.Open[i],
			High:   *q.High[i],
			Low:    *q.Low[i],
			Close:  *q.Close[i],
			Volume: vol,
		})
	}
	return bars, nil
}
