package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperr "FinSignal/pkg/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes func(e *echo.Echo)

func (r routes) RegisterRoutes(e *echo.Echo) { r(e) }

type periodRequest struct {
	Symbol     string `param:"symbol" validate:"required,max=20"`
	PeriodDays int    `query:"period_days" default:"90" validate:"gte=1,lte=3650"`
}

func newTestServer() *Server {
	return NewServer(routes(func(e *echo.Echo) {
		e.GET("/boom", func(c echo.Context) error { panic("kaboom") })
		e.GET("/fail", func(c echo.Context) error {
			return AppErrorResponse(c, FromError(apperr.New(apperr.ErrCodeUpstreamDataUnavailable, "no data found for XYZ"), "analysis failed"))
		})
		e.GET("/period/:symbol", func(c echo.Context) error {
			var req periodRequest
			if errs := BindAndValidate(c, &req); errs != nil {
				return ValidationErrorResponse(c, errs)
			}
			return SuccessResponse(c, req)
		})
	}), WithMetricsPath(""))
}

func do(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestServerErrorBodies(t *testing.T) {
	s := newTestServer()

	rec, body := do(t, s, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])

	rec, body = do(t, s, "/fail")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no data found for XYZ", body["error"])

	rec, body = do(t, s, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", body["error"])
}

func TestBindAndValidate(t *testing.T) {
	s := newTestServer()

	rec, body := do(t, s, "/period/THYAO")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90.0, body["PeriodDays"])

	rec, body = do(t, s, "/period/THYAO?period_days=30")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30.0, body["PeriodDays"])

	rec, body = do(t, s, "/period/THYAO?period_days=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "period_days")

	rec, body = do(t, s, "/period/THYAO?period_days=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestFromError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.NewInsufficientDataError("analysis", 30, 12), http.StatusBadRequest, "insufficient data"},
		{apperr.New(apperr.ErrCodeInvalidInput, "symbol is required"), http.StatusBadRequest, "symbol is required"},
		{apperr.New(apperr.ErrCodeUpstreamDataUnavailable, "no data found for ABC"), http.StatusNotFound, "no data found for ABC"},
		{apperr.New(apperr.ErrCodePredictorFailure, "timeout"), http.StatusBadGateway, "fallback"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "fallback"},
		{BadRequestError("explicit"), http.StatusBadRequest, "explicit"},
	}
	for _, tc := range cases {
		got := FromError(tc.err, "fallback")
		assert.Equal(t, tc.status, got.Status, tc.err.Error())
		assert.Equal(t, tc.msg, got.Message, tc.err.Error())
	}
}

func TestClientRetriesTemporaryStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "finsignal-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.URL.Query().Get("x"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetries(2, time.Millisecond), WithUserAgent("finsignal-test"))
	var out struct{ OK bool }
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, map[string][]string{"x": {"1"}}, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad symbol"}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetries(3, time.Millisecond))
	err := c.GetJSON(context.Background(), srv.URL, nil, &struct{}{})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, string(se.Body), "bad symbol")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
