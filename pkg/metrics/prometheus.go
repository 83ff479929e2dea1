package metrics

import (
	"time"

	"FinSignal/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses        *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	lastPrice       *prometheus.GaugeVec
	providerLatency *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg means the default
// registry, which is what /metrics serves.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_analyses_total",
				Help: "Completed technical analyses by symbol and overall signal",
			},
			[]string{"symbol", "overall"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsignal_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"stage"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsignal_last_price",
				Help: "Last analysed close for a symbol",
			},
			[]string{"symbol"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsignal_provider_fetch_seconds",
				Help:    "Market data fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}
}

// RecordAnalysis counts a completed analysis.
func (r *Recorder) RecordAnalysis(symbol string, overall models.Signal) {
	r.analyses.WithLabelValues(symbol, string(overall)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(stage string) {
	r.errorsTotal.WithLabelValues(stage).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordProviderLatency records one provider round trip.
func (r *Recorder) RecordProviderLatency(provider string, d time.Duration) {
	r.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}
