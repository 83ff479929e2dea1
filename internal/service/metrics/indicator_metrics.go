package metrics

import (
	"sync"

	"FinSignal/internal/services/indicators"
	apperr "FinSignal/pkg/errors"
	applogger "FinSignal/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	IndicatorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "finsignal",
			Subsystem: "indicator",
			Name:      "latency_seconds",
			Help:      "Time spent computing one indicator",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"indicator"},
	)

	IndicatorUnavailable = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "indicator",
			Name:      "unavailable_total",
			Help:      "Indicators omitted from an analysis, by reason",
		},
		[]string{"indicator", "reason"},
	)

	IndicatorDegenerate = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finsignal",
			Subsystem: "indicator",
			Name:      "degenerate_total",
			Help:      "Indicators whose current value used the epsilon denominator",
		},
		[]string{"indicator"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(IndicatorLatency, IndicatorUnavailable, IndicatorDegenerate)
	})
}

// EngineObserver feeds indicator outcomes into the collectors above and logs
// anything other than a plain short-history omission.
type EngineObserver struct {
	log *applogger.Logger
}

func NewEngineObserver(l *applogger.Logger) *EngineObserver {
	Register()
	if l == nil {
		l = applogger.Nop()
	}
	return &EngineObserver{log: l.With(applogger.String("component", "indicators"))}
}

func (o *EngineObserver) Observe(out indicators.Outcome) {
	kind := string(out.Kind)
	IndicatorLatency.WithLabelValues(kind).Observe(out.Elapsed.Seconds())

	if out.Degenerate {
		IndicatorDegenerate.WithLabelValues(kind).Inc()
	}
	if out.Available() {
		return
	}

	reason := "error"
	if apperr.IsInsufficientDataError(out.Err) {
		reason = "insufficient_data"
	}
	IndicatorUnavailable.WithLabelValues(kind, reason).Inc()

	if reason == "error" {
		o.log.Error("indicator failed",
			applogger.String("indicator", kind),
			applogger.Error(out.Err),
		)
	}
}
