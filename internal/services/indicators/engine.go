package indicators

import (
	"fmt"
	"sync"
	"time"

	"FinSignal/internal/domain/models"
	apperr "FinSignal/pkg/errors"
)

// Standard indicator parameters.
const (
	MAPeriod         = 20
	RSIPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignal       = 9
	BollingerPeriod  = 20
	BollingerWidth   = 2.0
	StochasticPeriod = 14
	StochasticD      = 3
	WilliamsRPeriod  = 14
)

// Outcome is the per-indicator record of one engine run.
type Outcome struct {
	Kind   models.IndicatorKind
	Result models.IndicatorResult // nil when unavailable
	Err    error
	// Degenerate is set when epsilon replaced a zero denominator at the
	// current bar. The result is still valid.
	Degenerate bool
	Elapsed    time.Duration
}

// Available reports whether the outcome produced a usable result.
func (o Outcome) Available() bool { return o.Err == nil && o.Result != nil }

// Observer receives every outcome. Implementations must be safe for
// concurrent use when the engine runs in parallel mode.
type Observer interface {
	Observe(o Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(o Outcome)

func (f ObserverFunc) Observe(o Outcome) { f(o) }

type transform struct {
	kind models.IndicatorKind
	fn   func(models.Series) (models.IndicatorResult, bool, error)
}

func defaultTransforms() []transform {
	return []transform{
		{models.KindSMA, func(s models.Series) (models.IndicatorResult, bool, error) {
			r, err := SMA(s, MAPeriod)
			return r, false, err
		}},
		{models.KindEMA, func(s models.Series) (models.IndicatorResult, bool, error) {
			r, err := EMA(s, MAPeriod)
			return r, false, err
		}},
		{models.KindRSI, func(s models.Series) (models.IndicatorResult, bool, error) {
			return rsi(s, RSIPeriod)
		}},
		{models.KindMACD, func(s models.Series) (models.IndicatorResult, bool, error) {
			r, err := MACD(s, MACDFast, MACDSlow, MACDSignal)
			return r, false, err
		}},
		{models.KindBollinger, func(s models.Series) (models.IndicatorResult, bool, error) {
			r, err := Bollinger(s, BollingerPeriod, BollingerWidth)
			return r, false, err
		}},
		{models.KindStochastic, func(s models.Series) (models.IndicatorResult, bool, error) {
			return stochastic(s, StochasticPeriod, StochasticD)
		}},
		{models.KindWilliamsR, func(s models.Series) (models.IndicatorResult, bool, error) {
			return williamsR(s, WilliamsRPeriod)
		}},
	}
}

// Engine runs the indicator library over a series. It holds no per-call
// state and is safe for concurrent use.
type Engine struct {
	parallel   bool
	observer   Observer
	transforms []transform
}

type EngineOption func(*Engine)

// WithParallel runs the transforms in separate goroutines.
func WithParallel(enabled bool) EngineOption {
	return func(e *Engine) { e.parallel = enabled }
}

// WithObserver attaches an observer notified once per transform.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{transforms: defaultTransforms()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute returns the set of indicators that could be computed for series.
func (e *Engine) Compute(series models.Series) models.IndicatorSet {
	set := make(models.IndicatorSet, len(e.transforms))
	for _, o := range e.Run(series) {
		if o.Available() {
			set[o.Kind] = o.Result
		}
	}
	return set
}

// ComputeDetailed is Compute plus the reason each missing indicator is absent.
func (e *Engine) ComputeDetailed(series models.Series) (models.IndicatorSet, map[models.IndicatorKind]error) {
	set := make(models.IndicatorSet, len(e.transforms))
	errs := make(map[models.IndicatorKind]error)
	for _, o := range e.Run(series) {
		if o.Available() {
			set[o.Kind] = o.Result
			continue
		}
		errs[o.Kind] = o.Err
	}
	return set, errs
}

// Run executes every transform and returns one outcome per indicator in
// canonical kind order, regardless of completion order.
func (e *Engine) Run(series models.Series) []Outcome {
	byKind := make(map[models.IndicatorKind]Outcome, len(e.transforms))

	if e.parallel {
		ch := make(chan Outcome, len(e.transforms))
		var wg sync.WaitGroup
		for _, t := range e.transforms {
			wg.Add(1)
			go func(t transform) {
				defer wg.Done()
				ch <- e.runOne(t, series)
			}(t)
		}
		go func() { wg.Wait(); close(ch) }()
		for o := range ch {
			byKind[o.Kind] = o
		}
	} else {
		for _, t := range e.transforms {
			byKind[t.kind] = e.runOne(t, series)
		}
	}

	out := make([]Outcome, 0, len(byKind))
	for _, kind := range models.IndicatorKinds {
		if o, ok := byKind[kind]; ok {
			out = append(out, o)
		}
	}
	return out
}

// runOne isolates a single transform: short series and panics become errors
// on the outcome and never reach the other transforms.
func (e *Engine) runOne(t transform, series models.Series) (out Outcome) {
	start := time.Now()
	out.Kind = t.kind
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Degenerate = false
			out.Err = apperr.Wrapf(apperr.ErrCodeUnexpectedComputation, fmt.Errorf("%v", r), "%s: panic", t.kind)
		}
		out.Elapsed = time.Since(start)
		if e.observer != nil {
			e.observer.Observe(out)
		}
	}()

	if err := checkLength(t.kind, series); err != nil {
		out.Err = err
		return out
	}
	res, degenerate, err := t.fn(series)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res
	out.Degenerate = degenerate
	return out
}
