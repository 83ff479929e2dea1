package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Window helpers follow pandas semantics: positions before a window fills are
// NaN, never zero. talib pads lookback positions with 0, so every helper masks
// them explicitly.

// epsilon replaces a zero denominator in ratio indicators.
const epsilon = 0.0001

// trailingValues is the number of chart points carried by each result.
const trailingValues = 30

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// firstFinite returns the index of the first finite value, or len(x).
func firstFinite(x []float64) int {
	for i, v := range x {
		if isFinite(v) {
			return i
		}
	}
	return len(x)
}

// windowed runs a talib window function over the finite suffix of x and masks
// the lookback region with NaN.
func windowed(x []float64, period int, fn func([]float64, int) []float64) []float64 {
	out := nanSlice(len(x))
	start := firstFinite(x)
	if period <= 0 || len(x)-start < period {
		return out
	}
	res := fn(x[start:], period)
	for i := period - 1; i < len(res); i++ {
		out[start+i] = res[i]
	}
	return out
}

// rollingMean is a trailing simple mean. Every window is summed on its own
// rather than through a running add/subtract total, so a constant window
// yields the constant exactly. A window holding a non-finite value is NaN.
func rollingMean(x []float64, period int) []float64 {
	out := nanSlice(len(x))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(x); i++ {
		out[i] = windowMean(x[i-period+1 : i+1])
	}
	return out
}

func windowMean(w []float64) float64 {
	sum, constant := 0.0, true
	for _, v := range w {
		if !isFinite(v) {
			return math.NaN()
		}
		sum += v
		constant = constant && v == w[0]
	}
	if constant {
		return w[0]
	}
	return sum / float64(len(w))
}

func rollingMax(x []float64, period int) []float64 {
	return windowed(x, period, talib.Max)
}

func rollingMin(x []float64, period int) []float64 {
	return windowed(x, period, talib.Min)
}

// rollingStd is the trailing sample standard deviation (ddof=1). talib returns
// the population figure, which is rescaled by sqrt(n/(n-1)).
func rollingStd(x []float64, period int) []float64 {
	if period < 2 {
		return nanSlice(len(x))
	}
	scale := math.Sqrt(float64(period) / float64(period-1))
	return windowed(x, period, func(in []float64, p int) []float64 {
		sd := talib.StdDev(in, p, 1.0)
		for i := range sd {
			sd[i] *= scale
		}
		return sd
	})
}

// ewmMean is an exponentially weighted mean with span-derived alpha and
// bias-adjusted weights, folded in as a convex update:
// w = (old*w + x) / (old + 1), where old is the decayed weight of the history.
// The update is skipped when x equals w, so a flat run never drifts. NaN
// inputs decay the history without contributing a value.
func ewmMean(x []float64, span int) []float64 {
	out := nanSlice(len(x))
	if span < 1 {
		return out
	}
	decay := 1.0 - 2.0/(float64(span)+1.0)
	w, oldWeight := math.NaN(), 1.0
	for i, v := range x {
		switch {
		case !isFinite(w):
			if isFinite(v) {
				w = v
			}
		default:
			oldWeight *= decay
			if isFinite(v) {
				if w != v {
					w = (oldWeight*w + v) / (oldWeight + 1)
				}
				oldWeight++
			}
		}
		out[i] = w
	}
	return out
}

// tail keeps the last n finite values of x. The result is never nil.
func tail(x []float64, n int) []float64 {
	out := make([]float64, 0, n)
	for _, v := range x {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
func last(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[len(x)-1]
}
