package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingMeanMasksLookback(t *testing.T) {
	out := rollingMean([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-12)
	assert.InDelta(t, 4.0, out[4], 1e-12)
}

func TestRollingMeanSkipsLeadingNaN(t *testing.T) {
	in := []float64{math.NaN(), math.NaN(), 3, 6, 9}
	out := rollingMean(in, 3)
	assert.True(t, math.IsNaN(out[3]))
	assert.InDelta(t, 6.0, out[4], 1e-12)
}

func TestRollingMeanShortInput(t *testing.T) {
	out := rollingMean([]float64{1, 2}, 3)
	assert.Len(t, out, 2)
	assert.True(t, math.IsNaN(out[1]))
}

func TestRollingMeanRecoversAfterGap(t *testing.T) {
	out := rollingMean([]float64{1, 2, math.NaN(), 4, 5, 6}, 2)
	assert.True(t, math.IsNaN(out[2]))
	assert.True(t, math.IsNaN(out[3]))
	assert.InDelta(t, 4.5, out[4], 1e-12)
	assert.InDelta(t, 5.5, out[5], 1e-12)
}

func TestMeansAreExactOnConstantInput(t *testing.T) {
	for _, level := range []float64{0.1, 3.3, 50, 12345.67} {
		in := make([]float64, 60)
		for i := range in {
			in[i] = level
		}
		sma := rollingMean(in, 20)
		ema := ewmMean(in, 12)
		for i := 19; i < len(in); i++ {
			assert.Equal(t, level, sma[i], "sma at %v, index %d", level, i)
		}
		for i := range in {
			assert.Equal(t, level, ema[i], "ema at %v, index %d", level, i)
		}
	}
}

func TestRollingStdIsSampleStd(t *testing.T) {
	out := rollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)
	assert.InDelta(t, 2*math.Sqrt(8.0/7.0), out[7], 1e-9)
}

func TestRollingMinMax(t *testing.T) {
	in := []float64{5, 1, 4, 2, 8}
	assert.Equal(t, 1.0, rollingMin(in, 3)[3])
	assert.Equal(t, 8.0, rollingMax(in, 3)[4])
	assert.True(t, math.IsNaN(rollingMax(in, 3)[1]))
}

func TestEWMMeanAdjustedWeights(t *testing.T) {
	out := ewmMean([]float64{1, 2, 3}, 3)
	assert.InDelta(t, 1.0, out[0], 1e-12)
	assert.InDelta(t, 2.5/1.5, out[1], 1e-12)
	assert.InDelta(t, 4.25/1.75, out[2], 1e-12)
}

func TestEWMMeanCarriesThroughNaN(t *testing.T) {
	out := ewmMean([]float64{math.NaN(), 4, math.NaN()}, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.InDelta(t, 4.0, out[1], 1e-12)
	assert.InDelta(t, 4.0, out[2], 1e-12)
}

func TestTailKeepsLastFiniteValuesAndNeverNil(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 4}, tail([]float64{1, math.NaN(), 3, 4}, 3))
	assert.Equal(t, []float64{3, 4}, tail([]float64{1, math.NaN(), 3, 4}, 2))
	got := tail([]float64{math.NaN()}, 30)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
