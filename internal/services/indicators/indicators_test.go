package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"FinSignal/internal/domain/models"
	apperr "FinSignal/pkg/errors"
)

type TransformTestSuite struct {
	suite.Suite
}

func TestTransformSuite(t *testing.T) {
	suite.Run(t, new(TransformTestSuite))
}

func (suite *TransformTestSuite) TestSMAOnRisingSeries() {
	res, err := SMA(seriesFromCloses(risingCloses(40)), 20)
	suite.Require().NoError(err)
	suite.InDelta(129.5, res.Current, 1e-9)
	suite.Equal(20, res.Period)
	// 40 bars, window 20: positions 19..39 are defined, the last 30 keep 21 of them
	suite.Len(res.Values, 21)
	suite.InDelta(res.Current, res.Values[len(res.Values)-1], 1e-12)
}

func (suite *TransformTestSuite) TestSMAValuesAreTrailingFiniteValues() {
	// a missing close at bar 30 blanks windows 30..49, leaving 11 defined
	// values before the gap and 10 after it
	s := seriesFromCloses(risingCloses(60))
	s[30].Close = math.NaN()
	res, err := SMA(s, 20)
	suite.Require().NoError(err)
	suite.Len(res.Values, 21)
	suite.InDelta(res.Current, res.Values[len(res.Values)-1], 1e-12)
	for _, v := range res.Values {
		suite.False(math.IsNaN(v))
	}
}

func (suite *TransformTestSuite) TestEMAFollowsTrendFromBelow() {
	res, err := EMA(seriesFromCloses(risingCloses(40)), 20)
	suite.Require().NoError(err)
	suite.Less(res.Current, 139.0)
	suite.Greater(res.Current, 129.5)
	suite.Len(res.Values, 30)
}

func (suite *TransformTestSuite) TestRSIRisingSeriesUsesEpsilon() {
	res, degenerate, err := rsi(seriesFromCloses(risingCloses(40)), 14)
	suite.Require().NoError(err)
	suite.True(degenerate)
	suite.InDelta(100-100/(1+1/epsilon), res.Current, 1e-9)
	suite.LessOrEqual(res.Current, 100.0)
}

func (suite *TransformTestSuite) TestRSIMixedMoves() {
	// alternating +2 / -1 moves: avg gain 1.0, avg loss 0.5 over 14 deltas
	closes := []float64{100}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+2)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}
	res, degenerate, err := rsi(seriesFromCloses(closes), 14)
	suite.Require().NoError(err)
	suite.False(degenerate)
	suite.InDelta(100-100/(1+2.0), res.Current, 1e-9)
}

func (suite *TransformTestSuite) TestMACDRisingSeries() {
	res, err := MACD(seriesFromCloses(risingCloses(40)), 12, 26, 9)
	suite.Require().NoError(err)
	suite.Greater(res.MACDLine, 0.0)
	suite.Greater(res.MACDLine, res.SignalLine)
	suite.InDelta(res.MACDLine-res.SignalLine, res.Histogram, 1e-12)
	suite.Len(res.MACDValues, 30)
	suite.Len(res.SignalValues, 30)
}

func (suite *TransformTestSuite) TestBollingerRisingSeries() {
	res, err := Bollinger(seriesFromCloses(risingCloses(40)), 20, 2)
	suite.Require().NoError(err)
	suite.InDelta(129.5, res.MiddleBand, 1e-9)
	suite.InDelta(129.5+2*math.Sqrt(35), res.UpperBand, 1e-6)
	suite.InDelta(129.5-2*math.Sqrt(35), res.LowerBand, 1e-6)
}

func (suite *TransformTestSuite) TestStochasticAndWilliamsRisingSeries() {
	s := seriesFromCloses(risingCloses(40))
	st, err := Stochastic(s, 14, 3)
	suite.Require().NoError(err)
	suite.InDelta(100*13.5/14, st.KPercent, 1e-9)
	suite.InDelta(100*13.5/14, st.DPercent, 1e-9)

	wr, err := WilliamsR(s, 14)
	suite.Require().NoError(err)
	suite.InDelta(-100*0.5/14, wr.Current, 1e-9)
}

func (suite *TransformTestSuite) TestFlatSeriesDoesNotBlowUp() {
	s := flatSeries(40, 100)

	bb, err := Bollinger(s, 20, 2)
	suite.Require().NoError(err)
	suite.Equal(bb.MiddleBand, bb.UpperBand)
	suite.Equal(bb.MiddleBand, bb.LowerBand)
	suite.Equal(100.0, bb.MiddleBand)

	r, degenerate, err := rsi(s, 14)
	suite.Require().NoError(err)
	suite.True(degenerate)
	suite.Equal(0.0, r.Current)

	st, degenerate, err := stochastic(s, 14, 3)
	suite.Require().NoError(err)
	suite.True(degenerate)
	suite.Equal(0.0, st.KPercent)
	suite.Equal(0.0, st.DPercent)

	wr, degenerate, err := williamsR(s, 14)
	suite.Require().NoError(err)
	suite.True(degenerate)
	suite.Equal(0.0, wr.Current)
	suite.False(math.Signbit(wr.Current))
}

func (suite *TransformTestSuite) TestNonFiniteCurrentIsUnexpected() {
	s := seriesFromCloses(risingCloses(25))
	s[len(s)-1].Close = math.NaN()
	_, err := SMA(s, 20)
	suite.Require().Error(err)
	suite.True(apperr.HasCode(err, apperr.ErrCodeUnexpectedComputation))
}

func (suite *TransformTestSuite) TestValueRanges() {
	for seed := int64(1); seed <= 20; seed++ {
		s := randomWalk(120, seed)

		r, err := RSI(s, 14)
		suite.Require().NoError(err)
		for _, v := range append(r.Values, r.Current) {
			suite.GreaterOrEqual(v, 0.0)
			suite.LessOrEqual(v, 100.0)
		}

		st, err := Stochastic(s, 14, 3)
		suite.Require().NoError(err)
		for _, v := range append(append(st.KValues, st.DValues...), st.KPercent, st.DPercent) {
			suite.GreaterOrEqual(v, 0.0)
			suite.LessOrEqual(v, 100.0)
		}

		wr, err := WilliamsR(s, 14)
		suite.Require().NoError(err)
		for _, v := range append(wr.Values, wr.Current) {
			suite.GreaterOrEqual(v, -100.0)
			suite.LessOrEqual(v, 0.0)
		}
	}
}

func (suite *TransformTestSuite) TestResultKinds() {
	var r models.IndicatorResult = models.WilliamsRResult{}
	suite.Equal(models.KindWilliamsR, r.Kind())
}
