package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SeriesTestSuite struct {
	suite.Suite
}

func TestSeriesSuite(t *testing.T) {
	suite.Run(t, new(SeriesTestSuite))
}

func (suite *SeriesTestSuite) TestSimpleMovingAverage() {
	values := []float64{1, 2, 3, 4, 5}
	result := SimpleMovingAverage(values, 3)

	suite.True(math.IsNaN(result[0]))
	suite.True(math.IsNaN(result[1]))
	suite.InDelta(2.0, result[2], 1e-9)
	suite.InDelta(3.0, result[3], 1e-9)
	suite.InDelta(4.0, result[4], 1e-9)
}

func (suite *SeriesTestSuite) TestSimpleMovingAverageShortInput() {
	result := SimpleMovingAverage([]float64{1, 2}, 5)
	for _, v := range result {
		suite.True(math.IsNaN(v))
	}
}

func (suite *SeriesTestSuite) TestExponentialMovingAverageSeed() {
	values := []float64{2, 4, 6, 8}
	result := ExponentialMovingAverage(values, 3)

	suite.True(math.IsNaN(result[0]))
	suite.True(math.IsNaN(result[1]))
	// Seeded with the SMA of the first three values
	suite.InDelta(4.0, result[2], 1e-9)
	// alpha = 2/(3+1) = 0.5
	suite.InDelta(8*0.5+4*0.5, result[3], 1e-9)
}

func (suite *SeriesTestSuite) TestExponentialMovingAverageConstantSeries() {
	values := []float64{5, 5, 5, 5, 5, 5}
	result := ExponentialMovingAverage(values, 3)

	for i := 2; i < len(result); i++ {
		suite.InDelta(5.0, result[i], 1e-9)
	}
}

func (suite *SeriesTestSuite) TestRelativeStrengthIndexAllGains() {
	values := []float64{1, 2, 3, 4, 5, 6}
	result := RelativeStrengthIndex(values, 3)

	suite.True(math.IsNaN(result[2]))
	suite.InDelta(100.0, result[3], 1e-9)
	suite.InDelta(100.0, result[5], 1e-9)
}

func (suite *SeriesTestSuite) TestRelativeStrengthIndexAlternating() {
	values := []float64{10, 11, 10, 11, 10, 11}
	result := RelativeStrengthIndex(values, 2)

	for i := 2; i < len(result); i++ {
		suite.False(math.IsNaN(result[i]))
		suite.GreaterOrEqual(result[i], 0.0)
		suite.LessOrEqual(result[i], 100.0)
	}
}

func (suite *SeriesTestSuite) TestRollingMedianOddWindow() {
	values := []float64{3, 1, 2, 5, 4}
	result := RollingMedian(values, 3)

	suite.True(math.IsNaN(result[1]))
	suite.InDelta(2.0, result[2], 1e-9)
	suite.InDelta(2.0, result[3], 1e-9)
	suite.InDelta(4.0, result[4], 1e-9)
}

func (suite *SeriesTestSuite) TestRollingMedianEvenWindow() {
	values := []float64{1, 3, 2, 4}
	result := RollingMedian(values, 2)

	suite.InDelta(2.0, result[1], 1e-9)
	suite.InDelta(2.5, result[2], 1e-9)
	suite.InDelta(3.0, result[3], 1e-9)
}

func (suite *SeriesTestSuite) TestRollingMedianDoesNotMutateInput() {
	values := []float64{3, 1, 2}
	RollingMedian(values, 3)
	suite.Equal([]float64{3, 1, 2}, values)
}

func (suite *SeriesTestSuite) TestRollingStdDevConstantSeries() {
	values := []float64{4, 4, 4, 4}
	result := RollingStdDev(values, 2)

	suite.True(math.IsNaN(result[0]))
	for i := 1; i < len(result); i++ {
		suite.InDelta(0.0, result[i], 1e-9)
	}
}

func (suite *SeriesTestSuite) TestRollingStdDevKnownValue() {
	values := []float64{1, 3}
	result := RollingStdDev(values, 2)

	// Population stdev of {1, 3} is 1
	suite.InDelta(1.0, result[1], 1e-9)
}

func (suite *SeriesTestSuite) TestReturns() {
	values := []float64{100, 110, 99}
	result := Returns(values)

	suite.True(math.IsNaN(result[0]))
	suite.InDelta(0.10, result[1], 1e-9)
	suite.InDelta(-0.10, result[2], 1e-9)
}

func (suite *SeriesTestSuite) TestReturnsNonPositivePrices() {
	values := []float64{100, 0, 100, -5}
	result := Returns(values)

	suite.True(math.IsNaN(result[1]))
	suite.True(math.IsNaN(result[2]))
	suite.True(math.IsNaN(result[3]))
}

func (suite *SeriesTestSuite) TestExpandingZScore() {
	values := []float64{1, 2, 3}
	result := ExpandingZScore(values)

	suite.True(math.IsNaN(result[0]))
	suite.False(math.IsNaN(result[1]))
	suite.Greater(result[2], 0.0)
}

func (suite *SeriesTestSuite) TestClamp01() {
	suite.InDelta(0.5, Clamp01(5, 0, 10), 1e-9)
	suite.InDelta(0.0, Clamp01(-1, 0, 10), 1e-9)
	suite.InDelta(1.0, Clamp01(11, 0, 10), 1e-9)
	suite.True(math.IsNaN(Clamp01(math.NaN(), 0, 10)))
	suite.True(math.IsNaN(Clamp01(5, 10, 0)))
}
