package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/alphatrader/alphatrader/internal/indicator"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

type RegimeDetectionTestSuite struct {
	suite.Suite
	registry indicator.IndicatorRegistry
}

func TestRegimeDetectionSuite(t *testing.T) {
	suite.Run(t, new(RegimeDetectionTestSuite))
}

func (suite *RegimeDetectionTestSuite) SetupTest() {
	suite.registry = indicator.NewDefaultIndicatorRegistry()

	trend, err := suite.registry.GetIndicator(types.IndicatorTypeMayerMultiple)
	suite.Require().NoError(err)
	suite.Require().NoError(trend.Config(2))
}

func regimeBars(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, len(closes))
	for i, close := range closes {
		bars[i] = types.Bar{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Close: close,
		}
	}

	return bars
}

func (suite *RegimeDetectionTestSuite) TestLabelsFollowTrendPremium() {
	bars := regimeBars(100, 100, 100, 120, 120, 80, 80)

	labeled, err := DetectRegimes(bars, suite.registry)
	suite.NoError(err)
	suite.Len(labeled, len(bars))

	// Trend warmup plus a flat history carries no usable deviation yet.
	suite.True(labeled[0].Regime.IsNone())
	suite.True(labeled[1].Regime.IsNone())
	suite.True(labeled[2].Regime.IsNone())

	// The breakout above trend labels bull, the crash below it bear.
	suite.Equal(types.RegimeBull, labeled[3].Regime.Unwrap())
	suite.Equal(types.RegimeBear, labeled[5].Regime.Unwrap())
}

func (suite *RegimeDetectionTestSuite) TestInputBarsNotMutated() {
	bars := regimeBars(100, 100, 100, 120, 120, 80, 80)

	_, err := DetectRegimes(bars, suite.registry)
	suite.NoError(err)

	for _, bar := range bars {
		suite.True(bar.Regime.IsNone())
	}
}

func (suite *RegimeDetectionTestSuite) TestMissingTrendIndicatorFails() {
	bars := regimeBars(100, 110, 120)

	_, err := DetectRegimes(bars, indicator.NewIndicatorRegistry())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingRegime))
}
