package simulator

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/alphatrader/alphatrader/internal/logger"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

func barsFromCloses(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func seriesFor(positions []float64, bars []types.Bar) types.StrategySeries {
	returns := make([]float64, len(bars))
	for i := range bars {
		if i == 0 {
			returns[i] = math.NaN()

			continue
		}

		returns[i] = bars[i].Close/bars[i-1].Close - 1
	}

	return types.StrategySeries{Positions: positions, AssetReturns: returns}
}

type SimulatorTestSuite struct {
	suite.Suite
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func (suite *SimulatorTestSuite) newSimulator(config Config) *TradingSimulator {
	sim, err := NewTradingSimulator(config, logger.NewNopLogger())
	suite.Require().NoError(err)

	return sim
}

func (suite *SimulatorTestSuite) TestConfigValidation() {
	_, err := NewTradingSimulator(Config{
		InitialCash: 0,
		CostRate:    0.001,
		Accounting:  AccountingMarkToMarket,
	}, nil)
	suite.Error(err)

	_, err = NewTradingSimulator(Config{
		InitialCash: 1000,
		CostRate:    0.001,
		Accounting:  "realize_eventually",
	}, nil)
	suite.Error(err)
}

// Constant full exposure over a 21% price rise with zero costs books exactly
// 21% of the initial balance and no trades.
func (suite *SimulatorTestSuite) TestConstantGrowthFrictionless() {
	config := DefaultConfig()
	config.InitialCash = 100_000
	config.CostRate = 0

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 110, 121)
	trajectory, err := sim.Run(bars, seriesFor([]float64{1, 1, 1}, bars))
	suite.NoError(err)
	suite.Len(trajectory.Rows, 3)

	last := trajectory.Rows[2]
	suite.InDelta(100_000*0.21, last.NetWorth-config.InitialCash, 1e-6)

	for _, row := range trajectory.Rows {
		suite.Equal(0.0, row.TransactionCost)
	}
}

// A 0 -> 1 -> 0 round trip at a flat price charges the fee twice and nothing else.
func (suite *SimulatorTestSuite) TestRoundTripCosts() {
	config := DefaultConfig()
	config.InitialCash = 100_000
	config.CostRate = 0.001

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100, 100)
	trajectory, err := sim.Run(bars, seriesFor([]float64{0, 1, 0}, bars))
	suite.NoError(err)

	quantity := trajectory.Rows[1].Quantity
	suite.InDelta(100_000/(100*1.001), quantity, 1e-9)

	suite.Equal(0.0, trajectory.Rows[0].TransactionCost)
	suite.InDelta(100*quantity*0.001, trajectory.Rows[1].TransactionCost, 1e-9)
	suite.InDelta(100*quantity*0.001, trajectory.Rows[2].TransactionCost, 1e-9)

	pnl := trajectory.Rows[2].NetWorth - config.InitialCash
	suite.InDelta(-2*(100*quantity*0.001), pnl, 1e-9)
}

// A full entry must fund its own fee: sizing never spends more cash than the
// account holds.
func (suite *SimulatorTestSuite) TestEntryFeeFundedFromCash() {
	config := DefaultConfig()
	config.InitialCash = 100_000
	config.CostRate = 0.001

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100)
	trajectory, err := sim.Run(bars, seriesFor([]float64{1, 1}, bars))
	suite.NoError(err)

	entry := trajectory.Rows[0]
	suite.InDelta(0.0, entry.Cash, 1e-9)
	suite.GreaterOrEqual(entry.Cash, -1e-9)
	suite.InDelta(100_000/(100*1.001), entry.Quantity, 1e-9)
}

// Flipping from a full short to a full long funds both the cover fee and the
// entry fee from the account.
func (suite *SimulatorTestSuite) TestFlipFundsCoverAndEntryFees() {
	config := DefaultConfig()
	config.InitialCash = 100_000
	config.CostRate = 0.001

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100, 100)
	trajectory, err := sim.Run(bars, seriesFor([]float64{0, -1, 1}, bars))
	suite.NoError(err)

	flipped := trajectory.Rows[2]
	suite.GreaterOrEqual(flipped.Cash, -1e-9)
	suite.Greater(flipped.Quantity, 0.0)
}

// net_worth == cash + quantity*close must hold on every bar.
func (suite *SimulatorTestSuite) TestNetWorthInvariant() {
	config := DefaultConfig()

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 105, 95, 102, 99, 104)
	positions := []float64{0, 1, 1, -1, 0.5, 0}

	trajectory, err := sim.Run(bars, seriesFor(positions, bars))
	suite.NoError(err)

	for _, row := range trajectory.Rows {
		expected := row.Cash + row.Quantity*row.Close
		suite.InEpsilon(expected, row.NetWorth, 1e-6)
	}
}

func (suite *SimulatorTestSuite) TestMissingCloseIsFatal() {
	sim := suite.newSimulator(DefaultConfig())

	bars := barsFromCloses(100, 100, 100)
	bars[1].Close = math.NaN()

	_, err := sim.Run(bars, seriesFor([]float64{0, 0, 0}, bars))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingPrice))
	suite.True(errors.IsBarError(err))
}

func (suite *SimulatorTestSuite) TestUnsortedBarsRejected() {
	sim := suite.newSimulator(DefaultConfig())

	bars := barsFromCloses(100, 101, 102)
	bars[1].Time, bars[2].Time = bars[2].Time, bars[1].Time

	_, err := sim.Run(bars, seriesFor([]float64{0, 0, 0}, bars))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNonMonotonicTimestamps))
}

func (suite *SimulatorTestSuite) TestUndefinedTargetHoldsPosition() {
	config := DefaultConfig()
	config.CostRate = 0.001

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100, 100)
	series := seriesFor([]float64{1, math.NaN(), 1}, bars)

	trajectory, err := sim.Run(bars, series)
	suite.NoError(err)

	// The anomalous bar holds the previous exposure at zero cost
	suite.Equal(trajectory.Rows[0].Position, trajectory.Rows[1].Position)
	suite.Equal(0.0, trajectory.Rows[1].TransactionCost)
	suite.Equal(0.0, trajectory.Rows[2].TransactionCost)
}

func (suite *SimulatorTestSuite) TestEntryPriceLifecycle() {
	sim := suite.newSimulator(DefaultConfig())

	bars := barsFromCloses(100, 110, 120, 130)
	trajectory, err := sim.Run(bars, seriesFor([]float64{0, 1, 1, 0}, bars))
	suite.NoError(err)

	suite.True(trajectory.Rows[0].EntryPrice.IsNone())

	entry, err := trajectory.Rows[1].EntryPrice.Take()
	suite.NoError(err)
	suite.Equal(110.0, entry)

	held, err := trajectory.Rows[2].EntryPrice.Take()
	suite.NoError(err)
	suite.Equal(110.0, held)

	suite.True(trajectory.Rows[3].EntryPrice.IsNone())
}

func (suite *SimulatorTestSuite) TestFlipRecordsNewEntry() {
	sim := suite.newSimulator(DefaultConfig())

	bars := barsFromCloses(100, 110, 120)
	trajectory, err := sim.Run(bars, seriesFor([]float64{1, -1, -1}, bars))
	suite.NoError(err)

	entry, err := trajectory.Rows[1].EntryPrice.Take()
	suite.NoError(err)
	suite.Equal(110.0, entry)
}

func (suite *SimulatorTestSuite) TestRealizeOnCloseTerminatesEpisode() {
	config := DefaultConfig()
	config.Accounting = AccountingRealizeOnClose
	config.CostRate = 0

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100, 110, 100, 100)
	trajectory, err := sim.Run(bars, seriesFor([]float64{0, 1, 0, 0, 0}, bars))
	suite.NoError(err)

	suite.True(trajectory.Closed)
	suite.Equal(2, trajectory.ClosedAt)
	suite.Len(trajectory.Rows, 3)

	suite.Equal(0.0, trajectory.Rows[1].Reward)
	// Round trip 100 -> 110 with no fees
	suite.InDelta(math.Exp(0.10), trajectory.Rows[2].Reward, 1e-9)
}

func (suite *SimulatorTestSuite) TestRealizeOnCloseShortFlipsSign() {
	config := DefaultConfig()
	config.Accounting = AccountingRealizeOnClose
	config.CostRate = 0

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100, 90)
	trajectory, err := sim.Run(bars, seriesFor([]float64{0, -1, 0}, bars))
	suite.NoError(err)

	suite.True(trajectory.Closed)
	// Short from 100 to 90 is a winning round trip
	suite.InDelta(math.Exp(0.10), trajectory.Rows[2].Reward, 1e-9)
}

func (suite *SimulatorTestSuite) TestRunEpisodes() {
	config := DefaultConfig()
	config.Accounting = AccountingRealizeOnClose
	config.CostRate = 0

	sim := suite.newSimulator(config)

	bars := barsFromCloses(100, 100, 110, 100, 100, 120, 120)
	positions := []float64{0, 1, 0, 0, 1, 0, 0}

	episodes, err := sim.RunEpisodes(bars, seriesFor(positions, bars))
	suite.NoError(err)
	suite.Len(episodes, 3)
	suite.True(episodes[0].Closed)
	suite.True(episodes[1].Closed)
	suite.False(episodes[2].Closed)
}

func (suite *SimulatorTestSuite) TestRunEpisodesRequiresRealizeOnClose() {
	sim := suite.newSimulator(DefaultConfig())

	bars := barsFromCloses(100, 100)
	_, err := sim.RunEpisodes(bars, seriesFor([]float64{0, 0}, bars))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *SimulatorTestSuite) TestEmptyBars() {
	sim := suite.newSimulator(DefaultConfig())

	_, err := sim.Run(nil, types.StrategySeries{})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeEmptyDataset))
}

type GateTestSuite struct {
	suite.Suite
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (suite *GateTestSuite) TestClosingAlwaysAllowed() {
	bull := optional.Some(types.RegimeBull)
	suite.Equal(0.0, gateTarget(2, 0, bull))
	suite.Equal(0.0, gateTarget(-1, 0, bull))
}

func (suite *GateTestSuite) TestUnlabeledBarPassesThrough() {
	none := optional.None[types.Regime]()
	suite.Equal(2.0, gateTarget(0, 2, none))
	suite.Equal(-2.0, gateTarget(0, -2, none))
}

func (suite *GateTestSuite) TestCounterRegimeCappedAtFull() {
	bull := optional.Some(types.RegimeBull)
	suite.Equal(-1.0, gateTarget(0, -2, bull))
	suite.Equal(-1.0, gateTarget(0, -1, bull))

	bear := optional.Some(types.RegimeBear)
	suite.Equal(1.0, gateTarget(0, 2, bear))
}

func (suite *GateTestSuite) TestLeverageMustBeScaledInto() {
	bull := optional.Some(types.RegimeBull)

	// Straight from flat: capped at full size
	suite.Equal(1.0, gateTarget(0, 2, bull))
	// From the opposite side: capped at full size
	suite.Equal(1.0, gateTarget(-1, 2, bull))
	// From an existing full position: allowed
	suite.Equal(2.0, gateTarget(1, 2, bull))

	bear := optional.Some(types.RegimeBear)
	suite.Equal(-1.0, gateTarget(0, -2, bear))
	suite.Equal(-2.0, gateTarget(-1, -2, bear))
}

// Every combination of sign, magnitude and regime resolves to a defined value
// no larger than the requested magnitude.
func (suite *GateTestSuite) TestGateIsTotal() {
	previous := []float64{-2, -1, -0.5, 0, 0.5, 1, 2}
	targets := []float64{-2, -1, -0.5, 0, 0.5, 1, 2}
	regimes := []optional.Option[types.Regime]{
		optional.None[types.Regime](),
		optional.Some(types.RegimeBull),
		optional.Some(types.RegimeBear),
	}

	for _, prev := range previous {
		for _, target := range targets {
			for _, regime := range regimes {
				gated := gateTarget(prev, target, regime)
				suite.False(math.IsNaN(gated))
				suite.LessOrEqual(math.Abs(gated), math.Abs(target))
				// The gate never reverses the requested direction
				suite.GreaterOrEqual(gated*target, 0.0)
			}
		}
	}
}

type CostModelTestSuite struct {
	suite.Suite
}

func TestCostModelSuite(t *testing.T) {
	suite.Run(t, new(CostModelTestSuite))
}

func (suite *CostModelTestSuite) TestRateCost() {
	model := NewRateCostModel(0.001)
	suite.InDelta(100*1000*0.001, model.Cost(100, 1000), 1e-9)
	suite.InDelta(100*1000*0.001, model.Cost(100, -1000), 1e-9)
}

func (suite *CostModelTestSuite) TestZeroCost() {
	model := NewZeroCostModel()
	suite.Equal(0.0, model.Cost(100, 1000))
}
