package simulator

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/alphatrader/alphatrader/internal/logger"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// AccountingPolicy selects how the simulator books per-bar results.
type AccountingPolicy string

const (
	// AccountingMarkToMarket compounds net worth on every bar regardless of
	// whether a position was closed. Used by the reference strategies.
	AccountingMarkToMarket AccountingPolicy = "mark_to_market"
	// AccountingRealizeOnClose emits a reward only when a position fully
	// closes, and ends the episode at that bar. Used by episodic consumers.
	AccountingRealizeOnClose AccountingPolicy = "realize_on_close"
)

// Config parameterizes one simulation run.
type Config struct {
	// InitialCash is the starting cash balance of the account.
	InitialCash float64 `yaml:"initial_cash" validate:"gt=0"`
	// CostRate is the fraction of traded notional charged on every transition.
	CostRate float64 `yaml:"cost_rate" validate:"gte=0,lt=1"`
	// Accounting selects the booking policy.
	Accounting AccountingPolicy `yaml:"accounting" validate:"oneof=mark_to_market realize_on_close"`
	// RegimeGated enables the regime transition gate on bars carrying a
	// bull/bear label. Bars without a label pass targets through unchanged.
	RegimeGated bool `yaml:"regime_gated"`
}

// DefaultConfig returns the standard simulation parameters: one unit of
// capital, 0.1% venue fees, mark-to-market booking, gating off.
func DefaultConfig() Config {
	return Config{
		InitialCash: 100_000,
		CostRate:    0.001,
		Accounting:  AccountingMarkToMarket,
		RegimeGated: false,
	}
}

// TradingSimulator replays a target-position series against a bar table and
// produces the realized account trajectory. It is the single owner of the
// account state for the duration of one run; rows are appended once and never
// rewritten.
type TradingSimulator struct {
	config Config
	cost   CostModel
	log    *logger.Logger
}

// NewTradingSimulator validates the configuration and builds a simulator.
func NewTradingSimulator(config Config, log *logger.Logger) (*TradingSimulator, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid simulator config", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	var cost CostModel = NewZeroCostModel()
	if config.CostRate > 0 {
		cost = NewRateCostModel(config.CostRate)
	}

	return &TradingSimulator{
		config: config,
		cost:   cost,
		log:    log,
	}, nil
}

// Run simulates the account bar by bar. Bars must be in strictly increasing
// timestamp order; unsorted input is rejected rather than silently reordered.
// A missing close price is fatal for the run. All other per-bar anomalies
// degrade to a zero-cost no-op transition.
//
// Under realize-on-close accounting the run ends at the bar that fully closes
// a position; the returned trajectory is truncated there and marked Closed.
func (s *TradingSimulator) Run(bars []types.Bar, series types.StrategySeries) (types.Trajectory, error) {
	if len(bars) == 0 {
		return types.Trajectory{}, errors.New(errors.ErrCodeEmptyDataset, "no bars to simulate")
	}

	if len(series.Positions) != len(bars) || len(series.AssetReturns) != len(bars) {
		return types.Trajectory{}, errors.Newf(errors.ErrCodeSimulationFailed,
			"signal series length mismatch: %d positions, %d returns, %d bars",
			len(series.Positions), len(series.AssetReturns), len(bars))
	}

	trajectory := types.Trajectory{
		Rows: make([]types.TrajectoryRow, 0, len(bars)),
	}

	cash := s.config.InitialCash
	quantity := 0.0
	position := 0.0
	netWorth := s.config.InitialCash
	entryPrice := optional.None[float64]()

	for i, bar := range bars {
		if i > 0 && !bar.Time.After(bars[i-1].Time) {
			return types.Trajectory{}, errors.Wrap(errors.ErrCodeNonMonotonicTimestamps, "bars out of order",
				errors.NewBarErrorf(i, bar.Time.Format("2006-01-02T15:04:05Z07:00"),
					"timestamp does not increase over previous bar"))
		}

		price := bar.Close
		if math.IsNaN(price) {
			return types.Trajectory{}, errors.Wrap(errors.ErrCodeMissingPrice, "missing close price",
				errors.NewBarErrorf(i, bar.Time.Format("2006-01-02T15:04:05Z07:00"), "bar has no close price"))
		}

		target := series.Positions[i]
		if math.IsNaN(target) || price <= 0 {
			// Anomalous bar: hold the previous exposure at zero cost.
			target = position
		}

		if s.config.RegimeGated {
			target = gateTarget(position, target, bar.Regime)
		}

		transactionCost := 0.0
		if target != position {
			targetQuantity := rebalanceQuantity(target, netWorth, price, quantity, s.config.CostRate)
			delta := targetQuantity - quantity
			transactionCost = s.cost.Cost(price, delta)

			cash -= price*delta + transactionCost
			quantity = targetQuantity
		}

		nav := quantity * price
		newNetWorth := cash + nav

		strategyReturn := 0.0
		if netWorth != 0 {
			strategyReturn = newNetWorth/netWorth - 1
		}

		reward := 0.0
		closed := false
		if s.config.Accounting == AccountingRealizeOnClose && position != 0 && target == 0 {
			reward = s.roundTripReward(position, entryPrice, price)
			closed = true
		}

		entryPrice = nextEntryPrice(position, target, price, entryPrice)
		position = target
		netWorth = newNetWorth

		trajectory.Rows = append(trajectory.Rows, types.TrajectoryRow{
			Time:            bar.Time,
			Close:           price,
			Position:        position,
			AssetReturn:     series.AssetReturns[i],
			StrategyReturn:  strategyReturn,
			Cash:            cash,
			Quantity:        quantity,
			NAV:             nav,
			NetWorth:        netWorth,
			EntryPrice:      entryPrice,
			TransactionCost: transactionCost,
			Reward:          reward,
		})

		if closed {
			trajectory.Closed = true
			trajectory.ClosedAt = i
			s.log.Debug("episode closed",
				zap.Int("bar", i),
				zap.Float64("reward", reward),
				zap.Float64("net_worth", netWorth))

			break
		}
	}

	return trajectory, nil
}

// RunEpisodes repeatedly simulates under realize-on-close accounting,
// restarting with fresh capital on the bar after each close, until the bars
// are exhausted. Each returned trajectory is one complete episode; a final
// episode that never closes is included as-is.
func (s *TradingSimulator) RunEpisodes(bars []types.Bar, series types.StrategySeries) ([]types.Trajectory, error) {
	if s.config.Accounting != AccountingRealizeOnClose {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration,
			"episodic runs require realize_on_close accounting")
	}

	var episodes []types.Trajectory

	offset := 0
	for offset < len(bars) {
		episode, err := s.Run(bars[offset:], types.StrategySeries{
			Positions:    series.Positions[offset:],
			AssetReturns: series.AssetReturns[offset:],
		})
		if err != nil {
			return nil, err
		}

		episodes = append(episodes, episode)
		if !episode.Closed {
			break
		}

		offset += episode.ClosedAt + 1
	}

	return episodes, nil
}

// roundTripReward books the exponential of the round-trip return, adjusted
// for the entry and exit fees, with the sign flipped for short positions.
// An unknown entry price books a neutral reward of one.
func (s *TradingSimulator) roundTripReward(position float64, entryPrice optional.Option[float64], exitPrice float64) float64 {
	entry, err := entryPrice.Take()
	if err != nil || entry <= 0 {
		return 1
	}

	roundTrip := exitPrice/entry - 1 - 2*s.config.CostRate
	if position < 0 {
		roundTrip = -roundTrip
	}

	return math.Exp(roundTrip)
}

// rebalanceQuantity sizes the holding for the target exposure. A long-side
// buy is sized against fee-discounted capital so the transaction cost is
// funded by the same cash that pays for the fill; when the buy also covers a
// short, the fee on the covered leg is set aside first. Sells and short
// entries need no adjustment because the fee comes out of the sale proceeds.
func rebalanceQuantity(target, netWorth, price, quantity, costRate float64) float64 {
	raw := target * netWorth / price
	if target <= 0 || raw <= quantity {
		return raw
	}

	fundable := netWorth - costRate*price*math.Max(-quantity, 0)

	return target * fundable / (price * (1 + costRate))
}

// nextEntryPrice records the price when the account transitions into a
// non-flat position from flat or from the opposite sign, keeps the existing
// entry on same-sign resizes, and clears it on a return to flat.
func nextEntryPrice(previous, target, price float64, current optional.Option[float64]) optional.Option[float64] {
	switch {
	case target == 0:
		return optional.None[float64]()
	case previous == 0 || previous*target < 0:
		return optional.Some(price)
	default:
		return current
	}
}
