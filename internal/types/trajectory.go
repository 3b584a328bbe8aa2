package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// TargetPosition is a signed exposure multiple produced by a strategy for one
// bar: 0 is flat, 1 fully long, -1 fully short, magnitudes above 1 leveraged.
type TargetPosition = float64

// StrategySeries is the output of a signal generator: one target position and
// one asset return per input bar, aligned by index with the bar table.
type StrategySeries struct {
	// Positions holds the per-bar target exposure.
	Positions []float64
	// AssetReturns holds the per-bar underlying price return. NaN where the
	// return is undefined (first bar, or non-positive prices in the ratio).
	AssetReturns []float64
}

// TrajectoryRow is one realized bar of the simulated account. Rows are
// append-only: once written by the simulator they are never mutated, which
// keeps the sequential-dependency chain explicit.
type TrajectoryRow struct {
	// Time is the bar timestamp.
	Time time.Time `yaml:"time" json:"time"`
	// Close is the bar close price used for marking to market.
	Close float64 `yaml:"close" json:"close"`
	// Position is the target exposure the simulator moved to at this bar.
	Position float64 `yaml:"position" json:"position"`
	// AssetReturn is the bar-over-bar underlying return from the strategy.
	AssetReturn float64 `yaml:"asset_return" json:"asset_return"`
	// StrategyReturn is net_worth[t]/net_worth[t-1] - 1, 0 when the previous
	// net worth is zero.
	StrategyReturn float64 `yaml:"strategy_return" json:"strategy_return"`
	// Cash is the realized cash balance after any transaction at this bar.
	Cash float64 `yaml:"cash" json:"cash"`
	// Quantity is the realized quantity held after any transaction.
	Quantity float64 `yaml:"quantity" json:"quantity"`
	// NAV is quantity * close.
	NAV float64 `yaml:"nav" json:"nav"`
	// NetWorth is cash + NAV.
	NetWorth float64 `yaml:"net_worth" json:"net_worth"`
	// EntryPrice is the price at which the current non-flat position was
	// opened. None while flat.
	EntryPrice optional.Option[float64] `yaml:"entry_price,omitempty" json:"entry_price,omitempty"`
	// TransactionCost is the cost charged at this bar, 0 when no transition occurred.
	TransactionCost float64 `yaml:"transaction_cost" json:"transaction_cost"`
	// Reward is the realize-on-close reward. Zero on every bar that does not
	// fully close a position, and always zero under mark-to-market accounting.
	Reward float64 `yaml:"reward" json:"reward"`
}

// Trajectory is the complete simulated account history of one run.
type Trajectory struct {
	// Rows holds one realized row per input bar, in timestamp order.
	Rows []TrajectoryRow
	// Closed reports whether the run ended by fully closing a position under
	// the realize-on-close policy.
	Closed bool
	// ClosedAt is the index of the closing bar when Closed is true.
	ClosedAt int
}

// NetWorths extracts the net worth series from the trajectory.
func (t Trajectory) NetWorths() []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.NetWorth
	}

	return out
}

// StrategyReturns extracts the per-bar strategy return series.
func (t Trajectory) StrategyReturns() []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.StrategyReturn
	}

	return out
}

// Positions extracts the realized position series.
func (t Trajectory) Positions() []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Position
	}

	return out
}

// Times extracts the timestamp series.
func (t Trajectory) Times() []time.Time {
	out := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Time
	}

	return out
}
