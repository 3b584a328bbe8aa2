package strategy

import (
	"math"

	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// Strategy maps an ordered bar table to a per-bar target position and the
// bar-level asset return. Implementations must be pure functions of the input
// bars and their fixed parameters: no side effects, no hidden external state.
type Strategy interface {
	// Name returns the strategy name used in reports.
	Name() string
	// GenerateSignals produces the position and asset-return columns for the
	// given bars. Both output series are aligned by index with the input.
	GenerateSignals(bars []types.Bar) (types.StrategySeries, error)
}

// MaxLeverage bounds the magnitude any strategy may request. A target outside
// [-MaxLeverage, MaxLeverage] is a contract violation, not a clamp.
const MaxLeverage = 2.0

// ValidateSeries enforces the strategy contract on a generated series: every
// bar has exactly one defined position within the declared range, and the
// series lengths match the bar table. Violations are fatal; the strategy must
// be corrected, not patched downstream.
func ValidateSeries(series types.StrategySeries, barCount int) error {
	if len(series.Positions) != barCount || len(series.AssetReturns) != barCount {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"signal series length mismatch: %d positions, %d returns, %d bars",
			len(series.Positions), len(series.AssetReturns), barCount)
	}

	for i, position := range series.Positions {
		if math.IsNaN(position) {
			return errors.Wrap(errors.ErrCodePositionUndefined, "position undefined",
				errors.NewBarErrorf(i, "", "strategy left the target position undefined"))
		}

		if math.Abs(position) > MaxLeverage {
			return errors.Wrap(errors.ErrCodePositionOutOfRange, "position out of range",
				errors.NewBarErrorf(i, "", "target position %v exceeds the declared range [%v, %v]",
					position, -MaxLeverage, MaxLeverage))
		}
	}

	return nil
}

// closeReturns computes the close-over-previous-close asset return column.
// The first bar and any bar with a non-positive price in the ratio are NaN.
func closeReturns(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))

	for i := range bars {
		if i == 0 || bars[i-1].Close <= 0 || bars[i].Close <= 0 {
			out[i] = math.NaN()

			continue
		}

		out[i] = bars[i].Close/bars[i-1].Close - 1
	}

	return out
}

// shiftForward delays a position series by one bar so that a signal computed
// at bar t is only acted on at bar t+1, preventing look-ahead bias. The first
// bar resolves to flat.
func shiftForward(positions []float64) []float64 {
	out := make([]float64, len(positions))
	if len(positions) == 0 {
		return out
	}

	out[0] = 0
	copy(out[1:], positions[:len(positions)-1])

	return out
}

// sign returns -1, 0 or 1. NaN maps to 0, the flat default for bars where a
// required indicator has not warmed up yet.
func sign(value float64) float64 {
	switch {
	case math.IsNaN(value):
		return 0
	case value > 0:
		return 1
	case value < 0:
		return -1
	default:
		return 0
	}
}
