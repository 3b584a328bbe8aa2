package simulator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/alphatrader/alphatrader/internal/types"
)

// gateTarget applies the regime transition rules to a requested target. It is
// a total function: every (previous, target, regime) combination maps to
// exactly one allowed exposure.
//
// Rules, in order:
//
//  1. Closing to flat is always allowed.
//  2. A bar without a regime label passes the target through unchanged.
//  3. Exposure against the labeled regime is capped at full size; leverage is
//     only available in the direction the regime confirms.
//  4. Leveraged exposure with the regime must be scaled into: it is reachable
//     only from an existing same-direction position of at least full size,
//     never straight from flat or from the opposite side.
func gateTarget(previous, target float64, regime optional.Option[types.Regime]) float64 {
	if target == 0 {
		return 0
	}

	label, err := regime.Take()
	if err != nil {
		return target
	}

	aligned := (target > 0 && label == types.RegimeBull) ||
		(target < 0 && label == types.RegimeBear)

	direction := 1.0
	if target < 0 {
		direction = -1
	}

	magnitude := math.Abs(target)

	switch {
	case !aligned:
		return direction * math.Min(magnitude, 1)
	case magnitude > 1 && (previous*target <= 0 || math.Abs(previous) < 1):
		return direction
	default:
		return target
	}
}
