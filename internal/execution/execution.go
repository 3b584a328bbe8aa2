// Package execution defines the boundary between the simulated account and a
// live venue. The backtest core only consumes this contract: once per run it
// reports the final row's target so an adapter can reconcile a real account
// with the simulated one.
package execution

import (
	"context"
)

// Intent is the discrete action an adapter derives from an exposure change.
type Intent string

const (
	IntentHold       Intent = "hold"
	IntentOpenLong   Intent = "open_long"
	IntentCloseLong  Intent = "close_long"
	IntentOpenShort  Intent = "open_short"
	IntentCloseShort Intent = "close_short"
	IntentFlip       Intent = "flip"
)

// ExecutionAdapter turns an exposure transition into a venue action. The core
// calls it at most once per run boundary; adapters own any venue session,
// credentials and retries.
type ExecutionAdapter interface {
	// Execute carries out the intent for the symbol. Implementations must be
	// safe to call with IntentHold, which is always a no-op.
	Execute(ctx context.Context, symbol string, intent Intent, targetExposure float64) error
}

// ResolveIntent maps an exposure transition to its intent. It is total: every
// (current, target) pair resolves to exactly one intent.
func ResolveIntent(current, target float64) Intent {
	switch {
	case current == target:
		return IntentHold
	case current == 0 && target > 0:
		return IntentOpenLong
	case current == 0 && target < 0:
		return IntentOpenShort
	case current > 0 && target == 0:
		return IntentCloseLong
	case current < 0 && target == 0:
		return IntentCloseShort
	case current*target < 0:
		return IntentFlip
	case current > 0:
		// Same-sign long resize.
		if target > current {
			return IntentOpenLong
		}

		return IntentCloseLong
	default:
		// Same-sign short resize.
		if target < current {
			return IntentOpenShort
		}

		return IntentCloseShort
	}
}

// NopAdapter discards every intent. It is the default adapter for pure
// backtests, where no venue exists to reconcile against.
type NopAdapter struct{}

func NewNopAdapter() *NopAdapter {
	return &NopAdapter{}
}

func (a *NopAdapter) Execute(ctx context.Context, symbol string, intent Intent, targetExposure float64) error {
	return nil
}
