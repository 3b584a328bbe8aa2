package indicator

import (
	"fmt"
	"math"

	"github.com/alphatrader/alphatrader/internal/types"
)

// MayerMultiple is the close price divided by its long simple moving average.
// Values above 1 mean the market trades above trend.
type MayerMultiple struct {
	period int
}

// NewMayerMultiple creates a new mayer multiple indicator with the
// conventional 200-bar trend period.
func NewMayerMultiple() Indicator {
	return &MayerMultiple{
		period: 200,
	}
}

// Name returns the name of the indicator.
func (m *MayerMultiple) Name() types.IndicatorType {
	return types.IndicatorTypeMayerMultiple
}

// Config configures the indicator. Expected parameters: period (int).
func (m *MayerMultiple) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// Compute returns the mayer multiple column for the given bars.
func (m *MayerMultiple) Compute(bars []types.Bar) []float64 {
	closes := sourceSeries(bars, SourceClose)
	trend := SimpleMovingAverage(closes, m.period)

	out := nanSeries(len(bars))
	for i := range out {
		if math.IsNaN(trend[i]) || trend[i] == 0 {
			continue
		}

		out[i] = closes[i] / trend[i]
	}

	return out
}
