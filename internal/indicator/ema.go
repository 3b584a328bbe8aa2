package indicator

import (
	"fmt"

	"github.com/alphatrader/alphatrader/internal/types"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
	source string
}

// NewEMA creates a new EMA indicator with default configuration.
func NewEMA() Indicator {
	return &EMA{
		period: 20, // Default period
		source: SourceClose,
	}
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Config configures the EMA indicator. Expected parameters: period (int),
// optionally followed by a source column name (string).
func (e *EMA) Config(params ...any) error {
	if len(params) < 1 || len(params) > 2 {
		return fmt.Errorf("Config expects 1 or 2 parameters: period (int), source (string)")
	}

	period, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return fmt.Errorf("period must be a positive integer, got %d", period)
	}

	e.period = period

	if len(params) == 2 {
		source, ok := params[1].(string)
		if !ok {
			return fmt.Errorf("invalid type for source parameter, expected string")
		}

		e.source = source
	}

	return nil
}

// Compute returns the EMA column for the given bars.
func (e *EMA) Compute(bars []types.Bar) []float64 {
	return ExponentialMovingAverage(sourceSeries(bars, e.source), e.period)
}
