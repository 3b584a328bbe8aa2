package indicator

import (
	"fmt"

	"github.com/alphatrader/alphatrader/internal/types"
)

// RSI indicator implements Wilder's Relative Strength Index.
type RSI struct {
	period int
	source string
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period: 14, // Default period
		source: SourceClose,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int),
// optionally followed by a source column name (string).
func (r *RSI) Config(params ...any) error {
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

	r.period = period

	if len(params) == 2 {
		source, ok := params[1].(string)
		if !ok {
			return fmt.Errorf("invalid type for source parameter, expected string")
		}

		r.source = source
	}

	return nil
}

// Compute returns the RSI column for the given bars.
func (r *RSI) Compute(bars []types.Bar) []float64 {
	return RelativeStrengthIndex(sourceSeries(bars, r.source), r.period)
}
