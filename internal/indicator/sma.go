package indicator

import (
	"fmt"

	"github.com/alphatrader/alphatrader/internal/types"
)

// SMA indicator implements Simple Moving Average calculation.
type SMA struct {
	period int
	source string
}

// NewSMA creates a new SMA indicator with default configuration.
func NewSMA() Indicator {
	return &SMA{
		period: 20, // Default period
		source: SourceClose,
	}
}

// Name returns the name of the indicator.
func (s *SMA) Name() types.IndicatorType {
	return types.IndicatorTypeSMA
}

// Config configures the SMA indicator. Expected parameters: period (int),
// optionally followed by a source column name (string).
func (s *SMA) Config(params ...any) error {
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

	s.period = period

	if len(params) == 2 {
		source, ok := params[1].(string)
		if !ok {
			return fmt.Errorf("invalid type for source parameter, expected string")
		}

		s.source = source
	}

	return nil
}

// Compute returns the SMA column for the given bars.
func (s *SMA) Compute(bars []types.Bar) []float64 {
	return SimpleMovingAverage(sourceSeries(bars, s.source), s.period)
}
