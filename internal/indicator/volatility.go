package indicator

import (
	"fmt"

	"github.com/alphatrader/alphatrader/internal/types"
)

// Volatility is the rolling standard deviation of bar-over-bar close returns.
type Volatility struct {
	window int
}

// NewVolatility creates a new volatility indicator with default configuration.
func NewVolatility() Indicator {
	return &Volatility{
		window: 24,
	}
}

// Name returns the name of the indicator.
func (v *Volatility) Name() types.IndicatorType {
	return types.IndicatorTypeVolatility
}

// Config configures the indicator. Expected parameters: window (int).
func (v *Volatility) Config(params ...any) error {
	if len(params) != 1 {
		return fmt.Errorf("Config expects 1 parameter: window (int)")
	}

	window, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for window parameter, expected int")
	}

	if window <= 1 {
		return fmt.Errorf("window must be greater than 1, got %d", window)
	}

	v.window = window

	return nil
}

// Compute returns the volatility column for the given bars.
func (v *Volatility) Compute(bars []types.Bar) []float64 {
	return RollingStdDev(Returns(sourceSeries(bars, SourceClose)), v.window)
}
