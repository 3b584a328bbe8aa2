package indicator

import (
	"fmt"
	"math"

	"github.com/alphatrader/alphatrader/internal/types"
)

// Ribbon is the spread between a fast and a slow simple moving average of the
// source series. A positive spread marks expanding momentum in the underlying
// flow, a negative one contraction.
type Ribbon struct {
	fastPeriod int
	slowPeriod int
	source     string
}

// NewRibbon creates a new ribbon indicator with default configuration.
func NewRibbon() Indicator {
	return &Ribbon{
		fastPeriod: 30,
		slowPeriod: 60,
		source:     SourceClose,
	}
}

// Name returns the name of the indicator.
func (r *Ribbon) Name() types.IndicatorType {
	return types.IndicatorTypeRibbon
}

// Config configures the ribbon. Expected parameters: fastPeriod (int),
// slowPeriod (int), optionally a source column name (string).
func (r *Ribbon) Config(params ...any) error {
	if len(params) < 2 || len(params) > 3 {
		return fmt.Errorf("Config expects 2 or 3 parameters: fastPeriod (int), slowPeriod (int), source (string)")
	}

	fast, ok := params[0].(int)
	if !ok {
		return fmt.Errorf("invalid type for fastPeriod parameter, expected int")
	}

	slow, ok := params[1].(int)
	if !ok {
		return fmt.Errorf("invalid type for slowPeriod parameter, expected int")
	}

	if fast <= 0 || slow <= 0 {
		return fmt.Errorf("periods must be positive integers, got %d and %d", fast, slow)
	}

	if fast >= slow {
		return fmt.Errorf("fastPeriod must be smaller than slowPeriod, got %d >= %d", fast, slow)
	}

	r.fastPeriod = fast
	r.slowPeriod = slow

	if len(params) == 3 {
		source, ok := params[2].(string)
		if !ok {
			return fmt.Errorf("invalid type for source parameter, expected string")
		}

		r.source = source
	}

	return nil
}

// Compute returns the ribbon column for the given bars.
func (r *Ribbon) Compute(bars []types.Bar) []float64 {
	series := sourceSeries(bars, r.source)
	fast := SimpleMovingAverage(series, r.fastPeriod)
	slow := SimpleMovingAverage(series, r.slowPeriod)

	out := nanSeries(len(bars))
	for i := range out {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			continue
		}

		out[i] = fast[i] - slow[i]
	}

	return out
}
