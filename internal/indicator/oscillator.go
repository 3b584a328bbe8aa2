package indicator

import (
	"fmt"
	"math"

	"github.com/alphatrader/alphatrader/internal/types"
)

// Oscillator is a smoothed relative-strength oscillator measured against its
// own rolling median: EMA(RSI(source)) minus the rolling median of that
// smoothed series. Positive values mean the smoothed oscillator trades above
// its recent median, a long bias.
type Oscillator struct {
	rsiPeriod    int
	smoothPeriod int
	medianWindow int
	source       string
}

// NewOscillator creates a new oscillator with default configuration.
func NewOscillator() Indicator {
	return &Oscillator{
		rsiPeriod:    336,
		smoothPeriod: 800,
		medianWindow: 240,
		source:       SourceClose,
	}
}

// Name returns the name of the indicator.
func (o *Oscillator) Name() types.IndicatorType {
	return types.IndicatorTypeOscillator
}

// Config configures the oscillator. Expected parameters: rsiPeriod (int),
// smoothPeriod (int), medianWindow (int), optionally a source column (string).
func (o *Oscillator) Config(params ...any) error {
	if len(params) < 3 || len(params) > 4 {
		return fmt.Errorf("Config expects 3 or 4 parameters: rsiPeriod (int), smoothPeriod (int), medianWindow (int), source (string)")
	}

	periods := make([]int, 3)

	for i := 0; i < 3; i++ {
		period, ok := params[i].(int)
		if !ok {
			return fmt.Errorf("invalid type for parameter %d, expected int", i)
		}

		if period <= 0 {
			return fmt.Errorf("period must be a positive integer, got %d", period)
		}

		periods[i] = period
	}

	o.rsiPeriod = periods[0]
	o.smoothPeriod = periods[1]
	o.medianWindow = periods[2]

	if len(params) == 4 {
		source, ok := params[3].(string)
		if !ok {
			return fmt.Errorf("invalid type for source parameter, expected string")
		}

		o.source = source
	}

	return nil
}

// Compute returns the oscillator column for the given bars.
func (o *Oscillator) Compute(bars []types.Bar) []float64 {
	rsi := RelativeStrengthIndex(sourceSeries(bars, o.source), o.rsiPeriod)
	smoothed := emaSkippingWarmup(rsi, o.smoothPeriod)
	median := RollingMedian(smoothed, o.medianWindow)

	out := nanSeries(len(bars))
	for i := range out {
		if math.IsNaN(smoothed[i]) || math.IsNaN(median[i]) {
			continue
		}

		out[i] = smoothed[i] - median[i]
	}

	return out
}

// emaSkippingWarmup applies an EMA to a series whose head is NaN warmup,
// seeding the average at the first defined value.
func emaSkippingWarmup(values []float64, period int) []float64 {
	start := 0
	for start < len(values) && math.IsNaN(values[start]) {
		start++
	}

	out := nanSeries(len(values))
	if start >= len(values) {
		return out
	}

	tail := ExponentialMovingAverage(values[start:], period)
	copy(out[start:], tail)

	return out
}
