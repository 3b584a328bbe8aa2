package indicator

import (
	"math"

	"github.com/alphatrader/alphatrader/internal/types"
)

// Indicator computes one derived column over an ordered bar table. The
// returned series is aligned by index with the input; entries are NaN until
// enough history exists.
type Indicator interface {
	// Name returns the name of the indicator.
	Name() types.IndicatorType
	// Config configures the indicator parameters.
	Config(params ...any) error
	// Compute returns the indicator column for the given bars.
	Compute(bars []types.Bar) []float64
}

// SourceClose selects the bar close price as indicator input.
const SourceClose = "close"

// sourceSeries extracts the input series for an indicator: the close price,
// or a named indicator column already attached to the bars.
func sourceSeries(bars []types.Bar, source string) []float64 {
	out := make([]float64, len(bars))

	for i, bar := range bars {
		if source == SourceClose {
			out[i] = bar.Close
		} else {
			out[i] = bar.Indicator(source)
		}
	}

	return out
}

// nanSeries returns a series of the given length filled with NaN.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
