package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
)

// Bar represents a single time-stepped OHLCV record plus any derived
// indicator columns attached by the dataset. Bars are immutable once
// produced by the data source.
type Bar struct {
	// Time is the bar timestamp. Unique and strictly increasing within a dataset.
	Time time.Time `yaml:"time" json:"time" csv:"time"`
	// Open is the opening price of the bar.
	Open float64 `yaml:"open" json:"open" csv:"open"`
	// High is the highest price of the bar.
	High float64 `yaml:"high" json:"high" csv:"high"`
	// Low is the lowest price of the bar.
	Low float64 `yaml:"low" json:"low" csv:"low"`
	// Close is the closing price of the bar.
	Close float64 `yaml:"close" json:"close" csv:"close"`
	// Volume is the traded volume of the bar.
	Volume float64 `yaml:"volume" json:"volume" csv:"volume"`
	// Indicators holds named indicator columns. A value may be NaN before
	// enough history exists to compute it.
	Indicators map[string]float64 `yaml:"indicators,omitempty" json:"indicators,omitempty"`
	// Regime is the optional bull/bear context label conditioning
	// position-sizing rules.
	Regime optional.Option[Regime] `yaml:"regime,omitempty" json:"regime,omitempty"`
}

// Indicator returns the named indicator column, or NaN when the column is
// absent or was never computed for this bar.
func (b Bar) Indicator(name string) float64 {
	if b.Indicators == nil {
		return math.NaN()
	}

	value, ok := b.Indicators[name]
	if !ok {
		return math.NaN()
	}

	return value
}

// HasIndicator reports whether the named indicator column is present and not NaN.
func (b Bar) HasIndicator(name string) bool {
	if b.Indicators == nil {
		return false
	}

	value, ok := b.Indicators[name]

	return ok && !math.IsNaN(value)
}
