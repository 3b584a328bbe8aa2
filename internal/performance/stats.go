package performance

import (
	"math"
)

// mean returns the arithmetic mean, or NaN for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stdev returns the population standard deviation, or NaN when fewer than two
// values are present.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}

	m := mean(values)
	sumSquares := 0.0
	for _, v := range values {
		d := v - m
		sumSquares += d * d
	}

	return math.Sqrt(sumSquares / float64(len(values)))
}

// skewness returns the third standardized moment, or NaN when the standard
// deviation is zero or fewer than three values are present.
func skewness(values []float64) float64 {
	if len(values) < 3 {
		return math.NaN()
	}

	m := mean(values)
	sd := stdev(values)
	if sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}

	sumCubes := 0.0
	for _, v := range values {
		d := (v - m) / sd
		sumCubes += d * d * d
	}

	return sumCubes / float64(len(values))
}

// finiteOrZero collapses NaN and infinities to 0 so the report always carries
// a defined value for every key.
func finiteOrZero(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return value
}
