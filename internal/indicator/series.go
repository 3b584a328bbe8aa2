package indicator

import (
	"math"
	"sort"
)

// SimpleMovingAverage computes the rolling mean over the given period.
// The first period-1 entries are NaN.
func SimpleMovingAverage(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0

	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// ExponentialMovingAverage computes an EMA seeded with the SMA of the first
// period values. Uses alpha = 2/(period+1) to match pandas ewm with
// adjust=False, same convention as the rest of the stack.
func ExponentialMovingAverage(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	// Seed with SMA of the first period values
	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}

	seed /= float64(period)
	out[period-1] = seed

	alpha := 2.0 / float64(period+1)

	ema := seed
	for i := period; i < len(values); i++ {
		ema = values[i]*alpha + ema*(1-alpha)
		out[i] = ema
	}

	return out
}

// RelativeStrengthIndex computes Wilder's RSI over the given period.
func RelativeStrengthIndex(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]

		gain := 0.0
		loss := 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}

// RollingMedian computes the median over a trailing window.
func RollingMedian(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window <= 0 || len(values) < window {
		return out
	}

	buf := make([]float64, window)

	for i := window - 1; i < len(values); i++ {
		copy(buf, values[i-window+1:i+1])

		if hasNaN(buf) {
			continue
		}

		sort.Float64s(buf)

		if window%2 == 1 {
			out[i] = buf[window/2]
		} else {
			out[i] = (buf[window/2-1] + buf[window/2]) / 2
		}
	}

	return out
}

// RollingStdDev computes the population standard deviation over a trailing window.
func RollingStdDev(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window <= 1 || len(values) < window {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		slice := values[i-window+1 : i+1]
		if hasNaN(slice) {
			continue
		}

		mean := 0.0
		for _, v := range slice {
			mean += v
		}

		mean /= float64(window)

		variance := 0.0
		for _, v := range slice {
			variance += (v - mean) * (v - mean)
		}

		out[i] = math.Sqrt(variance / float64(window))
	}

	return out
}

// ExpandingZScore standardizes each value against the mean and standard
// deviation of everything seen so far. Entries where the expanding deviation
// is zero resolve to NaN.
func ExpandingZScore(values []float64) []float64 {
	out := nanSeries(len(values))

	sum := 0.0
	sumSq := 0.0
	count := 0.0

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}

		sum += v
		sumSq += v * v
		count++

		if count < 2 {
			continue
		}

		mean := sum / count

		variance := sumSq/count - mean*mean
		if variance <= 0 {
			continue
		}

		out[i] = (v - mean) / math.Sqrt(variance)
	}

	return out
}

// Returns computes bar-over-bar ratio returns: values[i]/values[i-1] - 1.
// The first entry is NaN, as is any entry where either price is non-positive.
func Returns(values []float64) []float64 {
	out := nanSeries(len(values))

	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 || values[i] <= 0 {
			continue
		}

		out[i] = values[i]/values[i-1] - 1
	}

	return out
}

// Clamp01 maps a value into [0, 1] given the expected input range.
func Clamp01(value, low, high float64) float64 {
	if math.IsNaN(value) || high <= low {
		return math.NaN()
	}

	scaled := (value - low) / (high - low)
	if scaled < 0 {
		return 0
	}

	if scaled > 1 {
		return 1
	}

	return scaled
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}
