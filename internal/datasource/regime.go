package datasource

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/alphatrader/alphatrader/internal/indicator"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// DetectRegimes labels bars with a bull or bear regime derived from price
// trend, for datasets that carry no regime column of their own. The trend
// measure is the mayer multiple standardized against its own expanding
// history: bars trading above their typical trend premium are labeled bull,
// below it bear. Bars inside the trend warmup, and bars where the expanding
// deviation is still zero, stay unlabeled.
//
// The input slice is not mutated; a labeled copy is returned.
func DetectRegimes(bars []types.Bar, registry indicator.IndicatorRegistry) ([]types.Bar, error) {
	trend, err := registry.GetIndicator(types.IndicatorTypeMayerMultiple)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingRegime, "regime detection unavailable", err)
	}

	score := indicator.ExpandingZScore(trend.Compute(bars))

	out := make([]types.Bar, len(bars))
	copy(out, bars)

	for i := range out {
		if math.IsNaN(score[i]) {
			continue
		}

		if score[i] >= 0 {
			out[i].Regime = optional.Some(types.RegimeBull)
		} else {
			out[i].Regime = optional.Some(types.RegimeBear)
		}
	}

	return out, nil
}
