package strategy

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/alphatrader/alphatrader/internal/indicator"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// regimeBucket classifies how the smoothed regime indicator relates to the
// directional signal on a bar.
type regimeBucket int

const (
	regimeAgainst regimeBucket = iota
	regimeNeutral
	regimeWith
	regimeBucketCount
)

// confidenceBucket splits the blended confidence score at a single threshold.
type confidenceBucket int

const (
	confidenceLow confidenceBucket = iota
	confidenceHigh
	confidenceBucketCount
)

// sizingTable is the complete sizing policy: every (regime bucket, confidence
// bucket) pair maps to exactly one position magnitude. The signal sign is
// applied afterwards, and a zero sign always resolves to flat. Leveraged
// exposure is only reachable through the confirming-regime, high-confidence
// cell.
var sizingTable = [regimeBucketCount][confidenceBucketCount]float64{
	regimeAgainst: {confidenceLow: 0, confidenceHigh: 0},
	regimeNeutral: {confidenceLow: 0.5, confidenceHigh: 1.0},
	regimeWith:    {confidenceLow: 1.0, confidenceHigh: 2.0},
}

// ContextWeightedConfig parameterizes the context-weighted strategy.
type ContextWeightedConfig struct {
	// Directional oscillator parameters, shared with the crossover strategy.
	OscillatorRSIPeriod    int `yaml:"oscillator_rsi_period" validate:"gt=1"`
	OscillatorSmoothPeriod int `yaml:"oscillator_smooth_period" validate:"gt=1"`
	OscillatorMedianWindow int `yaml:"oscillator_median_window" validate:"gt=0"`

	// Smoothed regime indicator: a fast/slow moving-average ribbon.
	RibbonFastPeriod int `yaml:"ribbon_fast_period" validate:"gt=1"`
	RibbonSlowPeriod int `yaml:"ribbon_slow_period" validate:"gt=1,gtfield=RibbonFastPeriod"`
	// RegimeThreshold is the ribbon magnitude, as a fraction of price, beyond
	// which the regime counts as decisively with or against the signal.
	RegimeThreshold float64 `yaml:"regime_threshold" validate:"gt=0"`

	// Confidence inputs. Oscillator readings are normalized over
	// [-OscillatorScale, OscillatorScale]; volatility over
	// [VolatilityFloor, VolatilityCeiling], inverted so calm markets score high.
	VolatilityWindow    int     `yaml:"volatility_window" validate:"gt=1"`
	OscillatorScale     float64 `yaml:"oscillator_scale" validate:"gt=0"`
	VolatilityFloor     float64 `yaml:"volatility_floor" validate:"gte=0"`
	VolatilityCeiling   float64 `yaml:"volatility_ceiling" validate:"gtfield=VolatilityFloor"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"gt=0,lt=1"`
}

func DefaultContextWeightedConfig() ContextWeightedConfig {
	return ContextWeightedConfig{
		OscillatorRSIPeriod:    336,
		OscillatorSmoothPeriod: 800,
		OscillatorMedianWindow: 240,
		RibbonFastPeriod:       30,
		RibbonSlowPeriod:       60,
		RegimeThreshold:        0.005,
		VolatilityWindow:       24,
		OscillatorScale:        10,
		VolatilityFloor:        0.005,
		VolatilityCeiling:      0.05,
		ConfidenceThreshold:    0.5,
	}
}

// ContextWeighted grades its exposure over {0, 0.5, 1.0, 2.0} instead of
// switching between flat and fully invested. The oscillator provides the
// direction, the moving-average ribbon provides the regime context, and a
// blended oscillator/volatility confidence score picks between the cautious
// and aggressive sizing for that context. Bars where the direction or regime
// has not warmed up resolve to flat.
type ContextWeighted struct {
	config     ContextWeightedConfig
	indicators indicator.IndicatorRegistry
}

func NewContextWeighted(config ContextWeightedConfig) (*ContextWeighted, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid context-weighted config", err)
	}

	return &ContextWeighted{
		config:     config,
		indicators: indicator.NewDefaultIndicatorRegistry(),
	}, nil
}

func (s *ContextWeighted) Name() string {
	return "context_weighted"
}

func (s *ContextWeighted) GenerateSignals(bars []types.Bar) (types.StrategySeries, error) {
	oscillator, err := computeSeries(s.indicators, bars, types.IndicatorTypeOscillator,
		s.config.OscillatorRSIPeriod, s.config.OscillatorSmoothPeriod, s.config.OscillatorMedianWindow)
	if err != nil {
		return types.StrategySeries{}, err
	}

	ribbon, err := computeSeries(s.indicators, bars, types.IndicatorTypeRibbon,
		s.config.RibbonFastPeriod, s.config.RibbonSlowPeriod)
	if err != nil {
		return types.StrategySeries{}, err
	}

	volatility, err := computeSeries(s.indicators, bars, types.IndicatorTypeVolatility, s.config.VolatilityWindow)
	if err != nil {
		return types.StrategySeries{}, err
	}

	positions := make([]float64, len(bars))
	for i := range bars {
		direction := sign(oscillator[i])
		if direction == 0 {
			continue
		}

		regime := s.classifyRegime(direction, ribbon[i], bars[i].Close)
		confidence := s.classifyConfidence(oscillator[i], volatility[i])
		positions[i] = direction * sizingTable[regime][confidence]
	}

	return types.StrategySeries{
		Positions:    shiftForward(positions),
		AssetReturns: closeReturns(bars),
	}, nil
}

// classifyRegime compares the ribbon, scaled by price, against the threshold.
// A ribbon leaning the same way as the signal beyond the threshold confirms
// it; leaning the other way beyond the threshold opposes it. An unwarmed
// ribbon or a non-positive price counts as opposing, keeping untrusted bars
// flat.
func (s *ContextWeighted) classifyRegime(direction, ribbon, close float64) regimeBucket {
	if math.IsNaN(ribbon) || close <= 0 {
		return regimeAgainst
	}

	scaled := direction * ribbon / close
	switch {
	case scaled >= s.config.RegimeThreshold:
		return regimeWith
	case scaled <= -s.config.RegimeThreshold:
		return regimeAgainst
	default:
		return regimeNeutral
	}
}

// classifyConfidence blends the normalized oscillator magnitude with inverted
// normalized volatility and splits at the configured threshold. A NaN in
// either input degrades to low confidence.
func (s *ContextWeighted) classifyConfidence(oscillator, volatility float64) confidenceBucket {
	oscScore := indicator.Clamp01(math.Abs(oscillator), 0, s.config.OscillatorScale)
	volScore := indicator.Clamp01(volatility, s.config.VolatilityFloor, s.config.VolatilityCeiling)
	if math.IsNaN(oscScore) || math.IsNaN(volScore) {
		return confidenceLow
	}

	confidence := (oscScore + (1 - volScore)) / 2
	if confidence >= s.config.ConfidenceThreshold {
		return confidenceHigh
	}

	return confidenceLow
}
