package strategy

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/alphatrader/alphatrader/internal/indicator"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// CrossoverConfig parameterizes the crossover strategy. The zero value is not
// usable; construct through NewCrossover which applies defaults and validates.
type CrossoverConfig struct {
	// Oscillator parameters.
	OscillatorRSIPeriod    int `yaml:"oscillator_rsi_period" validate:"gt=1"`
	OscillatorSmoothPeriod int `yaml:"oscillator_smooth_period" validate:"gt=1"`
	OscillatorMedianWindow int `yaml:"oscillator_median_window" validate:"gt=0"`

	// Moving-average channel parameters.
	ChannelPeriod    int     `yaml:"channel_period" validate:"gt=1"`
	ChannelVolWindow int     `yaml:"channel_vol_window" validate:"gt=1"`
	ChannelBandwidth float64 `yaml:"channel_bandwidth" validate:"gt=0"`

	// Cumulative-flow smoothing period.
	FlowPeriod int `yaml:"flow_period" validate:"gt=1"`
	// FlowColumn names the dataset column carrying the raw flow series. When
	// the column is absent the flow vote abstains.
	FlowColumn string `yaml:"flow_column"`
}

// DefaultCrossoverConfig mirrors the production parameterization: a long-horizon
// smoothed RSI oscillator, a 30/60 style channel and a day-scale flow EMA on
// hourly bars.
func DefaultCrossoverConfig() CrossoverConfig {
	return CrossoverConfig{
		OscillatorRSIPeriod:    336,
		OscillatorSmoothPeriod: 800,
		OscillatorMedianWindow: 240,
		ChannelPeriod:          720,
		ChannelVolWindow:       24,
		ChannelBandwidth:       1.0,
		FlowPeriod:             24,
		FlowColumn:             "flow",
	}
}

// Crossover combines three directional votes into a signed score and takes
// its sign as the target position, delayed by one bar:
//
//   - the smoothed oscillator relative to its rolling median,
//   - the close relative to a volatility-normalized moving-average channel,
//   - the slope of a smoothed cumulative-flow series.
//
// Bars where every vote abstains resolve to flat.
type Crossover struct {
	config     CrossoverConfig
	indicators indicator.IndicatorRegistry
}

func NewCrossover(config CrossoverConfig) (*Crossover, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid crossover config", err)
	}

	return &Crossover{
		config:     config,
		indicators: indicator.NewDefaultIndicatorRegistry(),
	}, nil
}

func (s *Crossover) Name() string {
	return "crossover"
}

func (s *Crossover) GenerateSignals(bars []types.Bar) (types.StrategySeries, error) {
	oscillator, err := computeSeries(s.indicators, bars, types.IndicatorTypeOscillator,
		s.config.OscillatorRSIPeriod, s.config.OscillatorSmoothPeriod, s.config.OscillatorMedianWindow)
	if err != nil {
		return types.StrategySeries{}, err
	}

	channel, err := s.channelScore(bars)
	if err != nil {
		return types.StrategySeries{}, err
	}

	flow := s.flowSlope(bars)

	positions := make([]float64, len(bars))
	for i := range bars {
		score := sign(oscillator[i]) + sign(channel[i]) + sign(flow[i])
		positions[i] = sign(score)
	}

	return types.StrategySeries{
		Positions:    shiftForward(positions),
		AssetReturns: closeReturns(bars),
	}, nil
}

// channelScore measures how far the close sits outside a band of the moving
// average widened by recent return volatility. Inside the band the score is
// zero, so the vote abstains.
func (s *Crossover) channelScore(bars []types.Bar) ([]float64, error) {
	mean, err := computeSeries(s.indicators, bars, types.IndicatorTypeSMA, s.config.ChannelPeriod)
	if err != nil {
		return nil, err
	}

	closes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
	}

	vol := indicator.RollingStdDev(indicator.Returns(closes), s.config.ChannelVolWindow)

	out := make([]float64, len(bars))
	for i := range bars {
		halfWidth := s.config.ChannelBandwidth * vol[i] * closes[i]
		if math.IsNaN(mean[i]) || math.IsNaN(halfWidth) {
			out[i] = math.NaN()

			continue
		}

		switch {
		case closes[i] > mean[i]+halfWidth:
			out[i] = 1
		case closes[i] < mean[i]-halfWidth:
			out[i] = -1
		default:
			out[i] = 0
		}
	}

	return out, nil
}

// flowSlope returns the first difference of the smoothed flow column, or an
// all-NaN series when the dataset does not carry one.
func (s *Crossover) flowSlope(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))

	hasFlow := false
	if len(bars) > 0 {
		_, hasFlow = bars[0].Indicators[s.config.FlowColumn]
	}

	if !hasFlow {
		for i := range out {
			out[i] = math.NaN()
		}

		return out
	}

	raw := make([]float64, len(bars))
	for i := range bars {
		raw[i] = bars[i].Indicator(s.config.FlowColumn)
	}

	smoothed := indicator.ExponentialMovingAverage(raw, s.config.FlowPeriod)
	out[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		out[i] = smoothed[i] - smoothed[i-1]
	}

	return out
}

// computeSeries resolves an indicator from the registry, configures it and
// evaluates it over the bars.
func computeSeries(registry indicator.IndicatorRegistry, bars []types.Bar, name types.IndicatorType, params ...any) ([]float64, error) {
	ind, err := registry.GetIndicator(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "indicator lookup failed", err)
	}

	if err := ind.Config(params...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "indicator configuration failed", err)
	}

	return ind.Compute(bars), nil
}
