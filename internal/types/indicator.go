package types

// IndicatorType identifies a derived indicator column by name. The same name
// is used as the column key in Bar.Indicators.
type IndicatorType string

const (
	IndicatorTypeSMA           IndicatorType = "sma"
	IndicatorTypeEMA           IndicatorType = "ema"
	IndicatorTypeRSI           IndicatorType = "rsi"
	IndicatorTypeRollingMedian IndicatorType = "rolling_median"
	IndicatorTypeOscillator    IndicatorType = "oscillator"
	IndicatorTypeRibbon        IndicatorType = "ribbon"
	IndicatorTypeFlowEMA       IndicatorType = "flow_ema"
	IndicatorTypeMayerMultiple IndicatorType = "mayer_multiple"
	IndicatorTypeVolatility    IndicatorType = "volatility"
)
