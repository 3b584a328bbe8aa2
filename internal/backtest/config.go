package backtest

import (
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/alphatrader/alphatrader/internal/performance"
	"github.com/alphatrader/alphatrader/internal/simulator"
	"github.com/alphatrader/alphatrader/internal/strategy"
)

// Config is the full YAML configuration for one backtest run.
type Config struct {
	// Strategy selects the signal generator by name.
	Strategy string `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy,description=Name of the signal-generating strategy,enum=always_invested,enum=crossover,enum=context_weighted"`
	// InitialCash is the starting account balance.
	InitialCash float64 `yaml:"initial_cash" json:"initial_cash" jsonschema:"title=Initial Cash,description=Starting cash balance for the simulated account,minimum=0"`
	// CostRate is the venue fee as a fraction of traded notional.
	CostRate float64 `yaml:"cost_rate" json:"cost_rate" jsonschema:"title=Cost Rate,description=Transaction cost as a fraction of traded notional,minimum=0,maximum=1"`
	// Accounting selects the booking policy.
	Accounting simulator.AccountingPolicy `yaml:"accounting" json:"accounting" jsonschema:"title=Accounting,description=Reward booking policy for the run"`
	// RegimeGated enables asymmetric bull/bear transition rules.
	RegimeGated bool `yaml:"regime_gated" json:"regime_gated" jsonschema:"title=Regime Gated,description=Apply regime transition rules on labeled bars"`
	// RegimeDetection derives regime labels from price trend when the
	// dataset carries none. Without it, gating an unlabeled dataset fails.
	RegimeDetection bool `yaml:"regime_detection" json:"regime_detection" jsonschema:"title=Regime Detection,description=Derive regime labels from price trend when the dataset has none"`
	// PeriodsPerYear is the annualization constant; 8760 for hourly bars.
	PeriodsPerYear float64 `yaml:"periods_per_year" json:"periods_per_year" jsonschema:"title=Periods Per Year,description=Number of bars in one year,minimum=1"`
	// RiskFreeRate is the annual risk-free rate for excess returns.
	RiskFreeRate float64 `yaml:"risk_free_rate" json:"risk_free_rate" jsonschema:"title=Risk Free Rate,description=Annual risk-free rate,minimum=0"`
	// StartTime and EndTime optionally bound the bars read from the dataset.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the backtest period"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the backtest period"`
}

// DefaultConfig mirrors the production defaults for hourly crypto bars.
func DefaultConfig() Config {
	simDefaults := simulator.DefaultConfig()
	perfDefaults := performance.DefaultConfig()

	return Config{
		Strategy:        strategy.NameAlwaysInvested,
		InitialCash:     simDefaults.InitialCash,
		CostRate:        simDefaults.CostRate,
		Accounting:      simDefaults.Accounting,
		RegimeGated:     simDefaults.RegimeGated,
		RegimeDetection: false,
		PeriodsPerYear:  perfDefaults.PeriodsPerYear,
		RiskFreeRate:    perfDefaults.RiskFreeRate,
		StartTime:       optional.None[time.Time](),
		EndTime:         optional.None[time.Time](),
	}
}

// UnmarshalYAML implements custom unmarshaling so optional time bounds can be
// written as plain timestamps or omitted entirely. Omitted scalar fields fall
// back to the defaults.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		Strategy        *string                     `yaml:"strategy"`
		InitialCash     *float64                    `yaml:"initial_cash"`
		CostRate        *float64                    `yaml:"cost_rate"`
		Accounting      *simulator.AccountingPolicy `yaml:"accounting"`
		RegimeGated     *bool                       `yaml:"regime_gated"`
		RegimeDetection *bool                       `yaml:"regime_detection"`
		PeriodsPerYear  *float64                    `yaml:"periods_per_year"`
		RiskFreeRate    *float64                    `yaml:"risk_free_rate"`
		StartTime       *time.Time                  `yaml:"start_time"`
		EndTime         *time.Time                  `yaml:"end_time"`
	}

	var parsed plainConfig
	if err := unmarshal(&parsed); err != nil {
		return err
	}

	*c = DefaultConfig()

	if parsed.Strategy != nil {
		c.Strategy = *parsed.Strategy
	}

	if parsed.InitialCash != nil {
		c.InitialCash = *parsed.InitialCash
	}

	if parsed.CostRate != nil {
		c.CostRate = *parsed.CostRate
	}

	if parsed.Accounting != nil {
		c.Accounting = *parsed.Accounting
	}

	if parsed.RegimeGated != nil {
		c.RegimeGated = *parsed.RegimeGated
	}

	if parsed.RegimeDetection != nil {
		c.RegimeDetection = *parsed.RegimeDetection
	}

	if parsed.PeriodsPerYear != nil {
		c.PeriodsPerYear = *parsed.PeriodsPerYear
	}

	if parsed.RiskFreeRate != nil {
		c.RiskFreeRate = *parsed.RiskFreeRate
	}

	if parsed.StartTime != nil {
		c.StartTime = optional.Some(*parsed.StartTime)
	}

	if parsed.EndTime != nil {
		c.EndTime = optional.Some(*parsed.EndTime)
	}

	return nil
}

// SimulatorConfig projects the run config onto the simulator's settings.
func (c Config) SimulatorConfig() simulator.Config {
	return simulator.Config{
		InitialCash: c.InitialCash,
		CostRate:    c.CostRate,
		Accounting:  c.Accounting,
		RegimeGated: c.RegimeGated,
	}
}

// EstimatorConfig projects the run config onto the estimator's settings.
func (c Config) EstimatorConfig() performance.Config {
	return performance.Config{
		PeriodsPerYear: c.PeriodsPerYear,
		RiskFreeRate:   c.RiskFreeRate,
	}
}

// GenerateSchema generates a JSON schema for the run configuration, used by
// editors to validate config files.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if t.String() == "simulator.AccountingPolicy" {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{
						string(simulator.AccountingMarkToMarket),
						string(simulator.AccountingRealizeOnClose),
					},
				}
			}

			return nil
		},
	}

	return reflector.Reflect(c)
}
