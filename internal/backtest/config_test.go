package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v2"

	"github.com/alphatrader/alphatrader/internal/simulator"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestUnmarshalFull() {
	raw := `
strategy: crossover
initial_cash: 50000
cost_rate: 0.002
accounting: realize_on_close
regime_gated: true
regime_detection: true
periods_per_year: 365
risk_free_rate: 0.03
start_time: 2024-01-01T00:00:00Z
end_time: 2024-06-30T00:00:00Z
`

	var config Config
	suite.NoError(yaml.Unmarshal([]byte(raw), &config))

	suite.Equal("crossover", config.Strategy)
	suite.Equal(50_000.0, config.InitialCash)
	suite.Equal(0.002, config.CostRate)
	suite.Equal(simulator.AccountingRealizeOnClose, config.Accounting)
	suite.True(config.RegimeGated)
	suite.True(config.RegimeDetection)
	suite.Equal(365.0, config.PeriodsPerYear)
	suite.Equal(0.03, config.RiskFreeRate)

	start, err := config.StartTime.Take()
	suite.NoError(err)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start.UTC())

	suite.True(config.EndTime.IsSome())
}

func (suite *ConfigTestSuite) TestUnmarshalDefaults() {
	var config Config
	suite.NoError(yaml.Unmarshal([]byte(`strategy: always_invested`), &config))

	defaults := DefaultConfig()
	suite.Equal(defaults.InitialCash, config.InitialCash)
	suite.Equal(defaults.CostRate, config.CostRate)
	suite.Equal(defaults.Accounting, config.Accounting)
	suite.Equal(defaults.PeriodsPerYear, config.PeriodsPerYear)
	suite.False(config.RegimeDetection)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestProjections() {
	config := DefaultConfig()
	config.InitialCash = 42_000
	config.PeriodsPerYear = 365

	suite.Equal(42_000.0, config.SimulatorConfig().InitialCash)
	suite.Equal(365.0, config.EstimatorConfig().PeriodsPerYear)
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := DefaultConfig()

	schema := config.GenerateSchema()
	suite.NotNil(schema)
}
