package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PerformanceReport is the fixed set of risk/return metrics computed from a
// simulated trajectory. Every key is always present; a metric whose input is
// degenerate resolves to 0 rather than being absent. Created once per
// completed run and read-only afterwards.
type PerformanceReport struct {
	// PnL is net_worth[last] - net_worth[first].
	PnL float64 `yaml:"pnl"`
	// AnnualizedReturn is the compounded annualized return
	// (net_worth[last]/net_worth[first])^(periods_per_year/total_periods) - 1.
	AnnualizedReturn float64 `yaml:"annualized_return"`
	// AnnualizedVolatility is stdev(strategy_returns) * sqrt(periods_per_year).
	AnnualizedVolatility float64 `yaml:"annualized_volatility"`
	// Profitability is the fraction of position-change bars with positive return.
	Profitability float64 `yaml:"profitability"`
	// AverageProfitLossRatio is mean(profitable returns) / |mean(losing returns)|.
	AverageProfitLossRatio float64 `yaml:"average_profit_loss_ratio"`
	// SharpeRatio is mean(excess) / stdev(excess) * sqrt(periods_per_year).
	SharpeRatio float64 `yaml:"sharpe_ratio"`
	// SortinoRatio uses only downside excess returns in the denominator.
	SortinoRatio float64 `yaml:"sortino_ratio"`
	// MaxDrawdown is the minimum of (net_worth - running max) / running max.
	// Always <= 0; 0 only when net worth never declines.
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// MaxDrawdownDuration is the time from the running-max bar preceding the
	// drawdown trough to the trough itself, in seconds.
	MaxDrawdownDuration int `yaml:"max_drawdown_duration_seconds"`
	// Skewness is the third standardized moment of the strategy returns.
	Skewness float64 `yaml:"skewness"`
	// NumberOfTrades is sum(|position change|) / 2. A round trip counts as
	// one trade; a partial resize counts proportionally.
	NumberOfTrades float64 `yaml:"number_of_trades"`
}

// RunReport wraps a performance report with run metadata for serialization.
type RunReport struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp"`
	// Strategy is the name of the strategy that produced the signals.
	Strategy string `yaml:"strategy"`
	// AccountingPolicy documents which reward policy the run used.
	AccountingPolicy string `yaml:"accounting_policy"`
	// Performance holds the computed metrics.
	Performance PerformanceReport `yaml:"performance"`
	// TrajectoryFilePath is the path to the exported trajectory parquet file.
	TrajectoryFilePath string `yaml:"trajectory_file_path,omitempty"`
	// DataPath is the path of the market data used for this run.
	DataPath string `yaml:"data_path,omitempty"`
}

// WriteRunReport serializes the run report to a YAML file.
func WriteRunReport(path string, report RunReport) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report to file: %w", err)
	}

	return nil
}
