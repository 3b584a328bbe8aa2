package performance

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// Config fixes the market-time conventions used to annualize metrics.
type Config struct {
	// PeriodsPerYear is the number of bars in one year. 8760 for hourly bars
	// on a market that never closes.
	PeriodsPerYear float64 `yaml:"periods_per_year" validate:"gt=0"`
	// RiskFreeRate is the annual risk-free rate used for excess returns.
	RiskFreeRate float64 `yaml:"risk_free_rate" validate:"gte=0"`
}

// DefaultConfig assumes hourly bars on an always-open market and a 2% annual
// risk-free rate.
func DefaultConfig() Config {
	return Config{
		PeriodsPerYear: 8760,
		RiskFreeRate:   0.02,
	}
}

// Estimator computes the performance report for a simulated trajectory. It is
// a pure function of the trajectory: calling Estimate twice on the same input
// yields the same report, and the trajectory is never mutated.
//
// Every metric guards its own degenerate inputs and resolves to 0 rather than
// failing; no metric can abort computation of the others.
type Estimator struct {
	config Config
}

// NewEstimator validates the annualization conventions and builds an estimator.
func NewEstimator(config Config) (*Estimator, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid estimator config", err)
	}

	return &Estimator{config: config}, nil
}

// Estimate computes all metrics over the trajectory. An empty trajectory is
// the one fatal input; everything downstream degrades per metric.
func (e *Estimator) Estimate(trajectory types.Trajectory) (types.PerformanceReport, error) {
	if len(trajectory.Rows) == 0 {
		return types.PerformanceReport{}, errors.New(errors.ErrCodeEmptyTrajectory,
			"cannot estimate performance of an empty trajectory")
	}

	netWorths := trajectory.NetWorths()
	returns := trajectory.StrategyReturns()
	positions := trajectory.Positions()

	drawdown, duration := e.maxDrawdown(trajectory)

	return types.PerformanceReport{
		PnL:                    finiteOrZero(netWorths[len(netWorths)-1] - netWorths[0]),
		AnnualizedReturn:       finiteOrZero(e.annualizedReturn(netWorths)),
		AnnualizedVolatility:   finiteOrZero(e.annualizedVolatility(returns)),
		Profitability:          finiteOrZero(e.profitability(returns, positions)),
		AverageProfitLossRatio: finiteOrZero(e.profitLossRatio(returns, positions)),
		SharpeRatio:            finiteOrZero(e.sharpe(returns)),
		SortinoRatio:           finiteOrZero(e.sortino(returns)),
		MaxDrawdown:            finiteOrZero(drawdown),
		MaxDrawdownDuration:    duration,
		Skewness:               finiteOrZero(skewness(returns)),
		NumberOfTrades:         finiteOrZero(e.numberOfTrades(positions)),
	}, nil
}

// annualizedReturn compounds the whole-run growth factor up to one year:
// (last/first)^(periods_per_year/total_periods) - 1.
func (e *Estimator) annualizedReturn(netWorths []float64) float64 {
	first := netWorths[0]
	last := netWorths[len(netWorths)-1]
	periods := float64(len(netWorths))
	if first <= 0 || last <= 0 || periods == 0 {
		return 0
	}

	return math.Pow(last/first, e.config.PeriodsPerYear/periods) - 1
}

func (e *Estimator) annualizedVolatility(returns []float64) float64 {
	return stdev(returns) * math.Sqrt(e.config.PeriodsPerYear)
}

// excessReturns subtracts the per-period risk-free rate from each strategy
// return. The annual rate is divided down to the bar duration.
func (e *Estimator) excessReturns(returns []float64) []float64 {
	perPeriod := e.config.RiskFreeRate / e.config.PeriodsPerYear

	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - perPeriod
	}

	return out
}

func (e *Estimator) sharpe(returns []float64) float64 {
	excess := e.excessReturns(returns)
	sd := stdev(excess)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}

	return mean(excess) / sd * math.Sqrt(e.config.PeriodsPerYear)
}

// sortino penalizes only downside deviation. With no negative excess returns
// there is no downside to measure and the ratio resolves to 0.
func (e *Estimator) sortino(returns []float64) float64 {
	excess := e.excessReturns(returns)

	var downside []float64
	for _, r := range excess {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	sd := stdev(downside)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}

	return mean(excess) / sd * math.Sqrt(e.config.PeriodsPerYear)
}

// tradeBarReturns collects the strategy returns at bars where the realized
// position changed from the previous bar.
func tradeBarReturns(returns, positions []float64) []float64 {
	var out []float64
	for i := 1; i < len(positions); i++ {
		if positions[i] != positions[i-1] {
			out = append(out, returns[i])
		}
	}

	return out
}

func (e *Estimator) profitability(returns, positions []float64) float64 {
	trades := tradeBarReturns(returns, positions)
	if len(trades) == 0 {
		return 0
	}

	winners := 0
	for _, r := range trades {
		if r > 0 {
			winners++
		}
	}

	return float64(winners) / float64(len(trades))
}

func (e *Estimator) profitLossRatio(returns, positions []float64) float64 {
	trades := tradeBarReturns(returns, positions)

	var profits, losses []float64
	for _, r := range trades {
		switch {
		case r > 0:
			profits = append(profits, r)
		case r < 0:
			losses = append(losses, r)
		}
	}

	if len(profits) == 0 || len(losses) == 0 {
		return 0
	}

	return mean(profits) / math.Abs(mean(losses))
}

// maxDrawdown scans the net worth series once, tracking the running peak and
// its bar. The duration is measured from the peak preceding the deepest
// trough to the trough itself.
func (e *Estimator) maxDrawdown(trajectory types.Trajectory) (float64, int) {
	rows := trajectory.Rows

	peak := rows[0].NetWorth
	peakIndex := 0
	worst := 0.0
	worstPeakIndex := 0
	worstTroughIndex := 0

	for i, row := range rows {
		if row.NetWorth > peak {
			peak = row.NetWorth
			peakIndex = i
		}

		if peak <= 0 {
			continue
		}

		drawdown := (row.NetWorth - peak) / peak
		if drawdown < worst {
			worst = drawdown
			worstPeakIndex = peakIndex
			worstTroughIndex = i
		}
	}

	if worst == 0 {
		return 0, 0
	}

	duration := rows[worstTroughIndex].Time.Sub(rows[worstPeakIndex].Time)

	return worst, int(duration.Seconds())
}

// numberOfTrades counts half the total absolute position change, so one full
// round trip counts once and a partial resize counts proportionally.
func (e *Estimator) numberOfTrades(positions []float64) float64 {
	total := 0.0
	for i := 1; i < len(positions); i++ {
		total += math.Abs(positions[i] - positions[i-1])
	}

	return total / 2
}
