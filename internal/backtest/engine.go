package backtest

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/alphatrader/alphatrader/internal/datasource"
	"github.com/alphatrader/alphatrader/internal/execution"
	"github.com/alphatrader/alphatrader/internal/indicator"
	"github.com/alphatrader/alphatrader/internal/logger"
	"github.com/alphatrader/alphatrader/internal/performance"
	"github.com/alphatrader/alphatrader/internal/simulator"
	"github.com/alphatrader/alphatrader/internal/strategy"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// Engine orchestrates one backtest: load bars, generate signals, simulate the
// account, estimate performance and persist the results.
type Engine struct {
	config        Config
	log           *logger.Logger
	strategy      strategy.Strategy
	source        datasource.DataSource
	adapter       execution.ExecutionAdapter
	indicators    indicator.IndicatorRegistry
	writer        *ResultWriter
	dataPath      string
	resultsFolder string
}

// NewEngine creates an uninitialized engine. Call Initialize with a YAML
// config before running.
func NewEngine() *Engine {
	return &Engine{
		config:     DefaultConfig(),
		adapter:    execution.NewNopAdapter(),
		indicators: indicator.NewDefaultIndicatorRegistry(),
	}
}

// Initialize parses the YAML config and builds the strategy it names.
func (e *Engine) Initialize(configYAML string) error {
	if err := yaml.Unmarshal([]byte(configYAML), &e.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	var loggerErr error

	e.log, loggerErr = logger.NewLogger()
	if loggerErr != nil {
		return loggerErr
	}

	e.log.Debug("backtest engine initialized",
		zap.String("strategy", e.config.Strategy),
		zap.String("accounting", string(e.config.Accounting)),
	)

	built, err := strategy.NewStrategy(e.config.Strategy)
	if err != nil {
		return err
	}

	e.strategy = built

	return nil
}

// SetLogger overrides the logger, mainly so tests can run quietly.
func (e *Engine) SetLogger(log *logger.Logger) {
	e.log = log
}

// SetStrategy overrides the config-selected strategy with a custom-tuned one.
func (e *Engine) SetStrategy(s strategy.Strategy) {
	e.strategy = s
}

// SetDataSource overrides the default DuckDB source, used by tests and
// parameter sweeps that already hold bars in memory.
func (e *Engine) SetDataSource(source datasource.DataSource) {
	e.source = source
}

// SetExecutionAdapter installs the venue adapter notified of the final target.
func (e *Engine) SetExecutionAdapter(adapter execution.ExecutionAdapter) {
	e.adapter = adapter
}

// SetIndicatorRegistry overrides the default indicator registry, mainly to
// retune the trend indicator that drives regime detection.
func (e *Engine) SetIndicatorRegistry(registry indicator.IndicatorRegistry) {
	e.indicators = registry
}

// SetDataPath points the engine at the market data file (csv or parquet).
func (e *Engine) SetDataPath(path string) {
	e.dataPath = path
}

// SetResultsFolder sets the directory that receives the run artifacts.
func (e *Engine) SetResultsFolder(path string) {
	e.resultsFolder = path
}

// Run executes the full pipeline and returns the run report. The report is
// also written to the results folder together with the trajectory parquet
// when a results folder is configured.
func (e *Engine) Run(ctx context.Context) (*types.RunReport, error) {
	if e.strategy == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "engine not initialized")
	}

	if e.log == nil {
		e.log = logger.NewNopLogger()
	}

	bars, err := e.loadBars()
	if err != nil {
		return nil, err
	}

	if len(bars) < 2 {
		return nil, errors.Newf(errors.ErrCodeTrajectoryTooSmall,
			"need at least 2 bars to simulate, got %d", len(bars))
	}

	if e.config.RegimeGated && !hasRegimeLabels(bars) {
		if !e.config.RegimeDetection {
			return nil, errors.New(errors.ErrCodeMissingRegime,
				"regime gating enabled but the dataset carries no regime labels")
		}

		bars, err = datasource.DetectRegimes(bars, e.indicators)
		if err != nil {
			return nil, err
		}

		e.log.Debug("regime labels derived from price trend", zap.Int("bars", len(bars)))
	}

	series, err := e.strategy.GenerateSignals(bars)
	if err != nil {
		return nil, err
	}

	if err := strategy.ValidateSeries(series, len(bars)); err != nil {
		return nil, err
	}

	sim, err := simulator.NewTradingSimulator(e.config.SimulatorConfig(), e.log)
	if err != nil {
		return nil, err
	}

	trajectory, err := sim.Run(bars, series)
	if err != nil {
		return nil, err
	}

	estimator, err := performance.NewEstimator(e.config.EstimatorConfig())
	if err != nil {
		return nil, err
	}

	report, err := estimator.Estimate(trajectory)
	if err != nil {
		return nil, err
	}

	runReport := &types.RunReport{
		ID:               uuid.New().String(),
		Timestamp:        time.Now(),
		Strategy:         e.strategy.Name(),
		AccountingPolicy: string(e.config.Accounting),
		Performance:      report,
		DataPath:         e.dataPath,
	}

	if err := e.notifyAdapter(ctx, trajectory); err != nil {
		return nil, err
	}

	if e.resultsFolder != "" {
		if err := e.writeResults(runReport, trajectory, bars); err != nil {
			return nil, err
		}
	}

	e.log.Info("backtest run complete",
		zap.String("run_id", runReport.ID),
		zap.String("strategy", runReport.Strategy),
		zap.Float64("pnl", report.PnL),
		zap.Float64("sharpe", report.SharpeRatio),
	)

	return runReport, nil
}

// loadBars reads bars from the configured source, falling back to a DuckDB
// source over the data path.
func (e *Engine) loadBars() ([]types.Bar, error) {
	source := e.source
	if source == nil {
		duckSource, err := datasource.NewDataSource(e.log)
		if err != nil {
			return nil, err
		}

		if err := duckSource.Initialize(e.dataPath); err != nil {
			return nil, err
		}

		defer duckSource.Close()

		source = duckSource
	}

	return source.ReadAll(e.config.StartTime, e.config.EndTime)
}

// notifyAdapter reports the final row's exposure transition once per run.
func (e *Engine) notifyAdapter(ctx context.Context, trajectory types.Trajectory) error {
	if e.adapter == nil || len(trajectory.Rows) == 0 {
		return nil
	}

	last := trajectory.Rows[len(trajectory.Rows)-1]
	previous := 0.0
	if len(trajectory.Rows) > 1 {
		previous = trajectory.Rows[len(trajectory.Rows)-2].Position
	}

	intent := execution.ResolveIntent(previous, last.Position)

	return e.adapter.Execute(ctx, filepath.Base(e.dataPath), intent, last.Position)
}

func (e *Engine) writeResults(report *types.RunReport, trajectory types.Trajectory, bars []types.Bar) error {
	folder := filepath.Join(e.resultsFolder, report.ID)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create results folder", err)
	}

	if e.writer == nil {
		writer, err := NewResultWriter(e.log)
		if err != nil {
			return err
		}

		e.writer = writer
	}

	trajectoryPath, err := e.writer.WriteTrajectory(trajectory, bars, folder)
	if err != nil {
		return err
	}

	// The staging table is shared across runs of the same engine.
	if err := e.writer.Cleanup(); err != nil {
		return err
	}

	report.TrajectoryFilePath = trajectoryPath

	if err := types.WriteRunReport(filepath.Join(folder, "report.yaml"), *report); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to write run report", err)
	}

	return nil
}

// Close releases the result staging database held across runs.
func (e *Engine) Close() error {
	if e.writer == nil {
		return nil
	}

	writer := e.writer
	e.writer = nil

	return writer.Close()
}

func hasRegimeLabels(bars []types.Bar) bool {
	for _, bar := range bars {
		if bar.Regime.IsSome() {
			return true
		}
	}

	return false
}
