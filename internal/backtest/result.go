package backtest

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/schollz/progressbar/v3"

	"github.com/alphatrader/alphatrader/internal/logger"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// ResultWriter stages a trajectory into an in-memory DuckDB table and exports
// it as parquet next to the run report.
type ResultWriter struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewResultWriter opens an in-memory database for staging results.
func NewResultWriter(log *logger.Logger) (*ResultWriter, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to open result database", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	writer := &ResultWriter{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := writer.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return writer, nil
}

func (w *ResultWriter) initialize() error {
	_, err := w.db.Exec(`
		CREATE TABLE IF NOT EXISTS trajectory (
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			position DOUBLE,
			asset_return DOUBLE,
			strategy_return DOUBLE,
			cash DOUBLE,
			quantity DOUBLE,
			nav DOUBLE,
			net_worth DOUBLE,
			entry_price DOUBLE,
			transaction_cost DOUBLE,
			reward DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to create trajectory table", err)
	}

	return nil
}

// WriteTrajectory stages every row alongside its source bar and exports the
// table to <resultFolder>/trajectory.parquet, returning the written path.
// Rows align with the leading bars of the dataset, so a trajectory truncated
// by an episode close simply exports fewer rows.
func (w *ResultWriter) WriteTrajectory(trajectory types.Trajectory, bars []types.Bar, resultFolder string) (string, error) {
	if len(trajectory.Rows) > len(bars) {
		return "", errors.Newf(errors.ErrCodeResultWriteFailed,
			"trajectory has %d rows but only %d bars", len(trajectory.Rows), len(bars))
	}

	progress := progressbar.Default(int64(len(trajectory.Rows)))
	progress.Describe("Writing trajectory")

	for i, row := range trajectory.Rows {
		var entryPrice sql.NullFloat64
		if price, err := row.EntryPrice.Take(); err == nil {
			entryPrice = sql.NullFloat64{Float64: price, Valid: true}
		}

		source := bars[i]

		query := w.sq.
			Insert("trajectory").
			Columns("time", "open", "high", "low", "close", "volume",
				"position", "asset_return", "strategy_return",
				"cash", "quantity", "nav", "net_worth", "entry_price",
				"transaction_cost", "reward").
			Values(row.Time, source.Open, source.High, source.Low, row.Close, source.Volume,
				row.Position, row.AssetReturn, row.StrategyReturn,
				row.Cash, row.Quantity, row.NAV, row.NetWorth, entryPrice,
				row.TransactionCost, row.Reward)

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to build insert", err)
		}

		if _, err := w.db.Exec(sqlStr, args...); err != nil {
			return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to insert trajectory row", err)
		}

		progress.Add(1)
	}

	// COPY has no placeholder support in squirrel, so the path is formatted in.
	path := filepath.Join(resultFolder, "trajectory.parquet")

	_, err := w.db.Exec(fmt.Sprintf(`COPY trajectory TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to export trajectory parquet", err)
	}

	return path, nil
}

// Cleanup truncates the staging table so the writer can be reused for the
// next run.
func (w *ResultWriter) Cleanup() error {
	if _, err := w.db.Exec(`DELETE FROM trajectory`); err != nil {
		return errors.Wrap(errors.ErrCodeResultWriteFailed, "failed to truncate trajectory table", err)
	}

	return nil
}

// Close releases the staging database.
func (w *ResultWriter) Close() error {
	return w.db.Close()
}
