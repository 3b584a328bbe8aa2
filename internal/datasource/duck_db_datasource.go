package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/alphatrader/alphatrader/internal/logger"
	"github.com/alphatrader/alphatrader/internal/types"
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// baseColumns are the columns every dataset must provide. Any additional
// numeric column is attached to the bars as an indicator, and an optional
// "regime" column carries the bull/bear context label.
var baseColumns = []string{"time", "open", "high", "low", "close", "volume"}

// regimeColumn is the optional context-label column name.
const regimeColumn = "regime"

type DuckDBDataSource struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	columns []string
}

// NewDataSource creates a new DuckDB data source instance. Initialize() must
// be called with the data path before reading.
func NewDataSource(log *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}

	return &DuckDBDataSource{
		db:      db,
		logger:  log,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: nil,
	}, nil
}

// Initialize implements DataSource. The path may point at a Parquet or a CSV
// file; anything DuckDB can scan works.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	// First drop the view if it exists
	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return fmt.Errorf("failed to drop existing view: %w", err)
	}

	// Create a view over the file - using raw SQL as Squirrel doesn't support CREATE VIEW
	var query string
	if strings.HasSuffix(path, ".csv") {
		query = fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_csv_auto('%s');`, path)
	} else {
		query = fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_parquet('%s');`, path)
	}

	_, err = d.db.Exec(query)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load market data from %s", path)
	}

	if err := d.loadColumns(); err != nil {
		return err
	}

	return d.validateSchema()
}

// loadColumns records the dataset's column names so extra indicator columns
// can be read alongside the base schema.
func (d *DuckDBDataSource) loadColumns() error {
	rows, err := d.db.Query(`DESCRIBE market_data`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to describe market data", err)
	}
	defer rows.Close()

	var columns []string

	for rows.Next() {
		var name, colType string

		var null, key, def, extra sql.NullString

		if err := rows.Scan(&name, &colType, &null, &key, &def, &extra); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column description", err)
		}

		columns = append(columns, strings.ToLower(name))
	}

	if err := rows.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "error iterating column descriptions", err)
	}

	d.columns = columns

	return nil
}

// validateSchema checks that every required base column is present.
// Missing required columns is a fatal configuration error.
func (d *DuckDBDataSource) validateSchema() error {
	present := make(map[string]bool, len(d.columns))
	for _, column := range d.columns {
		present[column] = true
	}

	for _, required := range baseColumns {
		if !present[required] {
			return errors.Newf(errors.ErrCodeMissingColumn, "required column %q is missing from the dataset", required)
		}
	}

	return nil
}

// indicatorColumns returns the dataset columns that are neither part of the
// base schema nor the regime label.
func (d *DuckDBDataSource) indicatorColumns() []string {
	var extras []string

	for _, column := range d.columns {
		if column == regimeColumn {
			continue
		}

		isBase := false

		for _, base := range baseColumns {
			if column == base {
				isBase = true

				break
			}
		}

		if !isBase {
			extras = append(extras, column)
		}
	}

	return extras
}

func (d *DuckDBDataSource) hasRegimeColumn() bool {
	for _, column := range d.columns {
		if column == regimeColumn {
			return true
		}
	}

	return false
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query := d.sq.Select("COUNT(*)").From("market_data")

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	var count int
	if err := query.RunWith(d.db).QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count market data", err)
	}

	return count, nil
}

// ReadAll implements DataSource. Bars are returned ordered by timestamp; a
// duplicate or backwards timestamp is a fatal data error identifying the
// offending bar. A sparse regime column is forward-filled, mirroring how the
// upstream context table is merged onto the trigger table.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	extras := d.indicatorColumns()

	selectColumns := append([]string{}, baseColumns...)
	selectColumns = append(selectColumns, extras...)

	hasRegime := d.hasRegimeColumn()
	if hasRegime {
		selectColumns = append(selectColumns, regimeColumn)
	}

	query := d.sq.Select(selectColumns...).From("market_data").OrderBy("time ASC")

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	rows, err := query.RunWith(d.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	var bars []types.Bar

	var lastRegime optional.Option[types.Regime]

	index := 0

	for rows.Next() {
		bar, regime, err := scanBar(rows, extras, hasRegime)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		// Forward-fill the sparse regime label
		if regime.IsSome() {
			lastRegime = regime
		}

		bar.Regime = lastRegime

		if len(bars) > 0 {
			previous := bars[len(bars)-1].Time
			if !bar.Time.After(previous) {
				code := errors.ErrCodeNonMonotonicTimestamps
				if bar.Time.Equal(previous) {
					code = errors.ErrCodeDuplicateTimestamp
				}

				return nil, errors.Wrap(code, "invalid timestamp order",
					errors.NewBarErrorf(index, bar.Time.Format(time.RFC3339), "timestamp does not increase over previous bar"))
			}
		}

		bars = append(bars, bar)
		index++
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating market data", err)
	}

	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "no bars in the requested range")
	}

	return bars, nil
}

// scanBar reads one row into a Bar. Extra numeric columns land in the
// indicator map; NULLs become NaN so that warmup gaps survive the round trip.
func scanBar(rows *sql.Rows, extras []string, hasRegime bool) (types.Bar, optional.Option[types.Regime], error) {
	var bar types.Bar

	targets := []any{&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}

	extraValues := make([]sql.NullFloat64, len(extras))
	for i := range extraValues {
		targets = append(targets, &extraValues[i])
	}

	var regimeValue sql.NullString
	if hasRegime {
		targets = append(targets, &regimeValue)
	}

	if err := rows.Scan(targets...); err != nil {
		return types.Bar{}, nil, err
	}

	if len(extras) > 0 {
		bar.Indicators = make(map[string]float64, len(extras))

		for i, name := range extras {
			if extraValues[i].Valid {
				bar.Indicators[name] = extraValues[i].Float64
			} else {
				bar.Indicators[name] = math.NaN()
			}
		}
	}

	var regime optional.Option[types.Regime]

	if hasRegime && regimeValue.Valid && regimeValue.String != "" {
		label := types.Regime(strings.ToLower(regimeValue.String))
		if !label.IsValid() {
			return types.Bar{}, nil, fmt.Errorf("unknown regime label %q", regimeValue.String)
		}

		regime = optional.Some(label)
	}

	return bar, regime, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}
