package datasource

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/alphatrader/alphatrader/internal/types"
)

// SliceDataSource serves bars already held in memory. Used by tests and by
// parameter sweeps that reuse one loaded dataset across many runs.
type SliceDataSource struct {
	bars []types.Bar
}

// NewSliceDataSource creates a data source over the given bars.
func NewSliceDataSource(bars []types.Bar) DataSource {
	return &SliceDataSource{bars: bars}
}

// Initialize implements DataSource. The slice source has nothing to load.
func (s *SliceDataSource) Initialize(path string) error {
	return nil
}

// ReadAll implements DataSource.
func (s *SliceDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	var out []types.Bar

	for _, bar := range s.bars {
		if start.IsSome() && bar.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && bar.Time.After(end.Unwrap()) {
			continue
		}

		out = append(out, bar)
	}

	return out, nil
}

// Count implements DataSource.
func (s *SliceDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	bars, err := s.ReadAll(start, end)
	if err != nil {
		return 0, err
	}

	return len(bars), nil
}

// Close implements DataSource.
func (s *SliceDataSource) Close() error {
	return nil
}
