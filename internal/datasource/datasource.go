package datasource

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/alphatrader/alphatrader/internal/types"
)

// DataSource loads an ordered, time-indexed bar table. Implementations are
// responsible for schema validation and gap-filling; the core consumes the
// bars as-is and rejects non-monotonic timestamps.
type DataSource interface {
	// Initialize loads the market data located at path.
	Initialize(path string) error
	// ReadAll returns every bar within the optional time bounds, ordered by
	// strictly increasing timestamp.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error)
	// Count returns the number of bars within the optional time bounds.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any underlying resources.
	Close() error
}
