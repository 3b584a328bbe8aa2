package strategy

import (
	"github.com/alphatrader/alphatrader/pkg/errors"
)

// Strategy names accepted by the factory.
const (
	NameAlwaysInvested  = "always_invested"
	NameCrossover       = "crossover"
	NameContextWeighted = "context_weighted"
)

// NewStrategy constructs a strategy by name with its default configuration.
// Callers needing tuned parameters construct the concrete type directly.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case NameAlwaysInvested:
		return NewAlwaysInvested(), nil
	case NameCrossover:
		return NewCrossover(DefaultCrossoverConfig())
	case NameContextWeighted:
		return NewContextWeighted(DefaultContextWeightedConfig())
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy %q", name)
	}
}
