package strategy

import (
	"github.com/alphatrader/alphatrader/internal/types"
)

// AlwaysInvested holds a constant full long position on every bar. It serves
// as the buy-and-hold baseline against which the signal-driven strategies are
// compared.
type AlwaysInvested struct{}

// NewAlwaysInvested returns the buy-and-hold baseline strategy.
func NewAlwaysInvested() *AlwaysInvested {
	return &AlwaysInvested{}
}

func (s *AlwaysInvested) Name() string {
	return "always_invested"
}

func (s *AlwaysInvested) GenerateSignals(bars []types.Bar) (types.StrategySeries, error) {
	positions := make([]float64, len(bars))
	for i := range positions {
		positions[i] = 1
	}

	return types.StrategySeries{
		Positions:    positions,
		AssetReturns: closeReturns(bars),
	}, nil
}
