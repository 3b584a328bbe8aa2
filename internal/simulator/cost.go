package simulator

import (
	"math"

	"github.com/shopspring/decimal"
)

// CostModel prices the transaction cost of a quantity change executed at a
// given price. Implementations must return a non-negative cost.
type CostModel interface {
	// Cost returns the fee for trading |quantityDelta| units at price.
	Cost(price, quantityDelta float64) float64
}

// RateCostModel charges a flat fraction of traded notional, the venue-fee
// model used by the reference strategies. The multiplication runs through
// decimals so repeated small fees do not accumulate float drift.
type RateCostModel struct {
	rate decimal.Decimal
}

// NewRateCostModel creates a cost model charging rate of traded notional.
func NewRateCostModel(rate float64) *RateCostModel {
	return &RateCostModel{rate: decimal.NewFromFloat(rate)}
}

func (m *RateCostModel) Cost(price, quantityDelta float64) float64 {
	notional := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(math.Abs(quantityDelta)))
	cost, _ := notional.Mul(m.rate).Float64()

	return cost
}

// ZeroCostModel charges nothing. Used for frictionless baselines and tests.
type ZeroCostModel struct{}

func NewZeroCostModel() *ZeroCostModel {
	return &ZeroCostModel{}
}

func (m *ZeroCostModel) Cost(price, quantityDelta float64) float64 {
	return 0
}
