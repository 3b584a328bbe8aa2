package types

// Regime is an external market context label conditioning position-sizing
// rules. Detection of the regime (from valuation and on-chain indicators) is
// the dataset's responsibility; the core only consumes the label.
type Regime string

const (
	// RegimeBull marks a bull market context.
	RegimeBull Regime = "bull"
	// RegimeBear marks a bear market context.
	RegimeBear Regime = "bear"
)

// AllRegimes lists every valid regime label.
var AllRegimes = []any{
	RegimeBull,
	RegimeBear,
}

// IsValid reports whether the regime carries one of the known labels.
func (r Regime) IsValid() bool {
	return r == RegimeBull || r == RegimeBear
}
