package broker

import (
	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Commission is a pluggable fee calculator invoked once per fill. The
// result is subtracted from the fill's cash impact and must never be
// negative.
type Commission interface {
	Calculate(order *domain.Order, price, quantity decimal.Decimal) decimal.Decimal
}

// NoCommission charges nothing.
type NoCommission struct{}

func (NoCommission) Calculate(_ *domain.Order, _, _ decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// FixedCommission charges a flat amount per fill.
type FixedCommission struct {
	cost decimal.Decimal
}

// NewFixedCommission creates a FixedCommission. Negative costs clamp to
// zero.
func NewFixedCommission(cost decimal.Decimal) *FixedCommission {
	if cost.IsNegative() {
		cost = decimal.Zero
	}
	return &FixedCommission{cost: cost}
}

func (c *FixedCommission) Calculate(_ *domain.Order, _, _ decimal.Decimal) decimal.Decimal {
	return c.cost
}

// FlatRateCommission implements a tiered per-share schedule:
//
//	<= 500 shares  $0.013/share
//	>  500 shares  $0.008/share for the excess
//
// bounded below by $1.30 per order and above by 0.5% of the trade
// value.
type FlatRateCommission struct{}

var (
	flatRateTierQty  = decimal.NewFromInt(500)
	flatRateTier1    = decimal.NewFromFloat(0.013)
	flatRateTier2    = decimal.NewFromFloat(0.008)
	flatRateMinimum  = decimal.NewFromFloat(1.30)
	flatRateNotional = decimal.NewFromFloat(0.005)
)

func (FlatRateCommission) Calculate(_ *domain.Order, price, quantity decimal.Decimal) decimal.Decimal {
	maxPerOrder := price.Mul(quantity).Mul(flatRateNotional)

	var flatRate decimal.Decimal
	if quantity.LessThanOrEqual(flatRateTierQty) {
		flatRate = flatRateTier1.Mul(quantity)
	} else {
		flatRate = flatRateTier1.Mul(flatRateTierQty).
			Add(flatRateTier2.Mul(quantity.Sub(flatRateTierQty)))
	}

	commission := decimal.Max(flatRateMinimum, flatRate)
	commission = decimal.Min(maxPerOrder, commission)
	if commission.IsNegative() {
		commission = decimal.Zero
	}
	return commission
}
