package domain

import "github.com/shopspring/decimal"

// PositionTracker is a pure accounting primitive: it tracks the cost
// basis and profit of a single instrument's position across buys,
// sells and mark-to-market updates. Both the broker's consumers and
// return analyzers build on it.
//
// shares is signed: positive long, negative short. cost is the
// accumulated invested capital consistent with the current shares;
// a counter-trade that crosses through flat is split into a closing
// leg (no new cost) and an opening leg (new cost).
type PositionTracker struct {
	shares      decimal.Decimal
	cash        decimal.Decimal
	commissions decimal.Decimal
	cost        decimal.Decimal
}

// NewPositionTracker returns an empty tracker.
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{}
}

// Shares returns the signed share count.
func (p *PositionTracker) Shares() decimal.Decimal { return p.shares }

// Cost returns the accumulated invested capital.
func (p *PositionTracker) Cost() decimal.Decimal { return p.cost }

// Commissions returns the commissions accumulated since the last
// Update.
func (p *PositionTracker) Commissions() decimal.Decimal { return p.commissions }

func (p *PositionTracker) updateCost(quantity, price decimal.Decimal) {
	var cost decimal.Decimal

	switch {
	case p.shares.IsPositive(): // current position is long
		if quantity.IsPositive() { // increasing the long position
			cost = quantity.Mul(price)
		} else {
			diff := p.shares.Add(quantity)
			if diff.IsNegative() { // crossing into a short position
				cost = diff.Abs().Mul(price)
			}
		}
	case p.shares.IsNegative(): // current position is short
		if quantity.IsNegative() { // increasing the short position
			cost = quantity.Abs().Mul(price)
		} else {
			diff := p.shares.Add(quantity)
			if diff.IsPositive() { // crossing into a long position
				cost = diff.Mul(price)
			}
		}
	default:
		cost = quantity.Abs().Mul(price)
	}

	p.cost = p.cost.Add(cost)
}

// Buy records a purchase of quantity shares at price. quantity must be
// positive.
func (p *PositionTracker) Buy(quantity, price, commission decimal.Decimal) {
	p.updateCost(quantity, price)
	p.cash = p.cash.Sub(quantity.Mul(price))
	p.shares = p.shares.Add(quantity)
	p.commissions = p.commissions.Add(commission)
}

// Sell records a sale of quantity shares at price. quantity must be
// positive.
func (p *PositionTracker) Sell(quantity, price, commission decimal.Decimal) {
	p.updateCost(quantity.Neg(), price)
	p.cash = p.cash.Add(quantity.Mul(price))
	p.shares = p.shares.Sub(quantity)
	p.commissions = p.commissions.Add(commission)
}

// Update marks the open position to market at price without trading:
// accumulated commissions reset and the cost basis re-bases at the
// current price.
func (p *PositionTracker) Update(price decimal.Decimal) {
	p.commissions = decimal.Zero
	p.cash = p.shares.Neg().Mul(price)
	p.cost = p.shares.Abs().Mul(price)
}

// NetProfit returns the profit were the position closed at price.
func (p *PositionTracker) NetProfit(price decimal.Decimal, includeCommissions bool) decimal.Decimal {
	ret := p.cash.Add(p.shares.Mul(price))
	if includeCommissions {
		ret = ret.Sub(p.commissions)
	}
	return ret
}

// Return returns NetProfit as a fraction of the cost basis, or zero if
// there is no cost.
func (p *PositionTracker) Return(price decimal.Decimal, includeCommissions bool) decimal.Decimal {
	if p.cost.IsZero() {
		return decimal.Zero
	}
	return p.NetProfit(price, includeCommissions).Div(p.cost)
}
