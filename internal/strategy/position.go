package strategy

import (
	"backtest_go/internal/broker"
	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Position pairs the order used to enter a trade with the order used to
// exit it. A zero limit/stop price means "not set" when choosing the
// order type.
type Position struct {
	broker broker.Broker
	entry  *domain.Order
	exit   *domain.Order
	long   bool
}

// EntryOrder returns the order used to enter the position.
func (p *Position) EntryOrder() *domain.Order { return p.entry }

// ExitOrder returns the order used to exit, or nil if none was placed.
func (p *Position) ExitOrder() *domain.Order { return p.exit }

// EntryFilled reports whether the entry order filled.
func (p *Position) EntryFilled() bool { return p.entry.IsFilled() }

// ExitFilled reports whether the exit order filled.
func (p *Position) ExitFilled() bool { return p.exit != nil && p.exit.IsFilled() }

// Instrument returns the traded instrument.
func (p *Position) Instrument() string { return p.entry.Instrument() }

// Quantity returns the entry quantity.
func (p *Position) Quantity() decimal.Decimal { return p.entry.Quantity() }

// IsLong reports the direction of the position.
func (p *Position) IsLong() bool { return p.long }

// Exit places the order that closes the position:
//
//   - entry not filled yet: the entry is canceled instead.
//   - a pending exit exists: it is canceled and replaced.
//   - both prices zero: market order; only limit: limit order; only
//     stop: stop order; both: stop-limit order.
//
// The exit order inherits the entry's time-in-force.
func (p *Position) Exit(limitPrice, stopPrice decimal.Decimal) error {
	if p.ExitFilled() {
		return nil
	}

	if !p.entry.IsFilled() {
		return p.broker.CancelOrder(p.entry)
	}

	if p.exit != nil && p.exit.IsAccepted() {
		if err := p.broker.CancelOrder(p.exit); err != nil {
			return err
		}
	}

	action := domain.ActionSell
	if !p.long {
		action = domain.ActionBuyToCover
	}

	gtc := p.entry.GoodTillCanceled()
	instrument := p.entry.Instrument()
	quantity := p.entry.Quantity()

	var order *domain.Order
	switch {
	case limitPrice.IsZero() && stopPrice.IsZero():
		order = p.broker.CreateMarketOrder(action, instrument, quantity, false, gtc)
	case !limitPrice.IsZero() && stopPrice.IsZero():
		order = p.broker.CreateLimitOrder(action, instrument, limitPrice, quantity, gtc)
	case limitPrice.IsZero() && !stopPrice.IsZero():
		order = p.broker.CreateStopOrder(action, instrument, stopPrice, quantity, gtc)
	default:
		order = p.broker.CreateStopLimitOrder(action, instrument, stopPrice, limitPrice, quantity, gtc)
	}

	if err := p.broker.PlaceOrder(order); err != nil {
		return err
	}
	p.exit = order
	return nil
}

// Trader wraps a broker with position-entry helpers so strategies do
// not assemble orders by hand.
type Trader struct {
	broker broker.Broker
}

// NewTrader binds the helpers to a broker.
func NewTrader(b broker.Broker) *Trader {
	return &Trader{broker: b}
}

// Broker returns the underlying broker.
func (t *Trader) Broker() broker.Broker { return t.broker }

func (t *Trader) enter(long bool, instrument string, limitPrice, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	action := domain.ActionBuy
	if !long {
		action = domain.ActionSellShort
	}

	var order *domain.Order
	switch {
	case limitPrice.IsZero() && stopPrice.IsZero():
		order = t.broker.CreateMarketOrder(action, instrument, quantity, false, goodTillCanceled)
	case !limitPrice.IsZero() && stopPrice.IsZero():
		order = t.broker.CreateLimitOrder(action, instrument, limitPrice, quantity, goodTillCanceled)
	case limitPrice.IsZero() && !stopPrice.IsZero():
		order = t.broker.CreateStopOrder(action, instrument, stopPrice, quantity, goodTillCanceled)
	default:
		order = t.broker.CreateStopLimitOrder(action, instrument, stopPrice, limitPrice, quantity, goodTillCanceled)
	}

	if err := t.broker.PlaceOrder(order); err != nil {
		return nil, err
	}
	return &Position{broker: t.broker, entry: order, long: long}, nil
}

// EnterLong opens a long position with a market order.
func (t *Trader) EnterLong(instrument string, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(true, instrument, decimal.Zero, decimal.Zero, quantity, goodTillCanceled)
}

// EnterShort opens a short position with a market order.
func (t *Trader) EnterShort(instrument string, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(false, instrument, decimal.Zero, decimal.Zero, quantity, goodTillCanceled)
}

// EnterLongLimit opens a long position with a limit order.
func (t *Trader) EnterLongLimit(instrument string, limitPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(true, instrument, limitPrice, decimal.Zero, quantity, goodTillCanceled)
}

// EnterShortLimit opens a short position with a limit order.
func (t *Trader) EnterShortLimit(instrument string, limitPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(false, instrument, limitPrice, decimal.Zero, quantity, goodTillCanceled)
}

// EnterLongStop opens a long position with a stop order.
func (t *Trader) EnterLongStop(instrument string, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(true, instrument, decimal.Zero, stopPrice, quantity, goodTillCanceled)
}

// EnterShortStop opens a short position with a stop order.
func (t *Trader) EnterShortStop(instrument string, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(false, instrument, decimal.Zero, stopPrice, quantity, goodTillCanceled)
}

// EnterLongStopLimit opens a long position with a stop-limit order.
func (t *Trader) EnterLongStopLimit(instrument string, limitPrice, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(true, instrument, limitPrice, stopPrice, quantity, goodTillCanceled)
}

// EnterShortStopLimit opens a short position with a stop-limit order.
func (t *Trader) EnterShortStopLimit(instrument string, limitPrice, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) (*Position, error) {
	return t.enter(false, instrument, limitPrice, stopPrice, quantity, goodTillCanceled)
}
