package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType tags the order variant. The matching pass switches
// exhaustively over this tag.
type OrderType int

const (
	OrderTypeMarket OrderType = iota + 1
	OrderTypeLimit
	OrderTypeStop
	OrderTypeStopLimit
)

// String returns the string representation of OrderType.
func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	case OrderTypeStopLimit:
		return "STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// OrderAction is the side of an order.
type OrderAction int

const (
	ActionBuy OrderAction = iota + 1
	ActionBuyToCover
	ActionSell
	ActionSellShort
)

// String returns the string representation of OrderAction.
func (a OrderAction) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionBuyToCover:
		return "BUY_TO_COVER"
	case ActionSell:
		return "SELL"
	case ActionSellShort:
		return "SELL_SHORT"
	default:
		return "UNKNOWN"
	}
}

// IsBuy reports whether the action increases the position.
func (a OrderAction) IsBuy() bool {
	return a == ActionBuy || a == ActionBuyToCover
}

// IsSell reports whether the action decreases the position.
func (a OrderAction) IsSell() bool {
	return a == ActionSell || a == ActionSellShort
}

// OrderState is the lifecycle state. ACCEPTED is initial; FILLED and
// CANCELED are terminal.
type OrderState int

const (
	OrderStateAccepted OrderState = iota + 1
	OrderStateCanceled
	OrderStateFilled
)

// String returns the string representation of OrderState.
func (s OrderState) String() string {
	switch s {
	case OrderStateAccepted:
		return "ACCEPTED"
	case OrderStateCanceled:
		return "CANCELED"
	case OrderStateFilled:
		return "FILLED"
	default:
		return "UNKNOWN"
	}
}

// OrderExecutionInfo is attached to an order exactly once, when it fills.
type OrderExecutionInfo struct {
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Commission decimal.Decimal
	DateTime   time.Time
}

// Order is a single order. It is created by the broker's factory
// methods and mutated only by the broker during matching; strategies
// may adjust prices/quantity on a non-terminal order, which marks it
// dirty so the next match pass re-evaluates it.
type Order struct {
	id         uint64
	orderType  OrderType
	action     OrderAction
	instrument string

	quantity   decimal.Decimal
	limitPrice decimal.Decimal
	stopPrice  decimal.Decimal

	goodTillCanceled bool
	fillOnClose      bool // market-on-close
	state            OrderState
	dirty            bool
	stopHit          bool // stop-limit only: limit leg activated
	execInfo         *OrderExecutionInfo
}

// NewOrder builds an order in the ACCEPTED state. Brokers assign ids
// from their own monotonic counter.
func NewOrder(id uint64, orderType OrderType, action OrderAction, instrument string, quantity decimal.Decimal) *Order {
	return &Order{
		id:         id,
		orderType:  orderType,
		action:     action,
		instrument: instrument,
		quantity:   quantity,
		state:      OrderStateAccepted,
	}
}

func (o *Order) ID() uint64                  { return o.id }
func (o *Order) Type() OrderType             { return o.orderType }
func (o *Order) Action() OrderAction         { return o.action }
func (o *Order) Instrument() string          { return o.instrument }
func (o *Order) Quantity() decimal.Decimal   { return o.quantity }
func (o *Order) LimitPrice() decimal.Decimal { return o.limitPrice }
func (o *Order) StopPrice() decimal.Decimal  { return o.stopPrice }
func (o *Order) GoodTillCanceled() bool      { return o.goodTillCanceled }
func (o *Order) FillOnClose() bool           { return o.fillOnClose }
func (o *Order) State() OrderState           { return o.state }

// IsAccepted reports whether the order is still active.
func (o *Order) IsAccepted() bool { return o.state == OrderStateAccepted }

// IsCanceled reports whether the order was canceled.
func (o *Order) IsCanceled() bool { return o.state == OrderStateCanceled }

// IsFilled reports whether the order was filled.
func (o *Order) IsFilled() bool { return o.state == OrderStateFilled }

// ExecutionInfo returns the fill details, or nil if not filled.
func (o *Order) ExecutionInfo() *OrderExecutionInfo { return o.execInfo }

// IsDirty reports whether the order was modified since the last match
// pass looked at it.
func (o *Order) IsDirty() bool { return o.dirty }

// ClearDirty is called by the broker once a match pass has seen the
// updated prices.
func (o *Order) ClearDirty() { o.dirty = false }

// StopHit reports whether a stop-limit order's limit leg is active.
func (o *Order) StopHit() bool { return o.stopHit }

// SetStopHit activates the limit leg of a stop-limit order.
func (o *Order) SetStopHit(hit bool) { o.stopHit = hit }

// SetQuantity updates the quantity of a non-terminal order.
func (o *Order) SetQuantity(quantity decimal.Decimal) error {
	if !o.IsAccepted() {
		return &StateError{Op: "set quantity", State: o.state}
	}
	o.quantity = quantity
	o.dirty = true
	return nil
}

// SetLimitPrice updates the limit price of a non-terminal order.
func (o *Order) SetLimitPrice(limitPrice decimal.Decimal) error {
	if !o.IsAccepted() {
		return &StateError{Op: "set limit price", State: o.state}
	}
	o.limitPrice = limitPrice
	o.dirty = true
	return nil
}

// SetStopPrice updates the stop price of a non-terminal order.
func (o *Order) SetStopPrice(stopPrice decimal.Decimal) error {
	if !o.IsAccepted() {
		return &StateError{Op: "set stop price", State: o.state}
	}
	o.stopPrice = stopPrice
	o.dirty = true
	return nil
}

// SetGoodTillCanceled updates the time-in-force of a non-terminal
// order. Orders that are not GTC get canceled at the end of their bar
// if unfilled.
func (o *Order) SetGoodTillCanceled(gtc bool) error {
	if !o.IsAccepted() {
		return &StateError{Op: "set good till canceled", State: o.state}
	}
	o.goodTillCanceled = gtc
	o.dirty = true
	return nil
}

// SetFillOnClose makes a market order fill at the bar close instead of
// the open.
func (o *Order) SetFillOnClose(onClose bool) error {
	if !o.IsAccepted() {
		return &StateError{Op: "set fill on close", State: o.state}
	}
	o.fillOnClose = onClose
	o.dirty = true
	return nil
}

// Fill transitions the order to FILLED and attaches the execution info.
func (o *Order) Fill(info OrderExecutionInfo) error {
	if !o.IsAccepted() {
		return &StateError{Op: "fill", State: o.state}
	}
	o.execInfo = &info
	o.state = OrderStateFilled
	return nil
}

// Cancel transitions the order to CANCELED. Canceling a filled or
// already canceled order fails.
func (o *Order) Cancel() error {
	if !o.IsAccepted() {
		return &StateError{Op: "cancel", State: o.state}
	}
	o.state = OrderStateCanceled
	return nil
}

// WithLimitPrice sets the limit price at construction time.
func (o *Order) WithLimitPrice(limitPrice decimal.Decimal) *Order {
	o.limitPrice = limitPrice
	return o
}

// WithStopPrice sets the stop price at construction time.
func (o *Order) WithStopPrice(stopPrice decimal.Decimal) *Order {
	o.stopPrice = stopPrice
	return o
}

// WithFillOnClose makes a market order fill at the close, set at
// construction time.
func (o *Order) WithFillOnClose(onClose bool) *Order {
	o.fillOnClose = onClose
	return o
}

// WithGoodTillCanceled sets the time-in-force at construction time.
func (o *Order) WithGoodTillCanceled(gtc bool) *Order {
	o.goodTillCanceled = gtc
	return o
}
