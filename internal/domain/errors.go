package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidState is returned when operating on an order already in
	// a terminal state (cancel after fill, re-submit, price update).
	ErrInvalidState = errors.New("invalid order state")

	// ErrInsufficientFunds is returned when a buy order's notional plus
	// commission exceeds the available cash. Simulated brokers have no
	// implicit margin.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnsupportedOperation is returned for operations a broker
	// backend cannot honor, e.g. setting cash on a live account.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrOutOfOrderData is returned when a feed yields a bar whose
	// datetime is not strictly greater than the previous one.
	ErrOutOfOrderData = errors.New("bar data times are not in order")

	// ErrUnknownInstrument is returned when an order or lookup
	// references an instrument the feed/broker does not know.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrDuplicateOrder is returned when the same order is placed twice.
	ErrDuplicateOrder = errors.New("order already placed")
)

// StateError reports an operation attempted on an order in the wrong
// lifecycle state.
type StateError struct {
	Op    string
	State OrderState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s: order is %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// FundsError reports a rejected buy with the amounts involved.
type FundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *FundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, available %s", e.Required, e.Available)
}

func (e *FundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// OutOfOrderError reports a feed ordering violation.
type OutOfOrderError struct {
	Prev time.Time
	Curr time.Time
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("bar data times are not in order: previous %s, current %s", e.Prev, e.Curr)
}

func (e *OutOfOrderError) Unwrap() error {
	return ErrOutOfOrderData
}
