// Package broker simulates order execution against historical bars:
// it owns the cash balance, the active order set and the commission
// strategy, and runs the per-bar matching pass.
package broker

import (
	"log/slog"

	"backtest_go/internal/domain"
	"backtest_go/internal/event"
	"backtest_go/pkg/container"

	"github.com/shopspring/decimal"
)

// Broker is the order-execution surface exposed to strategies and the
// dispatch loop.
type Broker interface {
	Cash() decimal.Decimal

	// SetCash replaces the cash balance. Simulation brokers accept it
	// before the first bar only; brokers backed by a real account must
	// return domain.ErrUnsupportedOperation.
	SetCash(cash decimal.Decimal) error

	Shares(instrument string) decimal.Decimal
	Equity(bars *domain.Bars) decimal.Decimal

	CreateMarketOrder(action domain.OrderAction, instrument string, quantity decimal.Decimal, onClose, goodTillCanceled bool) *domain.Order
	CreateLimitOrder(action domain.OrderAction, instrument string, limitPrice, quantity decimal.Decimal, goodTillCanceled bool) *domain.Order
	CreateStopOrder(action domain.OrderAction, instrument string, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) *domain.Order
	CreateStopLimitOrder(action domain.OrderAction, instrument string, stopPrice, limitPrice, quantity decimal.Decimal, goodTillCanceled bool) *domain.Order

	PlaceOrder(order *domain.Order) error
	CancelOrder(order *domain.Order) error

	// OrderUpdatedEvent emits (*domain.Order) whenever an order reaches
	// a terminal state.
	OrderUpdatedEvent() *event.Event
}

// completedOrderHistory bounds how many terminal orders stay reachable
// through Order(id).
const completedOrderHistory = 1024

// Backtesting is the simulated broker. All state is owned by the
// single dispatch goroutine; no locking.
type Backtesting struct {
	cash              decimal.Decimal
	commission        Commission
	useAdjustedValues bool

	pending     []*domain.Order // submission order, the matching tie-break
	shares      map[string]decimal.Decimal
	lastClose   map[string]decimal.Decimal
	instruments map[string]struct{}
	completed   *container.BoundedMap[uint64, *domain.Order]

	orderUpdated *event.Event
	nextOrderID  uint64
	started      bool
}

var _ Broker = (*Backtesting)(nil)

// NewBacktesting creates a simulated broker with the given starting
// cash. A nil commission means no commission.
func NewBacktesting(cash decimal.Decimal, commission Commission) *Backtesting {
	if commission == nil {
		commission = NoCommission{}
	}
	return &Backtesting{
		cash:         cash,
		commission:   commission,
		shares:       make(map[string]decimal.Decimal),
		lastClose:    make(map[string]decimal.Decimal),
		instruments:  make(map[string]struct{}),
		completed:    container.NewBoundedMap[uint64, *domain.Order](completedOrderHistory),
		orderUpdated: event.New(),
		nextOrderID:  1,
	}
}

// RegisterInstruments restricts order placement to the given symbols.
// With no registration every instrument is accepted.
func (b *Backtesting) RegisterInstruments(instruments ...string) {
	for _, instrument := range instruments {
		b.instruments[instrument] = struct{}{}
	}
}

// SetUseAdjustedValues switches matching and equity to adjusted prices.
func (b *Backtesting) SetUseAdjustedValues(useAdjusted bool) {
	b.useAdjustedValues = useAdjusted
}

// UseAdjustedValues reports whether adjusted prices are in effect.
func (b *Backtesting) UseAdjustedValues() bool {
	return b.useAdjustedValues
}

// Cash returns the available cash.
func (b *Backtesting) Cash() decimal.Decimal {
	return b.cash
}

// SetCash replaces the cash balance. Only allowed before the first bar
// has been processed.
func (b *Backtesting) SetCash(cash decimal.Decimal) error {
	if b.started {
		return domain.ErrUnsupportedOperation
	}
	b.cash = cash
	return nil
}

// Shares returns the signed share count held for instrument.
func (b *Backtesting) Shares(instrument string) decimal.Decimal {
	return b.shares[instrument]
}

// Equity returns cash plus the market value of every position, marked
// at the given bars' closes, falling back to the last known close for
// instruments absent from the set.
func (b *Backtesting) Equity(bars *domain.Bars) decimal.Decimal {
	ret := b.cash
	for instrument, shares := range b.shares {
		price, ok := b.markPrice(instrument, bars)
		if !ok {
			continue
		}
		ret = ret.Add(shares.Mul(price))
	}
	return ret
}

func (b *Backtesting) markPrice(instrument string, bars *domain.Bars) (decimal.Decimal, bool) {
	if bars != nil {
		if bar := bars.Bar(instrument); bar != nil {
			if b.useAdjustedValues {
				return bar.AdjClose(), true
			}
			return bar.Close(), true
		}
	}
	price, ok := b.lastClose[instrument]
	return price, ok
}

// OrderUpdatedEvent emits (*domain.Order) on every terminal transition.
func (b *Backtesting) OrderUpdatedEvent() *event.Event {
	return b.orderUpdated
}

// Order returns a pending or recently completed order by id.
func (b *Backtesting) Order(id uint64) *domain.Order {
	for _, order := range b.pending {
		if order.ID() == id {
			return order
		}
	}
	if order, ok := b.completed.Get(id); ok {
		return order
	}
	return nil
}

// PendingOrders returns a copy of the active order set, in submission
// order.
func (b *Backtesting) PendingOrders() []*domain.Order {
	ret := make([]*domain.Order, len(b.pending))
	copy(ret, b.pending)
	return ret
}

func (b *Backtesting) nextID() uint64 {
	id := b.nextOrderID
	b.nextOrderID++
	return id
}

// CreateMarketOrder builds a market order. It fills at the open of the
// first bar seen after submission, or at the close if onClose is set.
func (b *Backtesting) CreateMarketOrder(action domain.OrderAction, instrument string, quantity decimal.Decimal, onClose, goodTillCanceled bool) *domain.Order {
	return domain.NewOrder(b.nextID(), domain.OrderTypeMarket, action, instrument, quantity).
		WithFillOnClose(onClose).
		WithGoodTillCanceled(goodTillCanceled)
}

// CreateLimitOrder builds a limit order.
func (b *Backtesting) CreateLimitOrder(action domain.OrderAction, instrument string, limitPrice, quantity decimal.Decimal, goodTillCanceled bool) *domain.Order {
	return domain.NewOrder(b.nextID(), domain.OrderTypeLimit, action, instrument, quantity).
		WithLimitPrice(limitPrice).
		WithGoodTillCanceled(goodTillCanceled)
}

// CreateStopOrder builds a stop order.
func (b *Backtesting) CreateStopOrder(action domain.OrderAction, instrument string, stopPrice, quantity decimal.Decimal, goodTillCanceled bool) *domain.Order {
	return domain.NewOrder(b.nextID(), domain.OrderTypeStop, action, instrument, quantity).
		WithStopPrice(stopPrice).
		WithGoodTillCanceled(goodTillCanceled)
}

// CreateStopLimitOrder builds a stop-limit order: dormant until the
// stop price is crossed, a limit order afterwards.
func (b *Backtesting) CreateStopLimitOrder(action domain.OrderAction, instrument string, stopPrice, limitPrice, quantity decimal.Decimal, goodTillCanceled bool) *domain.Order {
	return domain.NewOrder(b.nextID(), domain.OrderTypeStopLimit, action, instrument, quantity).
		WithStopPrice(stopPrice).
		WithLimitPrice(limitPrice).
		WithGoodTillCanceled(goodTillCanceled)
}

// PlaceOrder submits an order for matching on subsequent bars.
//
// A BUY whose notional plus commission can be estimated up front is
// rejected with ErrInsufficientFunds if it exceeds available cash. The
// estimation price is the limit price, else the stop price, else the
// last known close; a market order placed before any bar was seen defers
// the check to fill time.
func (b *Backtesting) PlaceOrder(order *domain.Order) error {
	if !order.IsAccepted() {
		return &domain.StateError{Op: "place", State: order.State()}
	}
	for _, pending := range b.pending {
		if pending == order {
			return domain.ErrDuplicateOrder
		}
	}
	if len(b.instruments) > 0 {
		if _, ok := b.instruments[order.Instrument()]; !ok {
			return domain.ErrUnknownInstrument
		}
	}

	if order.Action().IsBuy() {
		if price, ok := b.estimatePrice(order); ok {
			required := price.Mul(order.Quantity()).
				Add(b.commission.Calculate(order, price, order.Quantity()))
			if required.GreaterThan(b.cash) {
				return &domain.FundsError{Required: required, Available: b.cash}
			}
		}
	}

	b.pending = append(b.pending, order)
	return nil
}

func (b *Backtesting) estimatePrice(order *domain.Order) (decimal.Decimal, bool) {
	if !order.LimitPrice().IsZero() {
		return order.LimitPrice(), true
	}
	if !order.StopPrice().IsZero() {
		return order.StopPrice(), true
	}
	price, ok := b.lastClose[order.Instrument()]
	return price, ok
}

// CancelOrder cancels a pending order immediately: it is removed from
// the active set before the next match pass. Canceling a filled order
// fails with ErrInvalidState.
func (b *Backtesting) CancelOrder(order *domain.Order) error {
	if err := order.Cancel(); err != nil {
		return err
	}
	for i, pending := range b.pending {
		if pending == order {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			break
		}
	}
	b.completed.Put(order.ID(), order)
	b.orderUpdated.Emit(order)
	return nil
}

// OnBars runs the matching pass for one bar set. Pending orders are
// evaluated in submission order; a non-GTC order that saw its bar and
// did not fill is canceled at the end of this pass ("day order").
// Terminal transitions are emitted on the order-updated event.
func (b *Backtesting) OnBars(bars *domain.Bars) {
	b.started = true

	pending := b.pending
	b.pending = make([]*domain.Order, 0, len(pending))

	for _, order := range pending {
		if !order.IsAccepted() {
			// Canceled behind our back; just report it.
			b.completed.Put(order.ID(), order)
			b.orderUpdated.Emit(order)
			continue
		}

		if bar := bars.Bar(order.Instrument()); bar != nil {
			order.ClearDirty()
			b.tryExecute(order, bar, bars)

			if order.IsAccepted() && !order.GoodTillCanceled() {
				_ = order.Cancel()
			}
		}

		if order.IsAccepted() {
			b.pending = append(b.pending, order)
		} else {
			b.completed.Put(order.ID(), order)
			b.orderUpdated.Emit(order)
		}
	}

	for _, instrument := range bars.Instruments() {
		bar := bars.Bar(instrument)
		if b.useAdjustedValues {
			b.lastClose[instrument] = bar.AdjClose()
		} else {
			b.lastClose[instrument] = bar.Close()
		}
	}
}

func (b *Backtesting) tryExecute(order *domain.Order, bar *domain.Bar, bars *domain.Bars) {
	price, ok := evaluateFill(order, pricesOf(bar, b.useAdjustedValues))
	if !ok {
		return
	}
	b.commitExecution(order, price, order.Quantity(), bars)
}

// commitExecution applies the cash and position impact of a fill. A
// fill that would drive cash negative does not commit; the order stays
// pending and may fill on a later bar.
func (b *Backtesting) commitExecution(order *domain.Order, price, quantity decimal.Decimal, bars *domain.Bars) bool {
	commission := b.commission.Calculate(order, price, quantity)
	notional := price.Mul(quantity)

	var resultingCash decimal.Decimal
	var sharesDelta decimal.Decimal
	if order.Action().IsBuy() {
		resultingCash = b.cash.Sub(notional).Sub(commission)
		sharesDelta = quantity
	} else {
		resultingCash = b.cash.Add(notional).Sub(commission)
		sharesDelta = quantity.Neg()
	}

	if resultingCash.IsNegative() {
		slog.Warn("fill skipped: not enough cash",
			slog.Uint64("order_id", order.ID()),
			slog.String("instrument", order.Instrument()),
			slog.String("price", price.String()),
			slog.String("cash", b.cash.String()))
		return false
	}

	b.cash = resultingCash
	instrument := order.Instrument()
	b.shares[instrument] = b.shares[instrument].Add(sharesDelta)

	if err := order.Fill(domain.OrderExecutionInfo{
		Price:      price,
		Quantity:   quantity,
		Commission: commission,
		DateTime:   bars.DateTime(),
	}); err != nil {
		// Unreachable for orders coming off the pending set.
		slog.Error("fill on terminal order", slog.Uint64("order_id", order.ID()), slog.Any("error", err))
		return false
	}
	return true
}
