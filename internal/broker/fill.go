package broker

import (
	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

// barPrices is the matching view of a bar, either raw or
// split/dividend adjusted depending on broker configuration.
type barPrices struct {
	open  decimal.Decimal
	high  decimal.Decimal
	low   decimal.Decimal
	close decimal.Decimal
}

func pricesOf(bar *domain.Bar, useAdjusted bool) barPrices {
	if useAdjusted {
		return barPrices{
			open:  bar.AdjOpen(),
			high:  bar.AdjHigh(),
			low:   bar.AdjLow(),
			close: bar.AdjClose(),
		}
	}
	return barPrices{
		open:  bar.Open(),
		high:  bar.High(),
		low:   bar.Low(),
		close: bar.Close(),
	}
}

// marketFillPrice models "fill at next available price": the bar open,
// or the close for market-on-close orders.
func marketFillPrice(p barPrices, onClose bool) decimal.Decimal {
	if onClose {
		return p.close
	}
	return p.open
}

// limitFillPrice returns the fill price for a limit order, or false if
// the bar never reached the limit. When the bar opened already better
// than the limit, the order fills at the more favorable open.
func limitFillPrice(p barPrices, action domain.OrderAction, limitPrice decimal.Decimal) (decimal.Decimal, bool) {
	switch {
	case action.IsBuy():
		if p.low.LessThanOrEqual(limitPrice) {
			return decimal.Min(limitPrice, p.open), true
		}
	case action.IsSell():
		if p.high.GreaterThanOrEqual(limitPrice) {
			return decimal.Max(limitPrice, p.open), true
		}
	}
	return decimal.Zero, false
}

// stopTriggered reports whether the bar's range crossed the stop price.
func stopTriggered(p barPrices, action domain.OrderAction, stopPrice decimal.Decimal) bool {
	switch {
	case action.IsBuy():
		return p.high.GreaterThanOrEqual(stopPrice)
	case action.IsSell():
		return p.low.LessThanOrEqual(stopPrice)
	}
	return false
}

// stopFillPrice returns the market-style fill price for a triggered
// stop order, or false if the stop was not reached. A bar that gapped
// past the stop fills at the open.
func stopFillPrice(p barPrices, action domain.OrderAction, stopPrice decimal.Decimal) (decimal.Decimal, bool) {
	if !stopTriggered(p, action, stopPrice) {
		return decimal.Zero, false
	}
	if action.IsBuy() {
		return decimal.Max(stopPrice, p.open), true
	}
	return decimal.Min(stopPrice, p.open), true
}

// evaluateFill decides whether order fills against the bar view and at
// what price. It is the single exhaustive switch over the order type.
//
// Stop-limit orders stay dormant until the stop condition is met within
// a bar; from then on (including the remainder of that same bar) the
// limit rule applies against the full bar range. On the triggering bar
// the fill price is additionally bounded by the stop price, since the
// pre-trigger part of the range cannot have filled the order.
func evaluateFill(order *domain.Order, p barPrices) (decimal.Decimal, bool) {
	switch order.Type() {
	case domain.OrderTypeMarket:
		return marketFillPrice(p, order.FillOnClose()), true

	case domain.OrderTypeLimit:
		return limitFillPrice(p, order.Action(), order.LimitPrice())

	case domain.OrderTypeStop:
		return stopFillPrice(p, order.Action(), order.StopPrice())

	case domain.OrderTypeStopLimit:
		justHit := false
		if !order.StopHit() && stopTriggered(p, order.Action(), order.StopPrice()) {
			order.SetStopHit(true)
			justHit = true
		}
		if !order.StopHit() {
			return decimal.Zero, false
		}
		price, ok := limitFillPrice(p, order.Action(), order.LimitPrice())
		if ok && justHit {
			if order.Action().IsBuy() {
				price = decimal.Min(order.StopPrice(), order.LimitPrice())
			} else {
				price = decimal.Max(order.StopPrice(), order.LimitPrice())
			}
		}
		return price, ok
	}
	return decimal.Zero, false
}
