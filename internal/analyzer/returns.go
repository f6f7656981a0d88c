// Package analyzer derives per-bar and cumulative return series from
// broker fills, for consumption by external statistics tooling.
package analyzer

import (
	"time"

	"backtest_go/internal/broker"
	"backtest_go/internal/domain"
	"backtest_go/internal/engine"

	"github.com/shopspring/decimal"
)

// ReturnPoint is the return observed over a single bar.
type ReturnPoint struct {
	DateTime   time.Time
	Net        decimal.Decimal
	Cumulative decimal.Decimal
}

// Returns tracks a PositionTracker per instrument, fed by the broker's
// order-updated event, and closes out a return sample on every
// bars-processed event. Both events are synchronous, so the series is
// consistent with the dispatch order.
type Returns struct {
	trackers    map[string]*domain.PositionTracker
	useAdjusted bool

	series     []ReturnPoint
	cumulative decimal.Decimal
}

// NewReturns attaches the analyzer to a broker and runner. It must be
// built after NewRunner so the strategy observes order updates first.
func NewReturns(b *broker.Backtesting, r *engine.Runner) *Returns {
	a := &Returns{
		trackers:    make(map[string]*domain.PositionTracker),
		useAdjusted: b.UseAdjustedValues(),
	}
	b.OrderUpdatedEvent().Subscribe(func(args ...interface{}) {
		a.onOrderUpdated(args[0].(*domain.Order))
	})
	r.BarsProcessedEvent().Subscribe(func(args ...interface{}) {
		a.onBars(args[0].(*domain.Bars))
	})
	return a
}

// Series returns the per-bar return points recorded so far.
func (a *Returns) Series() []ReturnPoint {
	return a.series
}

// CumulativeReturn returns the compounded return over the whole run.
func (a *Returns) CumulativeReturn() decimal.Decimal {
	return a.cumulative
}

func (a *Returns) tracker(instrument string) *domain.PositionTracker {
	t, ok := a.trackers[instrument]
	if !ok {
		t = domain.NewPositionTracker()
		a.trackers[instrument] = t
	}
	return t
}

func (a *Returns) onOrderUpdated(order *domain.Order) {
	if !order.IsFilled() {
		return
	}
	info := order.ExecutionInfo()
	t := a.tracker(order.Instrument())
	if order.Action().IsBuy() {
		t.Buy(info.Quantity, info.Price, info.Commission)
	} else {
		t.Sell(info.Quantity, info.Price, info.Commission)
	}
}

func (a *Returns) onBars(bars *domain.Bars) {
	netProfit := decimal.Zero
	cost := decimal.Zero

	for instrument, t := range a.trackers {
		bar := bars.Bar(instrument)
		if bar == nil {
			continue
		}
		price := bar.Close()
		if a.useAdjusted {
			price = bar.AdjClose()
		}
		netProfit = netProfit.Add(t.NetProfit(price, true))
		cost = cost.Add(t.Cost())
		t.Update(price)
	}

	net := decimal.Zero
	if !cost.IsZero() {
		net = netProfit.Div(cost)
	}

	one := decimal.NewFromInt(1)
	a.cumulative = one.Add(a.cumulative).Mul(one.Add(net)).Sub(one)

	a.series = append(a.series, ReturnPoint{
		DateTime:   bars.DateTime(),
		Net:        net,
		Cumulative: a.cumulative,
	})
}
