package strategy

import "backtest_go/internal/domain"

// Strategy is the user callback contract. All hooks run synchronously
// on the dispatch thread.
//
// Per time step the engine guarantees that every fill/cancel caused by
// the current bar set is delivered through the broker's order-updated
// event BEFORE OnBars runs, and that orders placed inside OnBars are
// not matched until the following step.
type Strategy interface {
	// OnStart runs once before the first bar.
	OnStart()

	// OnBars is the trading logic hook, called once per bar set.
	OnBars(bars *domain.Bars)

	// OnOrderUpdated is called when an order placed through the broker
	// reaches a terminal state.
	OnOrderUpdated(order *domain.Order)

	// OnFinish runs once after the last bar, with the final bar set.
	OnFinish(bars *domain.Bars)
}

// NopHooks provides no-op implementations for the optional hooks, for
// embedding by strategies that only care about OnBars.
type NopHooks struct{}

func (NopHooks) OnStart()                       {}
func (NopHooks) OnOrderUpdated(_ *domain.Order) {}
func (NopHooks) OnFinish(_ *domain.Bars)        {}
