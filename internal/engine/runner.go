// Package engine drives the simulation: it pulls bar sets from the
// feed and fans them out to the broker and the strategy in a strict
// per-step order.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"backtest_go/internal/broker"
	"backtest_go/internal/domain"
	"backtest_go/internal/event"
	"backtest_go/internal/feed"
	"backtest_go/internal/strategy"

	"github.com/shopspring/decimal"
)

// ErrEmptyFeed is returned by Run when the feed produced no bars.
var ErrEmptyFeed = errors.New("feed was empty")

// EquityPoint is the portfolio value after one dispatch step.
type EquityPoint struct {
	DateTime time.Time
	Equity   decimal.Decimal
}

// Runner is the single-threaded dispatch loop. Per step:
//
//	1. pull the next bar set from the feed (exhaustion ends the loop)
//	2. the feed has updated its lookback series with the new bars
//	3. the broker's matching pass runs, emitting fill/cancel events
//	4. the strategy's OnBars runs with the same bar set
//	5. the bars-processed event fires for analyzers
//
// Step 3 before step 4 is load-bearing: a strategy must see the fills
// of orders placed on previous bars before deciding on the current one,
// and must not see fills of orders placed during the current callback
// until the next step.
type Runner struct {
	feed     feed.BarFeed
	broker   *broker.Backtesting
	strategy strategy.Strategy

	strictOrdering bool

	barsProcessed *event.Event
	equity        []EquityPoint
	barsConsumed  int
	lastBars      *domain.Bars
}

// NewRunner wires the loop. The strategy's OnOrderUpdated hook is
// subscribed to the broker's order-updated event here, ahead of any
// analyzer subscription made later.
func NewRunner(barFeed feed.BarFeed, b *broker.Backtesting, strat strategy.Strategy) *Runner {
	r := &Runner{
		feed:           barFeed,
		broker:         b,
		strategy:       strat,
		strictOrdering: true,
		barsProcessed:  event.New(),
	}
	b.RegisterInstruments(barFeed.Instruments()...)
	b.OrderUpdatedEvent().Subscribe(func(args ...interface{}) {
		strat.OnOrderUpdated(args[0].(*domain.Order))
	})
	return r
}

// SetStrictOrdering controls the reaction to out-of-order bar sets:
// strict halts the run, lenient logs a warning and skips the set.
func (r *Runner) SetStrictOrdering(strict bool) {
	r.strictOrdering = strict
}

// BarsProcessedEvent emits (*domain.Bars) after each completed step,
// synchronously and in subscription order.
func (r *Runner) BarsProcessedEvent() *event.Event {
	return r.barsProcessed
}

// EquityCurve returns the per-step portfolio values recorded so far.
func (r *Runner) EquityCurve() []EquityPoint {
	return r.equity
}

// BarsConsumed returns the number of bar sets processed.
func (r *Runner) BarsConsumed() int {
	return r.barsConsumed
}

// LastBars returns the most recent bar set processed, or nil.
func (r *Runner) LastBars() *domain.Bars {
	return r.lastBars
}

// Run executes the backtest once. It returns ErrEmptyFeed if the feed
// produced nothing, the ordering error in strict mode, or ctx's error
// on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("dispatch loop started", slog.Bool("strict_ordering", r.strictOrdering))

	r.strategy.OnStart()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dispatch loop canceled")
			return ctx.Err()
		default:
		}

		bars, err := r.feed.Next()
		if err != nil {
			if errors.Is(err, domain.ErrOutOfOrderData) && !r.strictOrdering {
				slog.Warn("skipping out-of-order bars", slog.Any("error", err))
				continue
			}
			return err
		}
		if bars == nil {
			break
		}

		r.broker.OnBars(bars)
		r.strategy.OnBars(bars)
		r.barsProcessed.Emit(bars)

		r.equity = append(r.equity, EquityPoint{
			DateTime: bars.DateTime(),
			Equity:   r.broker.Equity(bars),
		})
		r.lastBars = bars
		r.barsConsumed++
	}

	if r.lastBars == nil {
		return ErrEmptyFeed
	}

	r.strategy.OnFinish(r.lastBars)
	slog.Info("dispatch loop finished",
		slog.Int("bars", r.barsConsumed),
		slog.String("final_equity", r.equity[len(r.equity)-1].Equity.String()))
	return nil
}
