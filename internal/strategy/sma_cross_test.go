package strategy

import (
	"testing"
	"time"

	"backtest_go/internal/broker"
	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

func flatBar(t *testing.T, day int, instrument string, close float64) *domain.Bars {
	t.Helper()
	bar, err := domain.NewBar(
		time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(close),
		decimal.NewFromFloat(close+1),
		decimal.NewFromFloat(close-1),
		decimal.NewFromFloat(close),
		decimal.NewFromInt(1000),
		decimal.NewFromFloat(close),
	)
	if err != nil {
		t.Fatalf("NewBar failed: %v", err)
	}
	set, err := domain.NewBars(map[string]*domain.Bar{instrument: bar})
	if err != nil {
		t.Fatalf("NewBars failed: %v", err)
	}
	return set
}

// step mimics one dispatch iteration: broker matching first, then the
// strategy callback.
func step(b *broker.Backtesting, s *SMACross, bars *domain.Bars) {
	b.OnBars(bars)
	s.OnBars(bars)
}

func TestSMACross_TradesTheCrossover(t *testing.T) {
	b := broker.NewBacktesting(decimal.NewFromInt(1000), nil)
	s := NewSMACross(NewTrader(b), "X", 2, 3, decimal.NewFromInt(10))
	b.OrderUpdatedEvent().Subscribe(func(args ...interface{}) {
		s.OnOrderUpdated(args[0].(*domain.Order))
	})

	closes := []float64{10, 10, 10}
	for i, c := range closes {
		step(b, s, flatBar(t, 2+i, "X", c))
	}
	if s.Position() != nil {
		t.Fatal("no crossover yet, must be flat")
	}

	// Short SMA crosses above the long SMA: enter long.
	step(b, s, flatBar(t, 5, "X", 13))
	pos := s.Position()
	if pos == nil {
		t.Fatal("expected a position after the golden cross")
	}
	if !pos.IsLong() {
		t.Error("expected a long position")
	}
	if pos.EntryFilled() {
		t.Error("entry must still be pending on the signal bar")
	}

	// The entry fills on the next bar.
	step(b, s, flatBar(t, 6, "X", 13))
	if !pos.EntryFilled() {
		t.Fatal("entry should have filled")
	}
	if got := pos.EntryOrder().ExecutionInfo().Price; !got.Equal(decimal.NewFromInt(13)) {
		t.Errorf("entry price: expected next open 13, got %s", got)
	}
	if !b.Shares("X").Equal(decimal.NewFromInt(10)) {
		t.Errorf("shares: expected 10, got %s", b.Shares("X"))
	}

	// Short SMA crosses back under: exit.
	step(b, s, flatBar(t, 7, "X", 8))
	if pos.ExitOrder() == nil {
		t.Fatal("expected an exit order after the dead cross")
	}

	// Exit fills on the next bar and the strategy goes flat.
	step(b, s, flatBar(t, 8, "X", 8))
	if s.Position() != nil {
		t.Error("expected flat after the exit fill")
	}
	if !b.Shares("X").IsZero() {
		t.Errorf("shares: expected flat, got %s", b.Shares("X"))
	}
}

func TestSMACross_NoTradeWithoutWarmup(t *testing.T) {
	b := broker.NewBacktesting(decimal.NewFromInt(1000), nil)
	s := NewSMACross(NewTrader(b), "X", 2, 3, decimal.NewFromInt(10))

	// Fewer bars than the long period: never trades.
	step(b, s, flatBar(t, 2, "X", 10))
	step(b, s, flatBar(t, 3, "X", 20))

	if s.Position() != nil {
		t.Error("strategy must not trade during warmup")
	}
	if len(b.PendingOrders()) != 0 {
		t.Error("no orders expected during warmup")
	}
}

func TestSMACross_IgnoresOtherInstruments(t *testing.T) {
	b := broker.NewBacktesting(decimal.NewFromInt(1000), nil)
	s := NewSMACross(NewTrader(b), "X", 2, 3, decimal.NewFromInt(10))

	for i := 0; i < 5; i++ {
		step(b, s, flatBar(t, 2+i, "Y", float64(10+i*3)))
	}
	if s.Position() != nil {
		t.Error("bars for other instruments must not trade")
	}
}

func TestSMACross_RejectsBadPeriods(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for shortPeriod >= longPeriod")
		}
	}()
	NewSMACross(NewTrader(broker.NewBacktesting(decimal.Zero, nil)), "X", 3, 3, decimal.NewFromInt(1))
}
