package strategy

import (
	"log/slog"

	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

// SMACross is a simple moving-average crossover strategy over bar
// closes: a golden cross enters a long position, a dead cross exits it.
// It is stateful and deterministic.
//
// Close prices live in a fixed ring buffer with a running sum for the
// long period, so the per-bar work is constant.
type SMACross struct {
	NopHooks

	trader      *Trader
	instrument  string
	shortPeriod int
	longPeriod  int
	quantity    decimal.Decimal

	closes []decimal.Decimal
	head   int
	count  int
	sum    decimal.Decimal

	prevShortSMA decimal.Decimal
	prevLongSMA  decimal.Decimal
	havePrev     bool

	position *Position
}

// NewSMACross creates the strategy. shortPeriod must be less than
// longPeriod.
func NewSMACross(trader *Trader, instrument string, shortPeriod, longPeriod int, quantity decimal.Decimal) *SMACross {
	if shortPeriod >= longPeriod {
		panic("SMACross: shortPeriod must be less than longPeriod")
	}
	return &SMACross{
		trader:      trader,
		instrument:  instrument,
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		quantity:    quantity,
		closes:      make([]decimal.Decimal, longPeriod),
	}
}

// Position returns the currently tracked position, or nil when flat.
func (s *SMACross) Position() *Position { return s.position }

// OnBars pushes the close price and trades the crossover.
func (s *SMACross) OnBars(bars *domain.Bars) {
	bar := bars.Bar(s.instrument)
	if bar == nil {
		return
	}

	price := bar.Close()

	// Ring buffer update: when full, retire the oldest value from the
	// running sum before overwriting its slot.
	if s.count == s.longPeriod {
		s.sum = s.sum.Sub(s.closes[s.head])
	}
	s.closes[s.head] = price
	s.sum = s.sum.Add(price)
	s.head = (s.head + 1) % s.longPeriod
	if s.count < s.longPeriod {
		s.count++
	}

	if s.count < s.longPeriod {
		return
	}

	currLongSMA := s.sum.Div(decimal.NewFromInt(int64(s.longPeriod)))
	currShortSMA := s.shortSMA()

	if s.havePrev {
		goldenCross := s.prevShortSMA.LessThanOrEqual(s.prevLongSMA) && currShortSMA.GreaterThan(currLongSMA)
		deadCross := s.prevShortSMA.GreaterThanOrEqual(s.prevLongSMA) && currShortSMA.LessThan(currLongSMA)

		switch {
		case goldenCross && s.position == nil:
			position, err := s.trader.EnterLong(s.instrument, s.quantity, true)
			if err != nil {
				slog.Warn("entry rejected", slog.String("instrument", s.instrument), slog.Any("error", err))
			} else {
				s.position = position
			}
		case deadCross && s.position != nil:
			if err := s.position.Exit(decimal.Zero, decimal.Zero); err != nil {
				slog.Warn("exit rejected", slog.String("instrument", s.instrument), slog.Any("error", err))
			}
		}
	}

	s.prevShortSMA = currShortSMA
	s.prevLongSMA = currLongSMA
	s.havePrev = true
}

// OnOrderUpdated clears the tracked position once its exit fills.
func (s *SMACross) OnOrderUpdated(order *domain.Order) {
	if s.position == nil {
		return
	}
	if s.position.ExitOrder() == order && order.IsFilled() {
		s.position = nil
	}
	if s.position != nil && s.position.EntryOrder() == order && order.IsCanceled() {
		s.position = nil
	}
}

func (s *SMACross) shortSMA() decimal.Decimal {
	sum := decimal.Zero
	idx := s.head
	for i := 0; i < s.shortPeriod; i++ {
		idx--
		if idx < 0 {
			idx = s.longPeriod - 1
		}
		sum = sum.Add(s.closes[idx])
	}
	return sum.Div(decimal.NewFromInt(int64(s.shortPeriod)))
}
