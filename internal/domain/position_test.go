package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestPositionTracker_RoundTrip(t *testing.T) {
	p := NewPositionTracker()
	p.Buy(d(10), d(100), decimal.Zero)
	p.Sell(d(10), d(100), decimal.Zero)

	if !p.Shares().IsZero() {
		t.Errorf("expected flat, got %s shares", p.Shares())
	}
	if got := p.NetProfit(d(100), true); !got.IsZero() {
		t.Errorf("expected zero profit, got %s", got)
	}
	if got := p.Return(d(100), true); !got.IsZero() {
		t.Errorf("expected zero return, got %s", got)
	}
}

func TestPositionTracker_LongProfit(t *testing.T) {
	p := NewPositionTracker()
	p.Buy(d(10), d(100), d(5))
	p.Sell(d(10), d(110), d(5))

	// 10 * (110 - 100) = 100 gross, 10 in commissions
	if got := p.NetProfit(d(110), false); !got.Equal(d(100)) {
		t.Errorf("gross profit: expected 100, got %s", got)
	}
	if got := p.NetProfit(d(110), true); !got.Equal(d(90)) {
		t.Errorf("net profit: expected 90, got %s", got)
	}
	if got := p.Return(d(110), false); !got.Equal(d(0.1)) {
		t.Errorf("return: expected 0.1, got %s", got)
	}
}

func TestPositionTracker_ShortProfit(t *testing.T) {
	p := NewPositionTracker()
	p.Sell(d(10), d(100), decimal.Zero)
	p.Buy(d(10), d(90), decimal.Zero)

	if got := p.NetProfit(d(90), true); !got.Equal(d(100)) {
		t.Errorf("expected 100 profit on the short, got %s", got)
	}
}

func TestPositionTracker_CrossingTradeSplitsCost(t *testing.T) {
	p := NewPositionTracker()
	p.Buy(d(10), d(100), decimal.Zero) // long 10, cost 1000
	p.Sell(d(15), d(110), decimal.Zero)

	// The sell closes 10 shares and opens a 5-share short at 110.
	if !p.Shares().Equal(d(-5)) {
		t.Fatalf("expected -5 shares, got %s", p.Shares())
	}
	if got := p.Cost(); !got.Equal(d(1550)) {
		t.Errorf("cost: expected 1000 + 5*110 = 1550, got %s", got)
	}
}

func TestPositionTracker_ReducingTradeAddsNoCost(t *testing.T) {
	p := NewPositionTracker()
	p.Buy(d(10), d(100), decimal.Zero)
	p.Sell(d(4), d(110), decimal.Zero)

	if !p.Shares().Equal(d(6)) {
		t.Fatalf("expected 6 shares, got %s", p.Shares())
	}
	if got := p.Cost(); !got.Equal(d(1000)) {
		t.Errorf("cost: expected unchanged 1000, got %s", got)
	}
}

func TestPositionTracker_Update(t *testing.T) {
	p := NewPositionTracker()
	p.Buy(d(10), d(100), d(3))
	p.Update(d(105))

	if !p.Commissions().IsZero() {
		t.Error("Update should reset commissions")
	}
	if got := p.Cost(); !got.Equal(d(1050)) {
		t.Errorf("cost: expected re-based 1050, got %s", got)
	}
	// profit from the re-based price onward only
	if got := p.NetProfit(d(107), true); !got.Equal(d(20)) {
		t.Errorf("expected 20 profit past the mark, got %s", got)
	}
}
