package feed

import (
	"errors"
	"testing"
	"time"

	"backtest_go/internal/domain"

	"github.com/shopspring/decimal"
)

func barsAt(t *testing.T, day int, instrument string, close float64) *domain.Bars {
	t.Helper()
	bar, err := domain.NewBar(
		time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(close),
		decimal.NewFromFloat(close+1),
		decimal.NewFromFloat(close-1),
		decimal.NewFromFloat(close),
		decimal.NewFromInt(100),
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

func TestMemoryBarFeed_ReplaysInOrder(t *testing.T) {
	data := []*domain.Bars{
		barsAt(t, 2, "A", 10),
		barsAt(t, 3, "A", 11),
	}
	f := NewMemoryBarFeed([]string{"A"}, data)

	first, err := f.Next()
	if err != nil || first != data[0] {
		t.Fatalf("first Next: got %v, %v", first, err)
	}
	second, err := f.Next()
	if err != nil || second != data[1] {
		t.Fatalf("second Next: got %v, %v", second, err)
	}

	// exhaustion
	done, err := f.Next()
	if done != nil || err != nil {
		t.Errorf("expected (nil, nil) on exhaustion, got %v, %v", done, err)
	}
	if f.LastBars() != data[1] {
		t.Error("LastBars should be the final delivered set")
	}
}

func TestMemoryBarFeed_UpdatesSeries(t *testing.T) {
	f := NewMemoryBarFeed([]string{"A"}, []*domain.Bars{
		barsAt(t, 2, "A", 10),
		barsAt(t, 3, "A", 11),
	})

	series, err := f.Series("A")
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	if series.Len() != 0 {
		t.Fatal("series should be empty before any Next")
	}

	if _, err := f.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if _, err := f.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if series.Len() != 2 {
		t.Fatalf("expected 2 bars in series, got %d", series.Len())
	}
	if got := series.Last().Close(); !got.Equal(decimal.NewFromInt(11)) {
		t.Errorf("Last close: expected 11, got %s", got)
	}
	if got := series.Ago(1).Close(); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Ago(1) close: expected 10, got %s", got)
	}
	if series.At(5) != nil || series.Ago(5) != nil {
		t.Error("out-of-range lookups should return nil")
	}
}

func TestMemoryBarFeed_OutOfOrder(t *testing.T) {
	f := NewMemoryBarFeed([]string{"A"}, []*domain.Bars{
		barsAt(t, 3, "A", 10),
		barsAt(t, 2, "A", 11), // goes back in time
		barsAt(t, 4, "A", 12),
	})

	if _, err := f.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}

	_, err := f.Next()
	if !errors.Is(err, domain.ErrOutOfOrderData) {
		t.Fatalf("expected ErrOutOfOrderData, got %v", err)
	}
	var ooErr *domain.OutOfOrderError
	if !errors.As(err, &ooErr) {
		t.Fatalf("expected *OutOfOrderError, got %T", err)
	}

	// A lenient caller skips the bad set and keeps going.
	next, err := f.Next()
	if err != nil {
		t.Fatalf("Next after skip failed: %v", err)
	}
	if !next.DateTime().Equal(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected the Jan 4 set, got %s", next.DateTime())
	}
}

func TestMemoryBarFeed_UnknownInstrument(t *testing.T) {
	f := NewMemoryBarFeed([]string{"A"}, nil)
	if _, err := f.Series("B"); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Errorf("expected ErrUnknownInstrument, got %v", err)
	}
}
