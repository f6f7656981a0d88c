package feed

import "backtest_go/internal/domain"

// BarSeries is an append-only historical series of bars for one
// instrument, giving strategies lookback access while the feed
// advances.
type BarSeries struct {
	bars []*domain.Bar
}

// NewBarSeries returns an empty series.
func NewBarSeries() *BarSeries {
	return &BarSeries{}
}

// Append adds a bar at the end of the series.
func (s *BarSeries) Append(bar *domain.Bar) {
	s.bars = append(s.bars, bar)
}

// Len returns the number of bars in the series.
func (s *BarSeries) Len() int {
	return len(s.bars)
}

// At returns the bar at absolute position i, oldest first, or nil if
// out of range.
func (s *BarSeries) At(i int) *domain.Bar {
	if i < 0 || i >= len(s.bars) {
		return nil
	}
	return s.bars[i]
}

// Ago returns the bar i steps back from the newest one; Ago(0) is the
// latest bar. Returns nil if out of range.
func (s *BarSeries) Ago(i int) *domain.Bar {
	return s.At(len(s.bars) - 1 - i)
}

// Last returns the newest bar, or nil if the series is empty.
func (s *BarSeries) Last() *domain.Bar {
	return s.Ago(0)
}
