// Package feed supplies ordered bar sequences to the dispatch loop and
// keeps per-instrument lookback series up to date.
package feed

import (
	"backtest_go/internal/domain"
)

// BarFeed produces a lazy, finite sequence of bar sets ordered by
// strictly increasing datetime.
type BarFeed interface {
	// Next returns the next bar set, or (nil, nil) on exhaustion. An
	// ordering violation returns a *domain.OutOfOrderError.
	Next() (*domain.Bars, error)

	// Series returns the historical series for a registered instrument.
	Series(instrument string) (*BarSeries, error)

	// Instruments returns the registered instrument symbols.
	Instruments() []string
}

// MemoryBarFeed replays a pre-loaded, ordered slice of bar sets. It is
// the feed used for backtesting; adapters that parse vendor data build
// the slice up front and hand it over.
type MemoryBarFeed struct {
	bars     []*domain.Bars
	position int
	series   map[string]*BarSeries
	lastSeen *domain.Bars
}

// NewMemoryBarFeed creates a feed over the given bar sets for the given
// instruments. The slice is consumed in order.
func NewMemoryBarFeed(instruments []string, bars []*domain.Bars) *MemoryBarFeed {
	series := make(map[string]*BarSeries, len(instruments))
	for _, instrument := range instruments {
		series[instrument] = NewBarSeries()
	}
	return &MemoryBarFeed{bars: bars, series: series}
}

// Next returns the next bar set and appends its bars to the lookback
// series. Bar sets must carry strictly increasing datetimes; a
// violation is reported without advancing past the offending set, so a
// lenient caller can skip it and continue.
func (f *MemoryBarFeed) Next() (*domain.Bars, error) {
	if f.position >= len(f.bars) {
		return nil, nil
	}

	bars := f.bars[f.position]
	f.position++

	if f.lastSeen != nil && !bars.DateTime().After(f.lastSeen.DateTime()) {
		return nil, &domain.OutOfOrderError{
			Prev: f.lastSeen.DateTime(),
			Curr: bars.DateTime(),
		}
	}
	f.lastSeen = bars

	for _, instrument := range bars.Instruments() {
		s, ok := f.series[instrument]
		if !ok {
			s = NewBarSeries()
			f.series[instrument] = s
		}
		s.Append(bars.Bar(instrument))
	}

	return bars, nil
}

// Series returns the lookback series for instrument.
func (f *MemoryBarFeed) Series(instrument string) (*BarSeries, error) {
	s, ok := f.series[instrument]
	if !ok {
		return nil, domain.ErrUnknownInstrument
	}
	return s, nil
}

// Instruments returns the registered instrument symbols.
func (f *MemoryBarFeed) Instruments() []string {
	ret := make([]string, 0, len(f.series))
	for instrument := range f.series {
		ret = append(ret, instrument)
	}
	return ret
}

// LastBars returns the most recent bar set delivered, or nil.
func (f *MemoryBarFeed) LastBars() *domain.Bars {
	return f.lastSeen
}
