package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is a single instrument's OHLCV prices at a given time.
// It is immutable once constructed.
type Bar struct {
	dateTime time.Time
	open     decimal.Decimal
	high     decimal.Decimal
	low      decimal.Decimal
	close    decimal.Decimal
	volume   decimal.Decimal
	adjClose decimal.Decimal
}

// NewBar validates low <= min(open, close) <= max(open, close) <= high.
// The matching logic assumes this holds.
func NewBar(dateTime time.Time, open, high, low, close, volume, adjClose decimal.Decimal) (*Bar, error) {
	if high.LessThan(open) || high.LessThan(low) || high.LessThan(close) {
		return nil, fmt.Errorf("bar at %s: high %s below open/low/close", dateTime, high)
	}
	if low.GreaterThan(open) || low.GreaterThan(close) {
		return nil, fmt.Errorf("bar at %s: low %s above open/close", dateTime, low)
	}
	return &Bar{
		dateTime: dateTime,
		open:     open,
		high:     high,
		low:      low,
		close:    close,
		volume:   volume,
		adjClose: adjClose,
	}, nil
}

func (b *Bar) DateTime() time.Time       { return b.dateTime }
func (b *Bar) Open() decimal.Decimal     { return b.open }
func (b *Bar) High() decimal.Decimal     { return b.high }
func (b *Bar) Low() decimal.Decimal      { return b.low }
func (b *Bar) Close() decimal.Decimal    { return b.close }
func (b *Bar) Volume() decimal.Decimal   { return b.volume }
func (b *Bar) AdjClose() decimal.Decimal { return b.adjClose }

// AdjOpen returns the open price scaled by the close adjustment ratio.
func (b *Bar) AdjOpen() decimal.Decimal {
	return b.adjClose.Mul(b.open).Div(b.close)
}

// AdjHigh returns the high price scaled by the close adjustment ratio.
func (b *Bar) AdjHigh() decimal.Decimal {
	return b.adjClose.Mul(b.high).Div(b.close)
}

// AdjLow returns the low price scaled by the close adjustment ratio.
func (b *Bar) AdjLow() decimal.Decimal {
	return b.adjClose.Mul(b.low).Div(b.close)
}

// TypicalPrice returns (high + low + close) / 3.
func (b *Bar) TypicalPrice() decimal.Decimal {
	three := decimal.NewFromInt(3)
	return b.high.Add(b.low).Add(b.close).Div(three)
}

// Bars groups one Bar per instrument for a single time step.
// All contained bars share the same dateTime.
type Bars struct {
	bars     map[string]*Bar
	dateTime time.Time
}

// NewBars builds a bar set. It rejects empty sets and bars whose
// datetimes are not in sync.
func NewBars(bars map[string]*Bar) (*Bars, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars supplied")
	}

	var dateTime time.Time
	var first string
	for instrument, bar := range bars {
		if dateTime.IsZero() {
			dateTime = bar.DateTime()
			first = instrument
		} else if !bar.DateTime().Equal(dateTime) {
			return nil, fmt.Errorf("bar datetimes are not in sync: %s %s != %s %s",
				instrument, bar.DateTime(), first, dateTime)
		}
	}

	return &Bars{bars: bars, dateTime: dateTime}, nil
}

// DateTime returns the shared datetime of this bar set.
func (b *Bars) DateTime() time.Time { return b.dateTime }

// Bar returns the bar for the given instrument, or nil if not present.
func (b *Bars) Bar(instrument string) *Bar { return b.bars[instrument] }

// Contains reports whether the set carries a bar for the instrument.
func (b *Bars) Contains(instrument string) bool {
	_, ok := b.bars[instrument]
	return ok
}

// Instruments returns the instrument symbols in this set.
func (b *Bars) Instruments() []string {
	ret := make([]string, 0, len(b.bars))
	for instrument := range b.bars {
		ret = append(ret, instrument)
	}
	return ret
}
