package types

import "time"

// PriceBar is a single daily closing price for a symbol.
// Sequences of PriceBar are ordered by date, strictly increasing,
// with no duplicate dates, and are immutable once fetched.
type PriceBar struct {
	Date  time.Time `csv:"date" json:"date" yaml:"date"`
	Close float64   `csv:"close" json:"close" yaml:"close"`
}

// Day normalizes the bar's timestamp to midnight UTC so that bars
// from different providers align on calendar date.
func (b PriceBar) Day() time.Time {
	return Day(b.Date)
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
