package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical rendering of a trading date.
const DateLayout = "2006-01-02"

// Tick is one input row.
type Tick struct {
	Row    int             `json:"row"`
	Ticker string          `json:"ticker"`
	Close  decimal.Decimal `json:"close"`
	Time   TimeOfDay       `json:"time"`
	// RawTime is the Time cell as read, before normalization.
	RawTime string `json:"raw_time,omitempty"`
	// Date is the trading date embedded in Ticker; zero when absent.
	Date time.Time `json:"date"`
	IsCE bool      `json:"is_ce"`
}

// HasDate reports whether a trading date was parsed from the ticker.
func (t Tick) HasDate() bool {
	return !t.Date.IsZero()
}

// DateString renders Date, or "" when absent.
func (t Tick) DateString() string {
	if !t.HasDate() {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// Before orders ticks by (date, time).
func (t Tick) Before(o Tick) bool {
	if !t.Date.Equal(o.Date) {
		return t.Date.Before(o.Date)
	}
	return t.Time < o.Time
}

// DateGroup holds the CE ticks of one trading date ordered by time.
type DateGroup struct {
	Date  time.Time
	Ticks []Tick
	// Total is the number of rows for the date before the CE filter.
	Total int
}

// AnchorSlice is the CE series of one date starting at its anchor row.
type AnchorSlice struct {
	Date   time.Time
	Anchor Tick
	Ticks  []Tick
}
