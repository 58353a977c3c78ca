package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for every date in a price series.
const DateLayout = "2006-01-02"

// DefaultCurrency is reported for a series whose provider metadata carries no currency.
const DefaultCurrency = "AUD"

// PricePoint is one closing price for one calendar day (UTC).
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// SeriesResult is the canonical, split-normalized price history of one symbol.
// Prices are ascending by date with unique dates.
type SeriesResult struct {
	Symbol       string       `json:"symbol"`
	Prices       []PricePoint `json:"prices"`
	Currency     string       `json:"currency"`
	ExchangeName string       `json:"exchangeName,omitempty"`
	LastUpdated  string       `json:"lastUpdated"`
}

// Latest returns the most recent price point, or false for an empty series.
func (s SeriesResult) Latest() (PricePoint, bool) {
	if len(s.Prices) == 0 {
		return PricePoint{}, false
	}
	return s.Prices[len(s.Prices)-1], true
}

// Round2 rounds a price to two fractional digits, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatDate renders t as a UTC calendar day.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// EpochDate converts epoch seconds to a UTC calendar day, truncating the time of day.
func EpochDate(sec int64) string {
	return FormatDate(time.Unix(sec, 0))
}

// ParseDate parses a calendar day in DateLayout as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t.UTC(), nil
}
