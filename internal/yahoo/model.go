package yahoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// This type maps directly to the v8 chart response format:
//
//	{ chart: { result: [ { timestamp, indicators: { adjclose, quote }, meta } ], error } }
//
// Only the fields the series pipeline relies on are modelled. Unknown fields are ignored,
// but the fields that are modelled are typed strictly so that a changed payload shape
// surfaces as a decode error instead of silently propagating nulls.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level "chart" object.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Error is the provider's embedded error description, present when Result is empty.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is one chart result: a timestamp array with parallel price arrays.
type Result struct {
	Meta       Meta        `json:"meta"`
	Timestamp  []Timestamp `json:"timestamp"`
	Indicators Indicators  `json:"indicators"`
}

// Meta carries the symbol metadata the pipeline reports alongside a series.
type Meta struct {
	Currency          string `json:"currency"`
	Symbol            string `json:"symbol"`
	ExchangeName      string `json:"exchangeName"`
	FullExchangeName  string `json:"fullExchangeName"`
	LongName          string `json:"longName"`
	ShortName         string `json:"shortName"`
	RegularMarketTime *int64 `json:"regularMarketTime"`
}

// Indicators holds the adjusted-close and raw quote arrays.
type Indicators struct {
	AdjClose []AdjClose `json:"adjclose"`
	Quote    []Quote    `json:"quote"`
}

// AdjClose is the split/dividend adjusted close series.
type AdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// Quote is the raw close series. Open/high/low/volume are not used.
type Quote struct {
	Close []*float64 `json:"close"`
}

// Epoch bounds of the days that format as YYYY-MM-DD: 0000-01-01T00:00:00Z
// through 9999-12-31T23:59:59Z.
const (
	minTimestamp int64 = -62167219200
	maxTimestamp int64 = 253402300799
)

// Timestamp is one epoch-seconds entry of the timestamp array. Entries that are
// null, non-numeric, fractional or outside years 0000-9999 decode without error
// but are marked invalid, so the extractor can drop them individually.
type Timestamp struct {
	Seconds int64
	Valid   bool
}

// usable reports whether t is valid and falls on a four-digit-year day.
func (t Timestamp) usable() bool {
	return t.Valid && t.Seconds >= minTimestamp && t.Seconds <= maxTimestamp
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = Timestamp{}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	num, ok := v.(json.Number)
	if !ok {
		return nil
	}
	if i, err := num.Int64(); err == nil {
		t.Seconds = i
		t.Valid = i >= minTimestamp && i <= maxTimestamp
		return nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < float64(minTimestamp) || f > float64(maxTimestamp) {
		return nil
	}
	t.Seconds, t.Valid = int64(f), true
	return nil
}

// MarshalJSON writes invalid timestamps as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Seconds)
}

// closeSeries picks the price array the extractor reads: adjusted close when it
// is non-empty, otherwise raw close, otherwise nil.
func (r Result) closeSeries() []*float64 {
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		return r.Indicators.AdjClose[0].AdjClose
	}
	if len(r.Indicators.Quote) > 0 {
		return r.Indicators.Quote[0].Close
	}
	return nil
}

// Validate reports shape problems that the extractor tolerates but that usually
// mean the provider changed its payload: no timestamps, no price array, or a
// price array whose length differs from the timestamp array.
func (r Result) Validate() error {
	prices := r.closeSeries()
	switch {
	case len(r.Timestamp) == 0:
		return fmt.Errorf("no timestamps returned")
	case prices == nil:
		return fmt.Errorf("no close prices returned")
	case len(prices) != len(r.Timestamp):
		return fmt.Errorf("mismatched data lengths: %d timestamps, %d prices", len(r.Timestamp), len(prices))
	}
	return nil
}

// Resolution is a (range, interval) pair describing how far back and how
// granular a fetched series is.
type Resolution struct {
	Range    string
	Interval string
}

var (
	// ResolutionMonthlyMax is the long-horizon coarse series.
	ResolutionMonthlyMax = Resolution{Range: "max", Interval: "1mo"}
	// ResolutionDaily10Y is the shorter-horizon fine series.
	ResolutionDaily10Y = Resolution{Range: "10y", Interval: "1d"}
)

func (r Resolution) String() string {
	return r.Range + "/" + r.Interval
}
