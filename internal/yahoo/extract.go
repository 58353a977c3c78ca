package yahoo

import (
	"math"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// ExtractPoints converts a chart result into (date, close) pairs in provider order.
//
// Adjusted close is preferred over raw close. An index is skipped when its
// timestamp is invalid or out of range or its price is null, missing or not finite. Each kept
// timestamp becomes a UTC calendar day and each price is rounded to 2 decimals.
// The output is not sorted; an empty result is valid.
func ExtractPoints(r Result) []model.PricePoint {
	prices := r.closeSeries()
	points := make([]model.PricePoint, 0, len(r.Timestamp))

	for i, ts := range r.Timestamp {
		if !ts.usable() {
			continue
		}
		if i >= len(prices) || prices[i] == nil {
			continue
		}
		v := *prices[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		points = append(points, model.PricePoint{
			Date:  model.EpochDate(ts.Seconds),
			Close: model.Round2(v),
		})
	}

	return points
}

// LastQuoteDate returns the calendar day of the provider's latest quote, if reported.
func (r Result) LastQuoteDate() (string, bool) {
	if r.Meta.RegularMarketTime == nil || *r.Meta.RegularMarketTime <= 0 || *r.Meta.RegularMarketTime > maxTimestamp {
		return "", false
	}
	return model.EpochDate(*r.Meta.RegularMarketTime), true
}
