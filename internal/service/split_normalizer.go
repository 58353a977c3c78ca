package service

import (
	"slices"
	"strings"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// DefaultSplitThreshold is the day-over-day price ratio above which a jump is
// treated as an unadjusted stock split. It is a heuristic separating splits from
// ordinary volatility and is configurable through SPLIT_THRESHOLD.
const DefaultSplitThreshold = 7.0

// NormalizeForSplits rescales historical prices so they are continuous with the
// most recent price across forward and reverse splits that the provider's adjusted
// series does not reflect.
//
// The input may be unsorted and may contain duplicate dates; it is stably sorted by
// date first, so points with equal dates keep their input order. The sweep runs
// from the newest point to the oldest with a running factor starting at 1:
//
//   - ratio = earlier/later > threshold: reverse split, factor *= ratio
//   - later/earlier > threshold: forward split, factor /= later/earlier
//
// Neighbours are compared on their raw prices; a zero price never changes the
// factor. Each earlier close is emitted as close/factor rounded to 2 decimals.
// The newest point is emitted unchanged (rounded).
//
// Parameters:
//   - points: Combined price points of one symbol
//   - threshold: Split detection ratio; values <= 1 fall back to DefaultSplitThreshold
//
// Returns a new, date-sorted slice of the same length as points.
func NormalizeForSplits(points []model.PricePoint, threshold float64) []model.PricePoint {
	if len(points) == 0 {
		return []model.PricePoint{}
	}
	if threshold <= 1 {
		threshold = DefaultSplitThreshold
	}

	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b model.PricePoint) int {
		return strings.Compare(a.Date, b.Date)
	})

	n := len(sorted)
	adjusted := make([]model.PricePoint, n)
	adjusted[n-1] = model.PricePoint{Date: sorted[n-1].Date, Close: model.Round2(sorted[n-1].Close)}

	factor := 1.0
	for i := n - 2; i >= 0; i-- {
		current, next := sorted[i], sorted[i+1]
		if current.Close != 0 && next.Close != 0 {
			ratio := current.Close / next.Close
			inverse := next.Close / current.Close
			if ratio > threshold {
				factor *= ratio
			} else if inverse > threshold {
				factor /= inverse
			}
		}
		adjusted[i] = model.PricePoint{Date: current.Date, Close: model.Round2(current.Close / factor)}
	}

	return adjusted
}

// dedupeSorted collapses points with equal dates, keeping the last one. The
// input must be sorted by date.
func dedupeSorted(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Date == p.Date {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
