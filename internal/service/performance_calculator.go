package service

import (
	"math"
	"slices"
	"strings"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// sortedByDate returns prices ordered by date without modifying the input.
func sortedByDate(prices []model.PricePoint) []model.PricePoint {
	if slices.IsSortedFunc(prices, comparePointDates) {
		return prices
	}
	sorted := slices.Clone(prices)
	slices.SortStableFunc(sorted, comparePointDates)
	return sorted
}

func comparePointDates(a, b model.PricePoint) int {
	return strings.Compare(a.Date, b.Date)
}

// FilterByWindow restricts prices to the window ending at the series' own last
// date. The same filter drives chart display and the 1-year return.
//
// Parameters:
//   - prices: A price series in any order
//   - window: The look-back window
//
// Returns the date-ordered points on or after the window start. ALL and an
// unparseable last date return the whole series.
func FilterByWindow(prices []model.PricePoint, window model.Window) []model.PricePoint {
	sorted := sortedByDate(prices)
	if len(sorted) == 0 {
		return []model.PricePoint{}
	}

	last, err := model.ParseDate(sorted[len(sorted)-1].Date)
	if err != nil {
		return sorted
	}
	start, bounded := window.Start(last)
	if !bounded {
		return sorted
	}

	cutoff := model.FormatDate(start)
	idx, _ := slices.BinarySearchFunc(sorted, cutoff, func(p model.PricePoint, date string) int {
		return strings.Compare(p.Date, date)
	})
	return sorted[idx:]
}

// SimpleReturn is the percent change from the first to the last point of the
// filtered window. It returns nil for fewer than two points or a zero start price.
func SimpleReturn(prices []model.PricePoint, window model.Window) *float64 {
	filtered := FilterByWindow(prices, window)
	if len(filtered) < 2 {
		return nil
	}
	first, last := filtered[0].Close, filtered[len(filtered)-1].Close
	if first == 0 {
		return nil
	}
	return finite((last - first) / first * 100)
}

// AnnualizedReturn computes the compound annual growth rate over the last
// years of the series, as a percentage.
//
// The start price is the earliest point dated on or after (last date - years).
// If no such point exists the first point of the series is used. The result is
// (1 + totalReturn)^(1/years) - 1, expressed in percent.
//
// Parameters:
//   - prices: A price series in any order
//   - years: The horizon in whole years, must be positive
//
// Returns nil if the series has fewer than two points, the horizon is not
// positive, or either the start or end price is not positive.
func AnnualizedReturn(prices []model.PricePoint, years int) *float64 {
	if len(prices) < 2 || years <= 0 {
		return nil
	}
	sorted := sortedByDate(prices)

	lastPoint := sorted[len(sorted)-1]
	last, err := model.ParseDate(lastPoint.Date)
	if err != nil {
		return nil
	}
	cutoff := model.FormatDate(last.AddDate(-years, 0, 0))

	start := sorted[0].Close
	for _, p := range sorted {
		if p.Date >= cutoff {
			start = p.Close
			break
		}
	}
	end := lastPoint.Close
	if start <= 0 || end <= 0 {
		return nil
	}

	totalReturn := (end - start) / start
	return finite((math.Pow(1+totalReturn, 1/float64(years)) - 1) * 100)
}

// DailyChange is the percent move of the latest close against the previous one.
func DailyChange(prices []model.PricePoint) *float64 {
	if len(prices) < 2 {
		return nil
	}
	sorted := sortedByDate(prices)
	prev, latest := sorted[len(sorted)-2].Close, sorted[len(sorted)-1].Close
	if prev == 0 {
		return nil
	}
	return finite((latest - prev) / prev * 100)
}

// SummarizeWindow builds the chart header for one series and window.
func SummarizeWindow(series model.SeriesResult, window model.Window) model.WindowSummary {
	filtered := FilterByWindow(series.Prices, window)
	summary := model.WindowSummary{
		Symbol:       series.Symbol,
		Window:       window,
		Currency:     series.Currency,
		ExchangeName: series.ExchangeName,
		Prices:       filtered,
	}
	if len(filtered) == 0 {
		return summary
	}

	first, last := filtered[0], filtered[len(filtered)-1]
	high, low := first, first
	for _, p := range filtered[1:] {
		if p.Close > high.Close {
			high = p
		}
		if p.Close < low.Close {
			low = p
		}
	}
	summary.First, summary.Last = &first, &last
	summary.High, summary.Low = &high, &low
	if len(filtered) >= 2 && first.Close != 0 {
		summary.CumulativeReturn = finite((last.Close - first.Close) / first.Close * 100)
	}
	return summary
}

// ComputePerformanceRow derives one table row for etf. The 1-year figure is the
// simple return over the 1Y window; 3, 5 and 10 years are annualized.
func ComputePerformanceRow(etf model.ETF, series model.SeriesResult, ok bool) model.PerformanceRow {
	row := model.PerformanceRow{
		ETF:    etf.Label(),
		Symbol: etf.Symbol,
		Group:  etf.Group,
	}
	if !ok || len(series.Prices) < 2 {
		return row
	}
	row.Y1 = SimpleReturn(series.Prices, model.Window1Y)
	row.Y3 = AnnualizedReturn(series.Prices, 3)
	row.Y5 = AnnualizedReturn(series.Prices, 5)
	row.Y10 = AnnualizedReturn(series.Prices, 10)
	return row
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
