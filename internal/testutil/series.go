package testutil

import (
	"math"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// MonthlyPoints returns one point on the first of each month from start
// through end inclusive, with closes from close(i).
func MonthlyPoints(start, end string, close func(i int) float64) []model.PricePoint {
	from := MustDate(start)
	to := MustDate(end)
	var points []model.PricePoint
	for i, d := 0, from; !d.After(to); i, d = i+1, d.AddDate(0, 1, 0) {
		points = append(points, model.PricePoint{Date: model.FormatDate(d), Close: close(i)})
	}
	return points
}

// DailyPoints returns one point per calendar day from start for n days.
func DailyPoints(start string, n int, close func(i int) float64) []model.PricePoint {
	from := MustDate(start)
	points := make([]model.PricePoint, n)
	for i := range n {
		points[i] = model.PricePoint{Date: model.FormatDate(from.AddDate(0, 0, i)), Close: close(i)}
	}
	return points
}

// Constant returns a close function that always yields v.
func Constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

// Compounding returns a close function growing from start at a daily rate
// equivalent to annualPct compounded over 365 days.
func Compounding(start, annualPct float64) func(int) float64 {
	daily := math.Pow(1+annualPct/100, 1.0/365)
	return func(i int) float64 { return start * math.Pow(daily, float64(i)) }
}

// MustDate parses a YYYY-MM-DD date or panics.
func MustDate(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Series builds a SeriesResult for tests.
func Series(symbol string, points []model.PricePoint) model.SeriesResult {
	s := model.SeriesResult{
		Symbol:   symbol,
		Prices:   points,
		Currency: "AUD",
	}
	if len(points) > 0 {
		s.LastUpdated = points[len(points)-1].Date
	}
	return s
}

// TestETFs returns a small configuration with both groups.
func TestETFs() []model.ETF {
	return []model.ETF{
		{Symbol: "IVV", Name: "iShares S&P 500 ETF", Group: model.GroupGrowth},
		{Symbol: "NDQ", Name: "BetaShares NASDAQ 100 ETF", Group: model.GroupGrowth},
		{Symbol: "VAF", Name: "Vanguard Australian Fixed Interest ETF", Group: model.GroupDefensive},
	}
}
