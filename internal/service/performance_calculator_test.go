package service_test

import (
	"math"
	"testing"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/testutil"
)

func assertPercent(t *testing.T, name string, got *float64, want, tolerance float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: expected %.4f, got nil", name, want)
	}
	if math.Abs(*got-want) > tolerance {
		t.Errorf("%s: expected %.4f ± %.4f, got %.4f", name, want, tolerance, *got)
	}
}

func TestAnnualizedReturn(t *testing.T) {
	// 2014-01-01 through 2024-01-01, compounding at 8% a year.
	prices := testutil.DailyPoints("2014-01-01", 3653, testutil.Compounding(100, 8))

	t.Run("recovers the compounding rate", func(t *testing.T) {
		for _, years := range []int{3, 5, 10} {
			assertPercent(t, "annualized", service.AnnualizedReturn(prices, years), 8, 0.04)
		}
	})

	t.Run("short history uses the first point", func(t *testing.T) {
		short := testutil.DailyPoints("2022-01-01", 731, testutil.Compounding(100, 10))
		got := service.AnnualizedReturn(short, 5)
		// Two years of 10% growth spread over five years.
		want := (math.Pow(math.Pow(1.1, 730.0/365), 1.0/5) - 1) * 100
		assertPercent(t, "annualized", got, want, 0.001)
	})

	t.Run("unordered input", func(t *testing.T) {
		reversed := make([]model.PricePoint, len(prices))
		for i, p := range prices {
			reversed[len(prices)-1-i] = p
		}
		assertPercent(t, "annualized", service.AnnualizedReturn(reversed, 3), 8, 0.04)
	})

	tests := []struct {
		name   string
		prices []model.PricePoint
		years  int
	}{
		{"single point", testutil.DailyPoints("2024-01-01", 1, testutil.Constant(10)), 3},
		{"empty", nil, 3},
		{"zero horizon", prices, 0},
		{"zero start price", []model.PricePoint{{Date: "2020-01-01", Close: 0}, {Date: "2024-01-01", Close: 10}}, 3},
		{"negative end price", []model.PricePoint{{Date: "2020-01-01", Close: 10}, {Date: "2024-01-01", Close: -1}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name+" is nil", func(t *testing.T) {
			if got := service.AnnualizedReturn(tt.prices, tt.years); got != nil {
				t.Errorf("Expected nil, got %v", *got)
			}
		})
	}
}

func TestSimpleReturn(t *testing.T) {
	t.Run("one year window", func(t *testing.T) {
		prices := testutil.DailyPoints("2022-01-01", 731, testutil.Compounding(100, 8))
		assertPercent(t, "y1", service.SimpleReturn(prices, model.Window1Y), 8, 0.001)
	})

	t.Run("whole series", func(t *testing.T) {
		prices := []model.PricePoint{{Date: "2024-01-01", Close: 50}, {Date: "2024-02-01", Close: 75}}
		assertPercent(t, "all", service.SimpleReturn(prices, model.WindowAll), 50, 1e-9)
	})

	t.Run("too few points", func(t *testing.T) {
		if got := service.SimpleReturn([]model.PricePoint{{Date: "2024-01-01", Close: 1}}, model.Window1Y); got != nil {
			t.Errorf("Expected nil, got %v", *got)
		}
	})

	t.Run("zero start price", func(t *testing.T) {
		prices := []model.PricePoint{{Date: "2024-01-01", Close: 0}, {Date: "2024-02-01", Close: 1}}
		if got := service.SimpleReturn(prices, model.WindowAll); got != nil {
			t.Errorf("Expected nil, got %v", *got)
		}
	})
}

func TestFilterByWindow(t *testing.T) {
	prices := testutil.MonthlyPoints("2014-01-01", "2024-06-01", testutil.Constant(10))

	tests := []struct {
		window    model.Window
		wantFirst string
	}{
		{model.WindowYTD, "2024-01-01"},
		{model.Window1Y, "2023-06-01"},
		{model.Window2Y, "2022-06-01"},
		{model.Window5Y, "2019-06-01"},
		{model.Window10Y, "2014-06-01"},
		{model.WindowAll, "2014-01-01"},
	}
	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			got := service.FilterByWindow(prices, tt.window)

			if len(got) == 0 {
				t.Fatal("Expected points")
			}
			if got[0].Date != tt.wantFirst {
				t.Errorf("Expected first date %s, got %s", tt.wantFirst, got[0].Date)
			}
			if got[len(got)-1].Date != "2024-06-01" {
				t.Errorf("Expected window to end at the last point, got %s", got[len(got)-1].Date)
			}
		})
	}

	t.Run("empty input", func(t *testing.T) {
		got := service.FilterByWindow(nil, model.Window1Y)
		if got == nil || len(got) != 0 {
			t.Errorf("Expected empty non-nil slice, got %v", got)
		}
	})
}

func TestDailyChange(t *testing.T) {
	prices := []model.PricePoint{
		{Date: "2024-01-03", Close: 110},
		{Date: "2024-01-01", Close: 90},
		{Date: "2024-01-02", Close: 100},
	}
	assertPercent(t, "daily", service.DailyChange(prices), 10, 1e-9)

	if got := service.DailyChange(prices[:1]); got != nil {
		t.Errorf("Expected nil for a single point, got %v", *got)
	}
}

func TestSummarizeWindow(t *testing.T) {
	series := testutil.Series("IVV", []model.PricePoint{
		{Date: "2023-12-29", Close: 40},
		{Date: "2024-01-02", Close: 50},
		{Date: "2024-01-03", Close: 70},
		{Date: "2024-01-04", Close: 45},
		{Date: "2024-01-05", Close: 60},
	})

	got := service.SummarizeWindow(series, model.WindowYTD)

	if len(got.Prices) != 4 {
		t.Fatalf("Expected 4 YTD points, got %d", len(got.Prices))
	}
	if got.First.Date != "2024-01-02" || got.Last.Close != 60 {
		t.Errorf("Unexpected first/last %+v %+v", got.First, got.Last)
	}
	if got.High.Close != 70 || got.Low.Close != 45 {
		t.Errorf("Unexpected high/low %+v %+v", got.High, got.Low)
	}
	assertPercent(t, "cumulative", got.CumulativeReturn, 20, 1e-9)
	if got.Currency != "AUD" || got.Window != model.WindowYTD {
		t.Errorf("Unexpected metadata %+v", got)
	}

	empty := service.SummarizeWindow(testutil.Series("X", nil), model.Window1Y)
	if empty.First != nil || empty.CumulativeReturn != nil {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}

func TestComputePerformanceRow(t *testing.T) {
	etf := model.ETF{Symbol: "IVV", Name: "iShares S&P 500 ETF", Group: model.GroupGrowth}

	t.Run("missing series has no figures", func(t *testing.T) {
		row := service.ComputePerformanceRow(etf, model.SeriesResult{}, false)

		if row.ETF != "IVV – iShares S&P 500 ETF" || row.Symbol != "IVV" {
			t.Errorf("Unexpected identity %+v", row)
		}
		if row.Y1 != nil || row.Y3 != nil || row.Y5 != nil || row.Y10 != nil {
			t.Errorf("Expected nil figures, got %+v", row)
		}
	})

	t.Run("ten years of history fills every column", func(t *testing.T) {
		series := testutil.Series("IVV", testutil.DailyPoints("2014-01-01", 3653, testutil.Compounding(100, 8)))
		row := service.ComputePerformanceRow(etf, series, true)

		assertPercent(t, "y1", row.Y1, 8, 0.01)
		assertPercent(t, "y3", row.Y3, 8, 0.04)
		assertPercent(t, "y5", row.Y5, 8, 0.04)
		assertPercent(t, "y10", row.Y10, 8, 0.04)
	})
}
