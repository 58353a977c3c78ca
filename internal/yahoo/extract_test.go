package yahoo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

func decodeResult(t *testing.T, payload string) Result {
	t.Helper()
	var resp Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if len(resp.Chart.Result) == 0 {
		t.Fatal("Payload has no result")
	}
	return resp.Chart.Result[0]
}

func f(v float64) *float64 { return &v }

func TestExtractPoints(t *testing.T) {
	t.Run("prefers adjclose and skips nulls", func(t *testing.T) {
		r := decodeResult(t, samplePayload)

		points := ExtractPoints(r)

		want := []model.PricePoint{
			{Date: "2024-01-01", Close: 9.99},
			{Date: "2024-01-03", Close: 10.5},
		}
		if len(points) != len(want) {
			t.Fatalf("Expected %d points, got %d: %v", len(want), len(points), points)
		}
		for i := range want {
			if points[i] != want[i] {
				t.Errorf("Point %d: expected %v, got %v", i, want[i], points[i])
			}
		}
	})

	t.Run("falls back to quote close when adjclose is absent", func(t *testing.T) {
		r := decodeResult(t, `{"chart":{"result":[{"meta":{},"timestamp":[1704067200,1704153600],
			"indicators":{"quote":[{"close":[1.005,2.5]}]}}]}}`)

		points := ExtractPoints(r)

		if len(points) != 2 {
			t.Fatalf("Expected 2 points, got %d", len(points))
		}
		if points[1].Close != 2.5 {
			t.Errorf("Expected 2.5, got %v", points[1].Close)
		}
	})

	t.Run("skips invalid timestamps and short price arrays", func(t *testing.T) {
		r := decodeResult(t, `{"chart":{"result":[{"meta":{},"timestamp":[null,"x",1.5,1704067200,1704153600,1704240000],
			"indicators":{"adjclose":[{"adjclose":[1,2,3,4,5]}]}}]}}`)

		points := ExtractPoints(r)

		if len(points) != 2 {
			t.Fatalf("Expected 2 points, got %d: %v", len(points), points)
		}
		if points[0].Date != "2024-01-01" || points[0].Close != 4 {
			t.Errorf("Unexpected first point %v", points[0])
		}
	})

	t.Run("skips timestamps outside four-digit years", func(t *testing.T) {
		r := decodeResult(t, `{"chart":{"result":[{"meta":{},
			"timestamp":[1000000000000000000,253402300800,-62167219201,1e30,1704067200,253402300799],
			"indicators":{"adjclose":[{"adjclose":[1,2,3,4,5,6]}]}}]}}`)

		points := ExtractPoints(r)

		want := []model.PricePoint{
			{Date: "2024-01-01", Close: 5},
			{Date: "9999-12-31", Close: 6},
		}
		if len(points) != len(want) {
			t.Fatalf("Expected %d points, got %d: %v", len(want), len(points), points)
		}
		for i := range want {
			if points[i] != want[i] {
				t.Errorf("Point %d: expected %v, got %v", i, want[i], points[i])
			}
			if _, err := model.ParseDate(points[i].Date); err != nil {
				t.Errorf("Invalid date %q", points[i].Date)
			}
		}
	})

	t.Run("skips out-of-range timestamps built in code", func(t *testing.T) {
		r := Result{
			Timestamp: []Timestamp{{Seconds: 1e18, Valid: true}, {Seconds: 1704067200, Valid: true}},
			Indicators: Indicators{
				AdjClose: []AdjClose{{AdjClose: []*float64{f(1), f(2)}}},
			},
		}

		points := ExtractPoints(r)

		if len(points) != 1 || points[0].Date != "2024-01-01" {
			t.Errorf("Expected only the 2024-01-01 point, got %v", points)
		}
	})

	t.Run("drops non-finite prices", func(t *testing.T) {
		r := Result{
			Timestamp: []Timestamp{{Seconds: 1704067200, Valid: true}, {Seconds: 1704153600, Valid: true}},
			Indicators: Indicators{
				AdjClose: []AdjClose{{AdjClose: []*float64{f(math.NaN()), f(math.Inf(1))}}},
			},
		}

		if points := ExtractPoints(r); len(points) != 0 {
			t.Errorf("Expected no points, got %v", points)
		}
	})

	t.Run("output never exceeds timestamps and dates are calendar days", func(t *testing.T) {
		r := decodeResult(t, samplePayload)

		points := ExtractPoints(r)

		if len(points) > len(r.Timestamp) {
			t.Errorf("Output longer than timestamps: %d > %d", len(points), len(r.Timestamp))
		}
		for _, p := range points {
			if _, err := model.ParseDate(p.Date); err != nil {
				t.Errorf("Invalid date %q", p.Date)
			}
			if math.IsNaN(p.Close) {
				t.Errorf("NaN close at %s", p.Date)
			}
		}
	})

	t.Run("empty result is valid", func(t *testing.T) {
		if points := ExtractPoints(Result{}); len(points) != 0 {
			t.Errorf("Expected empty, got %v", points)
		}
	})
}

func TestResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"well formed", samplePayload, false},
		{"no timestamps", `{"chart":{"result":[{"meta":{},"indicators":{"quote":[{"close":[1]}]}}]}}`, true},
		{"no prices", `{"chart":{"result":[{"meta":{},"timestamp":[1],"indicators":{}}]}}`, true},
		{"mismatched lengths", `{"chart":{"result":[{"meta":{},"timestamp":[1,2],"indicators":{"quote":[{"close":[1]}]}}]}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeResult(t, tt.payload).Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResult_LastQuoteDate(t *testing.T) {
	r := decodeResult(t, samplePayload)

	d, ok := r.LastQuoteDate()
	if !ok || d != "2024-01-02" {
		t.Errorf("Expected 2024-01-02, got %q (ok=%v)", d, ok)
	}

	if _, ok := (Result{}).LastQuoteDate(); ok {
		t.Error("Expected no date without regularMarketTime")
	}

	far := int64(1e18)
	if d, ok := (Result{Meta: Meta{RegularMarketTime: &far}}).LastQuoteDate(); ok {
		t.Errorf("Expected no date for an out-of-range regularMarketTime, got %q", d)
	}
}
