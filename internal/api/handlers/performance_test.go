package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/testutil"
)

func setupPerformanceHandler(t *testing.T) *PerformanceHandler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := service.NewPerformanceService(testutil.TestETFs(), newLoadedState(t), nil, repository.NewOrderRepository(db), nil)
	return NewPerformanceHandler(svc)
}

func decodeTable(t *testing.T, w *httptest.ResponseRecorder) model.PerformanceTable {
	t.Helper()
	var table model.PerformanceTable
	if err := json.NewDecoder(w.Body).Decode(&table); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return table
}

func tableSymbols(table model.PerformanceTable) []string {
	out := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		out[i] = r.Symbol
	}
	return out
}

func TestPerformanceHandler_Performance(t *testing.T) {
	t.Run("configuration order by default", func(t *testing.T) {
		handler := setupPerformanceHandler(t)

		w := httptest.NewRecorder()
		handler.Performance(w, httptest.NewRequest(http.MethodGet, "/api/performance", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		table := decodeTable(t, w)
		if got := tableSymbols(table); !slices.Equal(got, []string{"IVV", "NDQ", "VAF"}) {
			t.Errorf("Unexpected order %v", got)
		}
		if table.Rows[0].Y1 == nil || table.Rows[2].Y1 != nil {
			t.Errorf("Unexpected figures %+v", table.Rows)
		}
	})

	t.Run("sorted ascending with nulls last", func(t *testing.T) {
		handler := setupPerformanceHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/performance", map[string]string{"sort": "Y1", "order": "ASC"})
		w := httptest.NewRecorder()
		handler.Performance(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		// NDQ is flat, IVV gained 10%.
		if got := tableSymbols(decodeTable(t, w)); !slices.Equal(got, []string{"NDQ", "IVV", "VAF"}) {
			t.Errorf("Unexpected order %v", got)
		}
	})

	t.Run("invalid sort key", func(t *testing.T) {
		handler := setupPerformanceHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/performance", map[string]string{"sort": "y7"})
		w := httptest.NewRecorder()
		handler.Performance(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestPerformanceHandler_Order(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		handler := setupPerformanceHandler(t)

		w := httptest.NewRecorder()
		handler.Order(w, httptest.NewRequest(http.MethodGet, "/api/performance/order", nil))
		var initial OrderResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&initial)
		if !slices.Equal(initial.Symbols, []string{"IVV", "NDQ", "VAF"}) {
			t.Errorf("Expected configuration order, got %v", initial.Symbols)
		}

		w = httptest.NewRecorder()
		handler.UpdateOrder(w, testutil.NewRequestWithBody(http.MethodPut, "/api/performance/order", `{"symbols":["VAF","NDQ","IVV"]}`))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.Performance(w, httptest.NewRequest(http.MethodGet, "/api/performance", nil))
		if got := tableSymbols(decodeTable(t, w)); !slices.Equal(got, []string{"VAF", "NDQ", "IVV"}) {
			t.Errorf("Expected custom order to apply, got %v", got)
		}
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed body", `{"symbols":`, http.StatusBadRequest},
		{"unknown field", `{"order":["IVV"]}`, http.StatusBadRequest},
		{"empty list", `{"symbols":[]}`, http.StatusBadRequest},
		{"duplicate", `{"symbols":["IVV","IVV"]}`, http.StatusBadRequest},
		{"blank symbol", `{"symbols":[""]}`, http.StatusBadRequest},
		{"unknown symbol", `{"symbols":["XYZ"]}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := setupPerformanceHandler(t)

			w := httptest.NewRecorder()
			handler.UpdateOrder(w, testutil.NewRequestWithBody(http.MethodPut, "/api/performance/order", tt.body))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}
