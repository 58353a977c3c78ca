package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/testutil"
)

// newTestDatasetService wires the orchestrator to a mocked Yahoo client serving
// IVV and NDQ; VAF always fails.
func newTestDatasetService(t *testing.T) (*service.DatasetService, *testutil.MockYahooClient) {
	t.Helper()
	client := testutil.NewMockYahooClient().
		WithSeries("IVV", testutil.MonthlyPoints("2020-01-01", "2024-01-01", testutil.Constant(40)), testutil.DailyPoints("2023-12-01", 40, testutil.Constant(41))).
		WithSeries("NDQ", testutil.MonthlyPoints("2020-01-01", "2024-01-01", testutil.Constant(30)), testutil.DailyPoints("2023-12-01", 40, testutil.Constant(31)))
	fetcher := service.NewSeriesService(client, service.SeriesOptions{})
	svc := service.NewDatasetService([]string{"IVV", "NDQ", "VAF"}, fetcher, service.NewDashboardState(), service.DatasetOptions{})
	return svc, client
}

func TestDatasetHandler_Dataset(t *testing.T) {
	t.Run("empty state before the first load", func(t *testing.T) {
		svc, _ := newTestDatasetService(t)
		handler := NewDatasetHandler(svc)

		w := httptest.NewRecorder()
		handler.Dataset(w, httptest.NewRequest(http.MethodGet, "/api/dataset", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var state model.DatasetState
		if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(state.Snapshot.Data) != 0 || state.Loading {
			t.Errorf("Unexpected state %+v", state)
		}
	})

	t.Run("loaded state", func(t *testing.T) {
		svc, _ := newTestDatasetService(t)
		if _, err := svc.Load(context.Background()); err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		handler := NewDatasetHandler(svc)

		w := httptest.NewRecorder()
		handler.Dataset(w, httptest.NewRequest(http.MethodGet, "/api/dataset", nil))

		var state model.DatasetState
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&state)

		if len(state.Snapshot.Data) != 2 {
			t.Errorf("Expected 2 series, got %d", len(state.Snapshot.Data))
		}
		if state.Snapshot.Errors["VAF"] == "" {
			t.Error("Expected an error for VAF")
		}
		if state.LastRefresh == "" || state.DataAsAt != "2024-01-09" {
			t.Errorf("Unexpected status %q %q", state.LastRefresh, state.DataAsAt)
		}
	})
}

func TestDatasetHandler_Refresh(t *testing.T) {
	t.Run("refreshes and returns the new state", func(t *testing.T) {
		svc, client := newTestDatasetService(t)
		handler := NewDatasetHandler(svc)

		w := httptest.NewRecorder()
		handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/dataset/refresh", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var state model.DatasetState
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&state)
		if len(state.Snapshot.Data) != 2 || state.Loading {
			t.Errorf("Unexpected state %+v", state)
		}
		if client.Count() != 6 {
			t.Errorf("Expected two queries per symbol, got %d", client.Count())
		}
	})

	t.Run("cancelled request returns 409", func(t *testing.T) {
		svc, _ := newTestDatasetService(t)
		handler := NewDatasetHandler(svc)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/api/dataset/refresh", nil).WithContext(ctx)
		w := httptest.NewRecorder()

		handler.Refresh(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}
