package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/middleware"
)

func TestValidateSymbolMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		symbol     string
		wantCalled bool
		wantStatus int
	}{
		{"passes through a valid symbol", "IVV.AX", true, http.StatusOK},
		{"passes through an index symbol", "^GSPC", true, http.StatusOK},
		{"returns 400 for an invalid symbol", "IVV;DROP", false, http.StatusBadRequest},
		{"returns 400 for a missing symbol", "", false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			mw := middleware.ValidateSymbolMiddleware(next)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			rctx := chi.NewRouteContext()
			if tt.symbol != "" {
				rctx.URLParams.Add("symbol", tt.symbol)
			}
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			if handlerCalled != tt.wantCalled {
				t.Errorf("Expected next handler called=%v", tt.wantCalled)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
