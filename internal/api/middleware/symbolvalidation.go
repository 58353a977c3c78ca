// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/validation"
)

// ValidateSymbolMiddleware validates that the symbol URL parameter is present and
// looks like a ticker. Returns 400 Bad Request otherwise.
//
// Example usage in router:
//
//	r.Route("/{symbol}", func(r chi.Router) {
//	    r.Use(middleware.ValidateSymbolMiddleware)
//	    r.Get("/", handler.ETF)
//	})
func ValidateSymbolMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		if symbol == "" {
			response.RespondError(w, http.StatusBadRequest, "symbol is required", "")
			return
		}

		if err := validation.ValidateSymbol(symbol); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid symbol format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
