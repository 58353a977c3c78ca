package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
)

// ETFHandler handles HTTP requests for ETF endpoints.
type ETFHandler struct {
	etfService *service.ETFService
}

// NewETFHandler creates a new ETFHandler with the provided service dependency.
func NewETFHandler(etfService *service.ETFService) *ETFHandler {
	return &ETFHandler{
		etfService: etfService,
	}
}

// ETFs handles GET requests for the configured ETFs grouped for display.
//
// Endpoint: GET /api/etf
// Response: 200 OK with model.ETFGroups
func (h *ETFHandler) ETFs(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.etfService.Groups())
}

// ETF handles GET requests for one symbol's series within a window.
//
// Endpoint: GET /api/etf/{symbol}?window=YTD
// Response: 200 OK with model.WindowSummary
// Error: 400 Bad Request for an unknown window
// Error: 404 Not Found for an unconfigured symbol or one without data
func (h *ETFHandler) ETF(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	summary, err := h.etfService.Window(symbol, r.URL.Query().Get("window"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDataset)
		return
	}
	response.RespondJSON(w, http.StatusOK, summary)
}
