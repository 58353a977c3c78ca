package handlers

import (
	"net/http"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/validation"
)

// PerformanceHandler handles HTTP requests for the performance table.
type PerformanceHandler struct {
	performanceService *service.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler with the provided service dependency.
func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
	}
}

// OrderResponse is the custom symbol order.
type OrderResponse struct {
	Symbols []string `json:"symbols"`
}

// Performance handles GET requests for the performance table.
//
// Endpoint: GET /api/performance?sort=y3&order=desc
// Response: 200 OK with model.PerformanceTable; without sort the custom order applies
// Error: 400 Bad Request for an unknown sort key or order
func (h *PerformanceHandler) Performance(w http.ResponseWriter, r *http.Request) {
	sortKey, order := request.ParseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))

	table, err := h.performanceService.Table(r.Context(), sortKey, order)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePerformance)
		return
	}
	response.RespondJSON(w, http.StatusOK, table)
}

// Order handles GET requests for the custom symbol order.
//
// Endpoint: GET /api/performance/order
// Response: 200 OK with OrderResponse
func (h *PerformanceHandler) Order(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.performanceService.GetOrder(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveOrder)
		return
	}
	response.RespondJSON(w, http.StatusOK, OrderResponse{Symbols: symbols})
}

// UpdateOrder handles PUT requests replacing the custom symbol order.
//
// Endpoint: PUT /api/performance/order
// Request Body: request.UpdateOrderRequest
// Response: 200 OK with OrderResponse
// Error: 400 Bad Request for an invalid body, an empty list or duplicates
// Error: 404 Not Found for an unconfigured symbol
func (h *PerformanceHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateOrderRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateUpdateOrder(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	symbols, err := h.performanceService.SaveOrder(r.Context(), req.Symbols)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToSaveOrder)
		return
	}
	response.RespondJSON(w, http.StatusOK, OrderResponse{Symbols: symbols})
}
