package handlers

import (
	"net/http"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/request"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.systemService.CheckHealth(r.Context()); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// Version handles GET requests to retrieve version information and feature availability.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with model.VersionInfo
// Error: 500 Internal Server Error if the schema version cannot be read
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	version, err := h.systemService.CheckVersion(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to get version information", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, version)
}

// RefreshRuns handles GET requests for the most recent load and refresh runs.
//
// Endpoint: GET /api/system/refreshes?limit=20
// Response: 200 OK with array of model.RefreshRun, newest first
// Error: 400 Bad Request for an invalid limit
// Error: 500 Internal Server Error if retrieval fails
func (h *SystemHandler) RefreshRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := request.ParseLimit(r.URL.Query().Get("limit"), repository.DefaultRefreshRunLimit, request.MaxRefreshRunLimit)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid limit", err.Error())
		return
	}

	runs, err := h.systemService.RefreshRuns(r.Context(), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve refresh runs", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, runs)
}
