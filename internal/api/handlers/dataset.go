package handlers

import (
	"net/http"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/service"
)

// DatasetHandler serves the dashboard dataset and manual refreshes.
type DatasetHandler struct {
	datasetService *service.DatasetService
}

// NewDatasetHandler creates a new DatasetHandler with the provided service dependency.
func NewDatasetHandler(datasetService *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{
		datasetService: datasetService,
	}
}

// Dataset handles GET requests for the active dataset.
//
// Endpoint: GET /api/dataset
// Response: 200 OK with model.DatasetState
func (h *DatasetHandler) Dataset(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.datasetService.State().View())
}

// Refresh handles POST requests that re-fetch every symbol while keeping the
// data already displayed for symbols that fail.
//
// Endpoint: POST /api/dataset/refresh
// Response: 200 OK with model.DatasetState after the refresh
// Error: 409 Conflict if the refresh was cancelled or superseded by a newer run
// Error: 500 Internal Server Error otherwise
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.datasetService.Refresh(r.Context()); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRefreshDataset)
		return
	}
	response.RespondJSON(w, http.StatusOK, h.datasetService.State().View())
}
