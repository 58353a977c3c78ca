package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/api/response"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T, rejecting unknown fields and trailing data.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	if dec.More() {
		return v, errors.New("request body must contain a single JSON object")
	}
	return v, nil
}

// respondServiceError maps a service error to an HTTP status. fallback is the
// message used for errors that are not a client mistake.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrSymbolNotFound),
		errors.Is(err, apperrors.ErrSeriesNotFound):
		response.RespondError(w, http.StatusNotFound, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrInvalidSymbol),
		errors.Is(err, apperrors.ErrInvalidWindow),
		errors.Is(err, apperrors.ErrInvalidSortKey),
		errors.Is(err, apperrors.ErrInvalidSortOrder),
		errors.Is(err, apperrors.ErrEmptyOrder),
		errors.Is(err, apperrors.ErrDuplicateSymbol):
		response.RespondError(w, http.StatusBadRequest, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrRefreshSuperseded):
		response.RespondError(w, http.StatusConflict, apperrors.ErrRefreshSuperseded.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}

var clientErrors = []error{
	apperrors.ErrSymbolNotFound,
	apperrors.ErrSeriesNotFound,
	apperrors.ErrInvalidSymbol,
	apperrors.ErrInvalidWindow,
	apperrors.ErrInvalidSortKey,
	apperrors.ErrInvalidSortOrder,
	apperrors.ErrEmptyOrder,
	apperrors.ErrDuplicateSymbol,
}

// rootMessage returns the sentinel message err wraps.
func rootMessage(err error) string {
	for _, sentinel := range clientErrors {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
