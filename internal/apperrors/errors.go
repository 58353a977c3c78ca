package apperrors

import (
	"errors"
	"fmt"
)

// Domain entity errors represent missing or invalid entities in the system.
var (
	// ErrSymbolNotFound indicates that a symbol is not part of the configured ETF list.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrSeriesNotFound indicates that a configured symbol has no series in the active dataset.
	ErrSeriesNotFound = errors.New("no price series for symbol")

	// ErrCacheEntryNotFound indicates that a cache key is absent or its version is stale.
	ErrCacheEntryNotFound = errors.New("cache entry not found")
)

// Pipeline errors that carry no extra context.
var (
	// ErrEmptySeries indicates that a merge produced zero price points.
	ErrEmptySeries = errors.New("no price points available")

	// ErrRefreshSuperseded indicates that a load or refresh was cancelled before it
	// could commit, either by the caller or by a newer run.
	ErrRefreshSuperseded = errors.New("refresh cancelled before commit")
)

// Validation errors for request parameters.
var (
	ErrInvalidSymbol    = errors.New("symbol is required")
	ErrInvalidWindow    = errors.New("invalid window")
	ErrInvalidSortKey   = errors.New("invalid sort key")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrEmptyOrder       = errors.New("order cannot be empty")
	ErrDuplicateSymbol  = errors.New("duplicate symbol in order")
)

// Operation failure errors.
var (
	ErrFailedToRetrieveDataset     = errors.New("failed to retrieve dataset")
	ErrFailedToRefreshDataset      = errors.New("failed to refresh dataset")
	ErrFailedToRetrievePerformance = errors.New("failed to retrieve performance")
	ErrFailedToRetrieveOrder       = errors.New("failed to retrieve symbol order")
	ErrFailedToSaveOrder           = errors.New("failed to save symbol order")
	ErrFailedToRetrieveRefreshRuns = errors.New("failed to retrieve refresh runs")
)

// RequestFailedError is returned when the market-data endpoint answers with a
// non-success HTTP status.
type RequestFailedError struct {
	Status int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed (%d)", e.Status)
}

// NetworkError wraps a transport-level failure (unreachable host, reset, timeout).
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: unable to fetch data: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// MalformedResponseError wraps a body that could not be read or decoded as JSON.
type MalformedResponseError struct {
	Cause error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Cause)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

// NoChartDataError is returned when a decoded body has no usable chart result.
// Message is the provider's own error description when one was supplied.
type NoChartDataError struct {
	Message string
}

func (e *NoChartDataError) Error() string {
	return e.Message
}

// FallbackUnavailableError is returned when neither the cache nor the bundled
// dataset could provide a fallback snapshot.
type FallbackUnavailableError struct {
	Cause error
}

func (e *FallbackUnavailableError) Error() string {
	return fmt.Sprintf("failed to load fallback dataset: %v", e.Cause)
}

func (e *FallbackUnavailableError) Unwrap() error { return e.Cause }
