package model

import "time"

// RefreshKind distinguishes the initial load from a manual or scheduled refresh.
type RefreshKind string

const (
	RefreshKindLoad    RefreshKind = "load"
	RefreshKindRefresh RefreshKind = "refresh"
)

// RefreshRun records the outcome of one orchestrator run.
type RefreshRun struct {
	ID           string      `json:"id"`
	Kind         RefreshKind `json:"kind"`
	StartedAt    time.Time   `json:"startedAt"`
	FinishedAt   time.Time   `json:"finishedAt"`
	Succeeded    int         `json:"succeeded"`
	Failed       int         `json:"failed"`
	FallbackUsed bool        `json:"fallbackUsed"`
	Committed    bool        `json:"committed"`
}

// DatasetState is the dataset endpoint response: the active snapshot plus the
// dashboard's load status.
type DatasetState struct {
	Snapshot    DatasetSnapshot `json:"snapshot"`
	Loading     bool            `json:"loading"`
	LastRefresh string          `json:"lastRefresh,omitempty"`
	DataAsAt    string          `json:"dataAsAt,omitempty"`
}
