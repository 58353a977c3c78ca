package model

import "time"

// PerformanceRow is one line of the performance table. Returns are percentages;
// nil means the series is too short to compute the figure.
type PerformanceRow struct {
	ETF    string   `json:"etf"`
	Symbol string   `json:"symbol"`
	Group  Group    `json:"group"`
	Y1     *float64 `json:"y1"`
	Y3     *float64 `json:"y3"`
	Y5     *float64 `json:"y5"`
	Y10    *float64 `json:"y10"`
}

// PerformanceTable is the performance endpoint response.
type PerformanceTable struct {
	Rows      []PerformanceRow `json:"rows"`
	Timestamp string           `json:"timestamp"`
	Cached    bool             `json:"cached"`
}

// PerformanceCacheEntry mirrors the last computed table so a refresh in flight
// never shows an empty table. The cache envelope carries the version tag.
type PerformanceCacheEntry struct {
	Data      []PerformanceRow `json:"data"`
	Timestamp string           `json:"timestamp"`
	CachedAt  time.Time        `json:"cachedAt"`
}
