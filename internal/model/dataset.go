package model

import (
	"encoding/json"
	"maps"
	"time"
)

// FallbackErrorKey is the reserved errors key that records why the fallback
// snapshot itself could not be loaded. It never collides with a ticker.
const FallbackErrorKey = "__fallback"

// RootErrorKey is the reserved errors key for a failure that is not tied to
// one symbol, such as a refresh in which every symbol failed.
const RootErrorKey = "__root"

// IsReservedErrorKey reports whether key is one of the non-symbol error keys.
func IsReservedErrorKey(key string) bool {
	return key == FallbackErrorKey || key == RootErrorKey
}

// DatasetSnapshot is the full dashboard dataset: one SeriesResult per symbol that
// has data and one message per symbol that failed. It is what the refresh job
// writes to disk and what the cache stores.
type DatasetSnapshot struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	LastUpdated string                  `json:"lastUpdated"`
	Data        map[string]SeriesResult `json:"data"`
	Errors      map[string]string       `json:"errors"`
}

// NewDatasetSnapshot returns a snapshot with initialised maps.
func NewDatasetSnapshot() DatasetSnapshot {
	return DatasetSnapshot{
		Data:   map[string]SeriesResult{},
		Errors: map[string]string{},
	}
}

type snapshotJSON struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	LastUpdated *string                 `json:"lastUpdated"`
	Data        map[string]SeriesResult `json:"data"`
	Errors      map[string]string       `json:"errors"`
}

// MarshalJSON writes an empty LastUpdated as null and nil maps as {}.
func (d DatasetSnapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		GeneratedAt: d.GeneratedAt,
		Data:        d.Data,
		Errors:      d.Errors,
	}
	if d.LastUpdated != "" {
		lu := d.LastUpdated
		out.LastUpdated = &lu
	}
	if out.Data == nil {
		out.Data = map[string]SeriesResult{}
	}
	if out.Errors == nil {
		out.Errors = map[string]string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a null lastUpdated and missing maps.
func (d *DatasetSnapshot) UnmarshalJSON(b []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	d.GeneratedAt = in.GeneratedAt
	d.LastUpdated = ""
	if in.LastUpdated != nil {
		d.LastUpdated = *in.LastUpdated
	}
	d.Data = in.Data
	if d.Data == nil {
		d.Data = map[string]SeriesResult{}
	}
	d.Errors = in.Errors
	if d.Errors == nil {
		d.Errors = map[string]string{}
	}
	return nil
}

// Clone returns a copy whose maps can be modified without affecting d.
// Price slices are shared; they are never mutated after construction.
func (d DatasetSnapshot) Clone() DatasetSnapshot {
	c := d
	c.Data = maps.Clone(d.Data)
	if c.Data == nil {
		c.Data = map[string]SeriesResult{}
	}
	c.Errors = maps.Clone(d.Errors)
	if c.Errors == nil {
		c.Errors = map[string]string{}
	}
	return c
}

// Freshness is the snapshot's own notion of "as of": LastUpdated when set,
// otherwise the calendar day of GeneratedAt, otherwise "".
func (d DatasetSnapshot) Freshness() string {
	if d.LastUpdated != "" {
		return d.LastUpdated
	}
	if !d.GeneratedAt.IsZero() {
		return FormatDate(d.GeneratedAt)
	}
	return ""
}

// MostRecentPriceDate returns the latest price date across every series, or "".
func (d DatasetSnapshot) MostRecentPriceDate() string {
	latest := ""
	for _, s := range d.Data {
		if p, ok := s.Latest(); ok && p.Date > latest {
			latest = p.Date
		}
	}
	return latest
}
