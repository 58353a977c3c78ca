// Package cache is the versioned key-value cache that mirrors the dashboard
// dataset and performance table between runs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// Cache keys and the version of the payload stored under each. Bump a version
// when the shape or the calculation behind the payload changes.
const (
	PerformanceKey     = "etf-performance"
	PerformanceVersion = "v3"

	DatasetKey     = "etf-dataset"
	DatasetVersion = "v1"
)

// Store is a byte-oriented key-value store. Get returns
// apperrors.ErrCacheEntryNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type envelope struct {
	Version  string          `json:"version"`
	CachedAt time.Time       `json:"cachedAt"`
	Data     json.RawMessage `json:"data"`
}

// GetJSON decodes the value stored under key into dst. An entry written with a
// different version is treated as absent.
// Returns the time the entry was written.
func GetJSON(ctx context.Context, store Store, key, version string, dst any) (time.Time, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return time.Time{}, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	if env.Version != version || len(env.Data) == 0 {
		return time.Time{}, apperrors.ErrCacheEntryNotFound
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	return env.CachedAt, nil
}

// SetJSON encodes v under key with the given version.
func SetJSON(ctx context.Context, store Store, key, version string, v any, cachedAt time.Time) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: version, CachedAt: cachedAt.UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}

// PerformanceCache stores the last computed performance table.
type PerformanceCache struct {
	store Store
}

// NewPerformanceCache creates a PerformanceCache backed by store.
func NewPerformanceCache(store Store) *PerformanceCache {
	return &PerformanceCache{store: store}
}

// LoadPerformance returns the cached table.
func (c *PerformanceCache) LoadPerformance(ctx context.Context) (model.PerformanceCacheEntry, error) {
	var entry model.PerformanceCacheEntry
	cachedAt, err := GetJSON(ctx, c.store, PerformanceKey, PerformanceVersion, &entry)
	if err != nil {
		return model.PerformanceCacheEntry{}, err
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = cachedAt
	}
	return entry, nil
}

// SavePerformance replaces the cached table.
func (c *PerformanceCache) SavePerformance(ctx context.Context, entry model.PerformanceCacheEntry) error {
	return SetJSON(ctx, c.store, PerformanceKey, PerformanceVersion, entry, entry.CachedAt)
}

// IsNotFound reports whether err means the cache holds no usable entry.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrCacheEntryNotFound)
}
