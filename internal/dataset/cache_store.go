package dataset

import (
	"context"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// CacheStore keeps the last committed snapshot in a cache.Store. It is both
// the snapshot saver and the first fallback source of the orchestrator.
type CacheStore struct {
	store cache.Store
}

// NewCacheStore creates a CacheStore backed by store.
func NewCacheStore(store cache.Store) *CacheStore {
	return &CacheStore{store: store}
}

// SaveSnapshot implements service.SnapshotSaver.
func (c *CacheStore) SaveSnapshot(ctx context.Context, snap model.DatasetSnapshot) error {
	return cache.SetJSON(ctx, c.store, cache.DatasetKey, cache.DatasetVersion, snap, snap.GeneratedAt)
}

// LoadFallback implements service.FallbackLoader.
func (c *CacheStore) LoadFallback(ctx context.Context) (model.DatasetSnapshot, error) {
	var snap model.DatasetSnapshot
	if _, err := cache.GetJSON(ctx, c.store, cache.DatasetKey, cache.DatasetVersion, &snap); err != nil {
		return model.DatasetSnapshot{}, err
	}
	return snap, nil
}
