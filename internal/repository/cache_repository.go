package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
)

// CacheRepository stores opaque cache values in the cache_entry table.
// It implements cache.Store for the sqlite backend.
type CacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCacheRepository creates a new CacheRepository with the provided database connection.
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db, now: time.Now}
}

// Get returns the value stored under key.
// Returns apperrors.ErrCacheEntryNotFound if the key does not exist.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entry WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrCacheEntryNotFound
		}
		return nil, fmt.Errorf("failed to query cache entry %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entry (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, formatTime(r.now()))
	if err != nil {
		return fmt.Errorf("failed to store cache entry %q: %w", key, err)
	}
	return nil
}
