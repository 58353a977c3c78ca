package dataset_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/dataset"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/repository"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/testutil"
)

type loaderFunc func(ctx context.Context) (model.DatasetSnapshot, error)

func (f loaderFunc) LoadFallback(ctx context.Context) (model.DatasetSnapshot, error) {
	return f(ctx)
}

func failing(err error) dataset.Loader {
	return loaderFunc(func(context.Context) (model.DatasetSnapshot, error) {
		return model.DatasetSnapshot{}, err
	})
}

func returning(snap model.DatasetSnapshot) dataset.Loader {
	return loaderFunc(func(context.Context) (model.DatasetSnapshot, error) {
		return snap, nil
	})
}

func TestChain_LoadFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("sources without data are skipped", func(t *testing.T) {
		second := sampleSnapshot()
		second.LastUpdated = "second"
		chain := dataset.NewChain(nil,
			dataset.Source{Name: "cache", Loader: failing(apperrors.ErrCacheEntryNotFound)},
			dataset.Source{Name: "empty", Loader: returning(model.NewDatasetSnapshot())},
			dataset.Source{Name: "file", Loader: returning(second)},
		)

		got, err := chain.LoadFallback(ctx)
		if err != nil {
			t.Fatalf("LoadFallback() returned unexpected error: %v", err)
		}
		if got.LastUpdated != "second" {
			t.Errorf("Expected the file snapshot, got %q", got.LastUpdated)
		}
	})

	t.Run("fresher file beats an older cache entry", func(t *testing.T) {
		cached := sampleSnapshot()
		cached.LastUpdated = "cache"
		file := sampleSnapshot()
		file.LastUpdated = "file"
		file.GeneratedAt = cached.GeneratedAt.Add(24 * time.Hour)
		chain := dataset.NewChain(nil,
			dataset.Source{Name: "cache", Loader: returning(cached)},
			dataset.Source{Name: "file", Loader: returning(file)},
		)

		got, err := chain.LoadFallback(ctx)
		if err != nil {
			t.Fatalf("LoadFallback() returned unexpected error: %v", err)
		}
		if got.LastUpdated != "file" {
			t.Errorf("Expected the newer file snapshot, got %q", got.LastUpdated)
		}
	})

	t.Run("equally fresh sources prefer the earlier one", func(t *testing.T) {
		cached := sampleSnapshot()
		cached.LastUpdated = "cache"
		file := sampleSnapshot()
		file.LastUpdated = "file"
		chain := dataset.NewChain(nil,
			dataset.Source{Name: "cache", Loader: returning(cached)},
			dataset.Source{Name: "file", Loader: returning(file)},
		)

		got, err := chain.LoadFallback(ctx)
		if err != nil {
			t.Fatalf("LoadFallback() returned unexpected error: %v", err)
		}
		if got.LastUpdated != "cache" {
			t.Errorf("Expected the cache snapshot, got %q", got.LastUpdated)
		}
	})

	t.Run("all sources fail", func(t *testing.T) {
		chain := dataset.NewChain(nil,
			dataset.Source{Name: "cache", Loader: failing(apperrors.ErrCacheEntryNotFound)},
			dataset.Source{Name: "file", Loader: failing(errors.New("no such file"))},
		)

		_, err := chain.LoadFallback(ctx)

		var unavailable *apperrors.FallbackUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("Expected FallbackUnavailableError, got %v", err)
		}
		if !errors.Is(err, apperrors.ErrCacheEntryNotFound) {
			t.Error("Expected the cache miss to be joined")
		}
		if !strings.Contains(err.Error(), "file: no such file") {
			t.Errorf("Expected file error in %q", err.Error())
		}
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := dataset.NewChain(nil).LoadFallback(ctx)
		var unavailable *apperrors.FallbackUnavailableError
		if !errors.As(err, &unavailable) {
			t.Errorf("Expected FallbackUnavailableError, got %v", err)
		}
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		chain := dataset.NewChain(nil,
			dataset.Source{Name: "cache", Loader: loaderFunc(func(ctx context.Context) (model.DatasetSnapshot, error) {
				return model.DatasetSnapshot{}, ctx.Err()
			})},
			dataset.Source{Name: "file", Loader: returning(sampleSnapshot())},
		)

		if _, err := chain.LoadFallback(cctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	})
}

func TestCacheStore(t *testing.T) {
	ctx := context.Background()
	store := dataset.NewCacheStore(repository.NewCacheRepository(testutil.SetupTestDB(t)))

	if _, err := store.LoadFallback(ctx); !errors.Is(err, apperrors.ErrCacheEntryNotFound) {
		t.Fatalf("Expected empty cache, got %v", err)
	}

	want := sampleSnapshot()
	if err := store.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("SaveSnapshot() returned unexpected error: %v", err)
	}

	got, err := store.LoadFallback(ctx)
	if err != nil {
		t.Fatalf("LoadFallback() returned unexpected error: %v", err)
	}
	if got.LastUpdated != want.LastUpdated || len(got.Data) != 1 || got.Errors["NDQ.AX"] == "" {
		t.Errorf("Unexpected snapshot %+v", got)
	}
}
