package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/cache"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// Loader is one fallback source.
type Loader interface {
	LoadFallback(ctx context.Context) (model.DatasetSnapshot, error)
}

// Source names a Loader for logging.
type Source struct {
	Name   string
	Loader Loader
}

// Chain reads every source and returns the freshest snapshot that has data.
// Freshness is the snapshot's generatedAt; ties go to the earlier source.
type Chain struct {
	sources []Source
	logger  *slog.Logger
}

// NewChain creates a Chain over sources.
func NewChain(logger *slog.Logger, sources ...Source) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{sources: sources, logger: logger}
}

// LoadFallback returns the freshest usable snapshot. When none is usable the
// error is an *apperrors.FallbackUnavailableError joining every source's failure.
func (c *Chain) LoadFallback(ctx context.Context) (model.DatasetSnapshot, error) {
	var (
		best     model.DatasetSnapshot
		bestName string
		found    bool
		errs     []error
	)
	for _, src := range c.sources {
		snap, err := src.Loader.LoadFallback(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.DatasetSnapshot{}, ctxErr
			}
			if !cache.IsNotFound(err) {
				c.logger.Warn("fallback source failed", "source", src.Name, "error", err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			continue
		}
		if len(snap.Data) == 0 {
			errs = append(errs, fmt.Errorf("%s: snapshot has no data", src.Name))
			continue
		}
		if !found || snap.GeneratedAt.After(best.GeneratedAt) {
			best, bestName, found = snap, src.Name, true
		}
	}
	if found {
		c.logger.Debug("using fallback source", "source", bestName, "generatedAt", best.GeneratedAt)
		return best, nil
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no fallback source configured"))
	}
	return model.DatasetSnapshot{}, &apperrors.FallbackUnavailableError{Cause: errors.Join(errs...)}
}
