package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/yahoo"
)

// SeriesService builds the canonical price series of one symbol from two Yahoo
// Finance resolutions.
type SeriesService struct {
	yahooClient    yahoo.Client
	splitThreshold float64
	logger         *slog.Logger
	now            func() time.Time
}

// SeriesOptions tunes a SeriesService. Zero values select the defaults.
type SeriesOptions struct {
	SplitThreshold float64
	Logger         *slog.Logger
	Now            func() time.Time
}

// NewSeriesService creates a new SeriesService backed by yahooClient.
func NewSeriesService(yahooClient yahoo.Client, opts SeriesOptions) *SeriesService {
	s := &SeriesService{
		yahooClient:    yahooClient,
		splitThreshold: opts.SplitThreshold,
		logger:         opts.Logger,
		now:            opts.Now,
	}
	if s.splitThreshold <= 1 {
		s.splitThreshold = DefaultSplitThreshold
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// FetchSeries fetches and merges the monthly max-range series and the daily 10-year
// series of symbol into one canonical series.
//
// The method follows this workflow:
//  1. Queries both resolutions concurrently and waits for both to settle
//  2. Fails if the monthly query failed; a failed daily query is logged and skipped
//  3. Extracts points from both, monthly first, then daily
//  4. Runs the split normalizer over the concatenation
//  5. Collapses duplicate dates; the daily value wins because it was appended last
//
// Ordering between the two resolutions comes from concatenation order, never from
// which query finished first.
//
// Parameters:
//   - ctx: Cancels both queries; a cancelled merge returns ctx.Err()
//   - symbol: Ticker symbol to fetch
//
// Returns:
//   - SeriesResult: Ascending, date-unique series with currency and freshness metadata
//   - error: The monthly query's error, apperrors.ErrEmptySeries when no points remain,
//     or the context error
func (s *SeriesService) FetchSeries(ctx context.Context, symbol string) (model.SeriesResult, error) {
	var coarse, fine yahoo.Result
	var fineErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.yahooClient.QueryChart(gctx, symbol, yahoo.ResolutionMonthlyMax)
		if err != nil {
			return err
		}
		coarse = r
		return nil
	})
	g.Go(func() error {
		r, err := s.yahooClient.QueryChart(gctx, symbol, yahoo.ResolutionDaily10Y)
		if err != nil {
			fineErr = err
			return nil
		}
		fine = r
		return nil
	})

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.SeriesResult{}, ctxErr
	}
	if err != nil {
		return model.SeriesResult{}, err
	}

	haveFine := fineErr == nil
	if !haveFine {
		s.logger.Warn("daily data unavailable, using monthly only",
			"symbol", symbol,
			"range", yahoo.ResolutionDaily10Y.Range,
			"interval", yahoo.ResolutionDaily10Y.Interval,
			"error", fineErr,
		)
	}

	combined := yahoo.ExtractPoints(coarse)
	if haveFine {
		combined = append(combined, yahoo.ExtractPoints(fine)...)
	}

	prices := dedupeSorted(NormalizeForSplits(combined, s.splitThreshold))
	if len(prices) == 0 {
		return model.SeriesResult{}, apperrors.ErrEmptySeries
	}

	return model.SeriesResult{
		Symbol:       symbol,
		Prices:       prices,
		Currency:     s.currency(coarse, fine, haveFine),
		ExchangeName: s.exchangeName(coarse, fine, haveFine),
		LastUpdated:  s.lastUpdated(coarse, fine, haveFine),
	}, nil
}

func (s *SeriesService) lastUpdated(coarse, fine yahoo.Result, haveFine bool) string {
	if haveFine {
		if d, ok := fine.LastQuoteDate(); ok {
			return d
		}
	}
	if d, ok := coarse.LastQuoteDate(); ok {
		return d
	}
	return model.FormatDate(s.now())
}

func (s *SeriesService) currency(coarse, fine yahoo.Result, haveFine bool) string {
	if haveFine && fine.Meta.Currency != "" {
		return fine.Meta.Currency
	}
	if coarse.Meta.Currency != "" {
		return coarse.Meta.Currency
	}
	return model.DefaultCurrency
}

func (s *SeriesService) exchangeName(coarse, fine yahoo.Result, haveFine bool) string {
	if haveFine && fine.Meta.ExchangeName != "" {
		return fine.Meta.ExchangeName
	}
	return coarse.Meta.ExchangeName
}
