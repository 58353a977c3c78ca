package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// DefaultConcurrency is the number of symbols merged in parallel when none is configured.
const DefaultConcurrency = 8

// refreshFailedPrefix annotates a symbol whose manual refresh failed while older data is kept.
const refreshFailedPrefix = "Refresh failed, using cached data: "

// rootRefreshFailure is reported when every symbol failed during a manual refresh.
const rootRefreshFailure = "Couldn't refresh data. Using cached data. Please try again."

// SeriesFetcher produces the canonical series of one symbol.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, symbol string) (model.SeriesResult, error)
}

// FallbackLoader provides a previously persisted snapshot.
type FallbackLoader interface {
	LoadFallback(ctx context.Context) (model.DatasetSnapshot, error)
}

// SnapshotSaver persists a committed snapshot so later runs can fall back to it.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snapshot model.DatasetSnapshot) error
}

// RefreshRecorder records the outcome of each run.
type RefreshRecorder interface {
	InsertRefreshRun(ctx context.Context, run model.RefreshRun) error
}

// DatasetService is the batch orchestrator: it merges every configured symbol
// concurrently, applies the fallback policy and commits the result to the
// DashboardState.
type DatasetService struct {
	symbols     []string
	fetcher     SeriesFetcher
	fallback    FallbackLoader
	saver       SnapshotSaver
	recorder    RefreshRecorder
	state       *DashboardState
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// DatasetOptions holds the optional collaborators of a DatasetService.
type DatasetOptions struct {
	Fallback    FallbackLoader
	Saver       SnapshotSaver
	Recorder    RefreshRecorder
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// NewDatasetService creates a new DatasetService for symbols, in configuration order.
func NewDatasetService(symbols []string, fetcher SeriesFetcher, state *DashboardState, opts DatasetOptions) *DatasetService {
	s := &DatasetService{
		symbols:     symbols,
		fetcher:     fetcher,
		fallback:    opts.Fallback,
		saver:       opts.Saver,
		recorder:    opts.Recorder,
		state:       state,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if s.concurrency < 1 {
		s.concurrency = DefaultConcurrency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// State returns the state the service commits to.
func (s *DatasetService) State() *DashboardState {
	return s.state
}

// liveResults is the settled outcome of one batch of merges.
type liveResults struct {
	data      map[string]model.SeriesResult
	errors    map[string]string
	freshest  string
	succeeded int
	failed    int
}

// collect runs the merger for every symbol and waits for all of them to settle.
// One failure never stops the others.
func (s *DatasetService) collect(ctx context.Context) liveResults {
	type outcome struct {
		series model.SeriesResult
		err    error
	}
	outcomes := make([]outcome, len(s.symbols))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, symbol := range s.symbols {
		g.Go(func() error {
			series, err := s.fetcher.FetchSeries(ctx, symbol)
			outcomes[i] = outcome{series: series, err: err}
			return nil
		})
	}
	_ = g.Wait()

	live := liveResults{
		data:   make(map[string]model.SeriesResult),
		errors: make(map[string]string),
	}
	for i, symbol := range s.symbols {
		o := outcomes[i]
		if o.err != nil {
			live.failed++
			live.errors[symbol] = errorMessage(o.err)
			if ctx.Err() == nil {
				s.logger.Warn("failed to fetch series", "symbol", symbol, "error", o.err)
			}
			continue
		}
		live.succeeded++
		live.data[symbol] = o.series
		if o.series.LastUpdated > live.freshest {
			live.freshest = o.series.LastUpdated
		}
	}
	return live
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Failed to fetch live data"
}

// BuildSnapshot fetches every symbol and applies the fallback policy without
// touching the dashboard state:
//
//   - all symbols succeed: the fallback is never consulted
//   - some fail: each failed symbol is backfilled from the fallback's data when
//     present and keeps its live error either way
//   - all fail: the fallback snapshot is adopted as a whole, minus any
//     reserved error keys it was saved with; if it cannot be
//     loaded the result has no data and the fallback error is recorded under
//     model.FallbackErrorKey
//
// allowFallback=false skips the fallback entirely, as the refresh CLI does.
// A cancelled ctx returns ctx.Err().
func (s *DatasetService) BuildSnapshot(ctx context.Context, allowFallback bool) (model.DatasetSnapshot, model.RefreshRun, error) {
	run := model.RefreshRun{
		ID:        uuid.New().String(),
		Kind:      model.RefreshKindLoad,
		StartedAt: s.now().UTC(),
	}

	live := s.collect(ctx)
	if err := ctx.Err(); err != nil {
		return model.DatasetSnapshot{}, run, err
	}
	run.Succeeded, run.Failed = live.succeeded, live.failed

	now := s.now()
	today := model.FormatDate(now)
	useFallback := allowFallback && s.fallback != nil

	if live.failed == len(s.symbols) && len(s.symbols) > 0 && useFallback {
		fb, err := s.fallback.LoadFallback(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.DatasetSnapshot{}, run, ctxErr
		}
		if err != nil {
			s.logger.Error("all symbols failed and fallback dataset is unavailable", "error", err)
			snap := model.NewDatasetSnapshot()
			snap.GeneratedAt = now.UTC()
			snap.LastUpdated = today
			for k, v := range live.errors {
				snap.Errors[k] = v
			}
			snap.Errors[model.FallbackErrorKey] = err.Error()
			return snap, run, nil
		}

		s.logger.Warn("all symbols failed, using fallback dataset", "generatedAt", fb.GeneratedAt)
		run.FallbackUsed = true
		snap := fb.Clone()
		snap.LastUpdated = fb.Freshness()
		for key := range snap.Errors {
			if model.IsReservedErrorKey(key) {
				delete(snap.Errors, key)
			}
		}
		for symbol, msg := range live.errors {
			if _, ok := snap.Data[symbol]; !ok {
				if _, has := snap.Errors[symbol]; !has {
					snap.Errors[symbol] = msg
				}
			}
		}
		for symbol := range snap.Data {
			delete(snap.Errors, symbol)
		}
		return snap, run, nil
	}

	var fb *model.DatasetSnapshot
	var fallbackErr error
	if live.failed > 0 && useFallback {
		loaded, err := s.fallback.LoadFallback(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.DatasetSnapshot{}, run, ctxErr
		}
		if err != nil {
			s.logger.Warn("failed to load fallback dataset for partial errors", "error", err)
			fallbackErr = err
		} else {
			fb = &loaded
		}
	}

	snap := model.NewDatasetSnapshot()
	for _, symbol := range s.symbols {
		if series, ok := live.data[symbol]; ok {
			snap.Data[symbol] = series
			continue
		}
		if fb != nil {
			if series, ok := fb.Data[symbol]; ok {
				snap.Data[symbol] = series
				run.FallbackUsed = true
			}
		}
		snap.Errors[symbol] = live.errors[symbol]
	}
	if fallbackErr != nil {
		snap.Errors[model.FallbackErrorKey] = fallbackErr.Error()
	}

	switch {
	case live.succeeded > 0:
		snap.GeneratedAt = now.UTC()
		snap.LastUpdated = live.freshest
		if snap.LastUpdated == "" && fb != nil {
			snap.LastUpdated = fb.Freshness()
		}
	case fb != nil:
		snap.GeneratedAt = fb.GeneratedAt
		snap.LastUpdated = fb.Freshness()
	default:
		snap.GeneratedAt = now.UTC()
	}
	if snap.LastUpdated == "" {
		snap.LastUpdated = today
	}
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = now.UTC()
	}

	return snap, run, nil
}

// Load runs a full load with fallback and commits the result. A newer Load or
// Refresh cancels this one; a cancelled run commits nothing and returns an error
// wrapping apperrors.ErrRefreshSuperseded.
func (s *DatasetService) Load(ctx context.Context) (model.DatasetSnapshot, error) {
	token := s.state.BeginLoad(ctx)
	defer s.state.EndLoad(token)

	snap, run, err := s.BuildSnapshot(token.Context(), true)
	if err != nil {
		s.finishRun(run, false)
		return model.DatasetSnapshot{}, fmt.Errorf("%w: %w", apperrors.ErrRefreshSuperseded, err)
	}

	if !s.state.CommitSnapshot(token, snap, s.now()) {
		s.finishRun(run, false)
		return model.DatasetSnapshot{}, apperrors.ErrRefreshSuperseded
	}
	s.finishRun(run, true)
	s.save(snap)

	s.logger.Info("dataset loaded",
		"symbols", len(s.symbols),
		"succeeded", run.Succeeded,
		"failed", run.Failed,
		"fallback", run.FallbackUsed,
		"lastUpdated", snap.LastUpdated,
	)
	return snap, nil
}

// Refresh re-fetches every symbol while keeping what is already displayed: a
// symbol whose refresh fails keeps its previous series and its error reads
// "Refresh failed, using cached data: ...". A symbol with no previous series
// reports the plain error. When every symbol fails, the data is left as is
// and a root error is recorded instead.
//
// Without any committed data there is nothing to keep, so Refresh runs a full
// Load, fallback included.
func (s *DatasetService) Refresh(ctx context.Context) (model.DatasetSnapshot, error) {
	if !s.state.HasData() {
		return s.Load(ctx)
	}

	token := s.state.BeginLoad(ctx)
	defer s.state.EndLoad(token)

	run := model.RefreshRun{
		ID:        uuid.New().String(),
		Kind:      model.RefreshKindRefresh,
		StartedAt: s.now().UTC(),
	}

	current := s.state.Snapshot()
	live := s.collect(token.Context())
	if err := token.Context().Err(); err != nil {
		s.finishRun(run, false)
		return model.DatasetSnapshot{}, fmt.Errorf("%w: %w", apperrors.ErrRefreshSuperseded, err)
	}
	run.Succeeded, run.Failed = live.succeeded, live.failed

	next := current.Clone()
	errs := make(map[string]string)
	for _, symbol := range s.symbols {
		if series, ok := live.data[symbol]; ok {
			next.Data[symbol] = series
			continue
		}
		msg := live.errors[symbol]
		if _, had := next.Data[symbol]; had {
			s.logger.Warn("failed to refresh, keeping cached series", "symbol", symbol, "error", msg)
			errs[symbol] = refreshFailedPrefix + msg
		} else {
			errs[symbol] = msg
		}
	}

	now := s.now()
	if live.succeeded == 0 && len(s.symbols) > 0 {
		errs[model.RootErrorKey] = rootRefreshFailure
		if !s.state.CommitRefreshFailure(token, errs, now) {
			s.finishRun(run, false)
			return model.DatasetSnapshot{}, apperrors.ErrRefreshSuperseded
		}
		s.finishRun(run, true)
		return s.state.Snapshot(), nil
	}

	next.Errors = errs
	next.GeneratedAt = now.UTC()
	next.LastUpdated = next.MostRecentPriceDate()
	if next.LastUpdated == "" {
		next.LastUpdated = model.FormatDate(now)
	}

	if !s.state.CommitSnapshot(token, next, now) {
		s.finishRun(run, false)
		return model.DatasetSnapshot{}, apperrors.ErrRefreshSuperseded
	}
	s.finishRun(run, true)
	s.save(next)

	s.logger.Info("dataset refreshed", "succeeded", run.Succeeded, "failed", run.Failed)
	return next, nil
}

// save mirrors a committed snapshot into the cache. Failures are logged only.
func (s *DatasetService) save(snap model.DatasetSnapshot) {
	if s.saver == nil || len(snap.Data) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.saver.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Warn("failed to cache dataset snapshot", "error", err)
	}
}

func (s *DatasetService) finishRun(run model.RefreshRun, committed bool) {
	if s.recorder == nil {
		return
	}
	run.FinishedAt = s.now().UTC()
	run.Committed = committed
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.recorder.InsertRefreshRun(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to record refresh run", "id", run.ID, "error", err)
	}
}

// Sync runs a full Load while the dashboard has no data yet and a Refresh
// afterwards, so scheduled runs never discard what is displayed.
func (s *DatasetService) Sync(ctx context.Context) (model.DatasetSnapshot, error) {
	if s.state.HasData() {
		return s.Refresh(ctx)
	}
	return s.Load(ctx)
}
