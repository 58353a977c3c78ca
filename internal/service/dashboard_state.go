package service

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// RefreshTimestampLayout is the display format of the last refresh time,
// e.g. "16/10/2026, 6:30:05 PM".
const RefreshTimestampLayout = "02/01/2006, 3:04:05 PM"

// FormatRefreshTimestamp renders t in RefreshTimestampLayout using t's location.
func FormatRefreshTimestamp(t time.Time) string {
	return t.Format(RefreshTimestampLayout)
}

// LoadToken identifies one load or refresh run. Only the most recent token can
// commit; starting a new run cancels the context of the previous one.
type LoadToken struct {
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// Context returns the run's context, cancelled when the run is superseded or ended.
func (t LoadToken) Context() context.Context {
	return t.ctx
}

// DashboardState is the application state shared by the API handlers and the
// orchestrator. The snapshot is replaced as a whole on commit and handed out as
// copies, so readers never observe a partially updated dataset.
type DashboardState struct {
	mu          sync.RWMutex
	snapshot    model.DatasetSnapshot
	loading     bool
	lastRefresh time.Time
	generation  uint64
	cancel      context.CancelFunc
}

// NewDashboardState creates an empty, idle state.
func NewDashboardState() *DashboardState {
	return &DashboardState{snapshot: model.NewDatasetSnapshot()}
}

// BeginLoad marks the state as loading and returns a token for the new run. Any
// run still in flight is cancelled and can no longer commit.
func (s *DashboardState) BeginLoad(parent context.Context) LoadToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.generation++
	s.cancel = cancel
	s.loading = true

	return LoadToken{generation: s.generation, ctx: ctx, cancel: cancel}
}

// EndLoad releases the token. If it is still the current run the loading flag is
// cleared; the snapshot is left untouched.
func (s *DashboardState) EndLoad(token LoadToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token.generation == s.generation {
		s.loading = false
		s.cancel = nil
	}
	if token.cancel != nil {
		token.cancel()
	}
}

// commitLocked reports whether token may still commit. Callers hold s.mu.
func (s *DashboardState) commitLocked(token LoadToken) bool {
	return token.generation == s.generation && token.ctx != nil && token.ctx.Err() == nil
}

// CommitSnapshot atomically replaces the dataset with snapshot and records
// refreshedAt. It returns false, changing nothing, when the token was superseded
// or its context was cancelled.
func (s *DashboardState) CommitSnapshot(token LoadToken, snapshot model.DatasetSnapshot, refreshedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.commitLocked(token) {
		return false
	}
	s.snapshot = snapshot.Clone()
	s.lastRefresh = refreshedAt
	s.loading = false
	return true
}

// CommitRefreshFailure keeps the current data but replaces the error map with errs
// and records refreshedAt, so the dashboard shows that a refresh was attempted.
// It returns false when the token can no longer commit.
func (s *DashboardState) CommitRefreshFailure(token LoadToken, errs map[string]string, refreshedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.commitLocked(token) {
		return false
	}
	next := s.snapshot.Clone()
	next.Errors = make(map[string]string, len(errs))
	for k, v := range errs {
		next.Errors[k] = v
	}
	s.snapshot = next
	s.lastRefresh = refreshedAt
	s.loading = false
	return true
}

// Snapshot returns a copy of the active dataset.
func (s *DashboardState) Snapshot() model.DatasetSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Series returns the active series of symbol, if any.
func (s *DashboardState) Series(symbol string) (model.SeriesResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.snapshot.Data[symbol]
	return series, ok
}

// HasData reports whether at least one symbol has a series.
func (s *DashboardState) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshot.Data) > 0
}

// Loading reports whether a load or refresh is in flight.
func (s *DashboardState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastRefresh returns the display-formatted time of the last commit, or "".
func (s *DashboardState) LastRefresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRefresh.IsZero() {
		return ""
	}
	return FormatRefreshTimestamp(s.lastRefresh)
}

// DataAsAt is the most recent price date across the dataset, falling back to
// the snapshot's own freshness.
func (s *DashboardState) DataAsAt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dataAsAt(s.snapshot)
}

func dataAsAt(snapshot model.DatasetSnapshot) string {
	if d := snapshot.MostRecentPriceDate(); d != "" {
		return d
	}
	return snapshot.Freshness()
}

// View bundles the snapshot with the load status for the dataset endpoint,
// read under a single lock.
func (s *DashboardState) View() model.DatasetState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := model.DatasetState{
		Snapshot: s.snapshot.Clone(),
		Loading:  s.loading,
		DataAsAt: dataAsAt(s.snapshot),
	}
	if !s.lastRefresh.IsZero() {
		view.LastRefresh = FormatRefreshTimestamp(s.lastRefresh)
	}
	return view
}
