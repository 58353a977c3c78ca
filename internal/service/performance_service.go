package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// Sort keys accepted by the performance table.
const (
	SortByETF = "etf"
	SortByY1  = "y1"
	SortByY3  = "y3"
	SortByY5  = "y5"
	SortByY10 = "y10"
)

// PerformanceCache mirrors the last computed performance table.
type PerformanceCache interface {
	LoadPerformance(ctx context.Context) (model.PerformanceCacheEntry, error)
	SavePerformance(ctx context.Context, entry model.PerformanceCacheEntry) error
}

// OrderStore persists the user's custom symbol order.
type OrderStore interface {
	GetSymbolOrder(ctx context.Context) ([]string, error)
	ReplaceSymbolOrder(ctx context.Context, symbols []string) error
}

// PerformanceService builds the performance table from the active dataset.
type PerformanceService struct {
	etfs   []model.ETF
	state  *DashboardState
	cache  PerformanceCache
	orders OrderStore
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	lastSaved string
}

// NewPerformanceService creates a new PerformanceService. cache and orders may be nil.
func NewPerformanceService(etfs []model.ETF, state *DashboardState, cache PerformanceCache, orders OrderStore, logger *slog.Logger) *PerformanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PerformanceService{
		etfs:   etfs,
		state:  state,
		cache:  cache,
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
}

// Table returns the performance rows for every configured ETF.
//
// While a load is in flight and no dataset is available yet, the cached rows
// are served with Cached set. Otherwise rows are computed from the active
// dataset and mirrored into the cache whenever the refresh timestamp moves.
//
// Parameters:
//   - ctx: Context for cache and order store access
//   - sortKey: One of etf, y1, y3, y5, y10; empty applies the custom order
//   - order: asc or desc; empty means desc for returns and asc for etf
//
// Returns the table, or an error wrapping ErrInvalidSortKey/ErrInvalidSortOrder.
func (s *PerformanceService) Table(ctx context.Context, sortKey, order string) (model.PerformanceTable, error) {
	desc, err := parseSortOrder(sortKey, order)
	if err != nil {
		return model.PerformanceTable{}, err
	}
	if sortKey != "" && !validSortKey(sortKey) {
		return model.PerformanceTable{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidSortKey, sortKey)
	}

	table, ok := s.cachedWhileLoading(ctx)
	if !ok {
		table = s.compute()
		s.mirror(ctx, table)
	}

	if sortKey != "" {
		SortRows(table.Rows, sortKey, desc)
		return table, nil
	}
	custom, err := s.storedOrder(ctx)
	if err != nil {
		s.logger.Warn("failed to read custom order, using configuration order", "error", err)
		return table, nil
	}
	table.Rows = ApplyOrder(table.Rows, custom)
	return table, nil
}

func (s *PerformanceService) cachedWhileLoading(ctx context.Context) (model.PerformanceTable, bool) {
	if s.cache == nil || !s.state.Loading() || s.state.HasData() {
		return model.PerformanceTable{}, false
	}
	entry, err := s.cache.LoadPerformance(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCacheEntryNotFound) {
			s.logger.Warn("failed to read cached performance", "error", err)
		}
		return model.PerformanceTable{}, false
	}
	return model.PerformanceTable{Rows: entry.Data, Timestamp: entry.Timestamp, Cached: true}, true
}

func (s *PerformanceService) compute() model.PerformanceTable {
	snapshot := s.state.Snapshot()
	rows := make([]model.PerformanceRow, 0, len(s.etfs))
	for _, etf := range s.etfs {
		series, ok := snapshot.Data[etf.Symbol]
		rows = append(rows, ComputePerformanceRow(etf, series, ok))
	}
	return model.PerformanceTable{Rows: rows, Timestamp: s.state.LastRefresh()}
}

func (s *PerformanceService) mirror(ctx context.Context, table model.PerformanceTable) {
	if s.cache == nil || !s.state.HasData() || table.Timestamp == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if table.Timestamp == s.lastSaved {
		return
	}
	entry := model.PerformanceCacheEntry{
		Data:      slices.Clone(table.Rows),
		Timestamp: table.Timestamp,
		CachedAt:  s.now().UTC(),
	}
	if err := s.cache.SavePerformance(ctx, entry); err != nil {
		s.logger.Warn("failed to cache performance table", "error", err)
		return
	}
	s.lastSaved = table.Timestamp
}

// GetOrder returns the custom symbol order, or the configuration order when none is stored.
func (s *PerformanceService) GetOrder(ctx context.Context) ([]string, error) {
	custom, err := s.storedOrder(ctx)
	if err != nil {
		return nil, err
	}
	if len(custom) > 0 {
		return custom, nil
	}
	return s.configOrder(), nil
}

// SaveOrder replaces the custom symbol order. Every symbol must be configured
// and appear once. Configured symbols missing from the list keep their relative
// configuration order after the listed ones.
func (s *PerformanceService) SaveOrder(ctx context.Context, symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, apperrors.ErrEmptyOrder
	}
	known := make(map[string]bool, len(s.etfs))
	for _, etf := range s.etfs {
		known[etf.Symbol] = true
	}
	seen := make(map[string]bool, len(symbols))
	cleaned := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		symbol := strings.TrimSpace(raw)
		if symbol == "" {
			return nil, apperrors.ErrInvalidSymbol
		}
		if !known[symbol] {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
		}
		if seen[symbol] {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateSymbol, symbol)
		}
		seen[symbol] = true
		cleaned = append(cleaned, symbol)
	}
	if s.orders == nil {
		return nil, apperrors.ErrFailedToSaveOrder
	}
	if err := s.orders.ReplaceSymbolOrder(ctx, cleaned); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToSaveOrder, err)
	}
	return cleaned, nil
}

func (s *PerformanceService) storedOrder(ctx context.Context) ([]string, error) {
	if s.orders == nil {
		return nil, nil
	}
	custom, err := s.orders.GetSymbolOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveOrder, err)
	}
	return custom, nil
}

func (s *PerformanceService) configOrder() []string {
	symbols := make([]string, len(s.etfs))
	for i, etf := range s.etfs {
		symbols[i] = etf.Symbol
	}
	return symbols
}

func validSortKey(key string) bool {
	switch key {
	case SortByETF, SortByY1, SortByY3, SortByY5, SortByY10:
		return true
	}
	return false
}

func parseSortOrder(key, order string) (bool, error) {
	switch strings.ToLower(order) {
	case "":
		return key != SortByETF, nil
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", apperrors.ErrInvalidSortOrder, order)
}

func rowValue(row model.PerformanceRow, key string) *float64 {
	switch key {
	case SortByY1:
		return row.Y1
	case SortByY3:
		return row.Y3
	case SortByY5:
		return row.Y5
	case SortByY10:
		return row.Y10
	}
	return nil
}

// SortRows sorts rows in place by key. Rows without a value sort last in both
// directions; ties keep their current order.
func SortRows(rows []model.PerformanceRow, key string, desc bool) {
	slices.SortStableFunc(rows, func(a, b model.PerformanceRow) int {
		if key == SortByETF {
			c := cmp.Compare(a.ETF, b.ETF)
			if desc {
				return -c
			}
			return c
		}
		va, vb := rowValue(a, key), rowValue(b, key)
		switch {
		case va == nil && vb == nil:
			return 0
		case va == nil:
			return 1
		case vb == nil:
			return -1
		}
		c := cmp.Compare(*va, *vb)
		if desc {
			return -c
		}
		return c
	})
}

// ApplyOrder returns rows with the symbols in order first, in that order,
// followed by the remaining rows in their current order. Unknown symbols in
// order are ignored.
func ApplyOrder(rows []model.PerformanceRow, order []string) []model.PerformanceRow {
	if len(order) == 0 {
		return rows
	}
	rank := make(map[string]int, len(order))
	for i, symbol := range order {
		if _, dup := rank[symbol]; !dup {
			rank[symbol] = i
		}
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b model.PerformanceRow) int {
		ra, okA := rank[a.Symbol]
		rb, okB := rank[b.Symbol]
		switch {
		case okA && okB:
			return cmp.Compare(ra, rb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return out
}
