package service

import (
	"fmt"
	"strings"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
)

// ETFService answers per-ETF questions against the active dataset.
type ETFService struct {
	etfs  []model.ETF
	state *DashboardState
}

// NewETFService creates a new ETFService.
func NewETFService(etfs []model.ETF, state *DashboardState) *ETFService {
	return &ETFService{etfs: etfs, state: state}
}

// ETFs returns the configured ETFs in configuration order.
func (s *ETFService) ETFs() []model.ETF {
	return s.etfs
}

// Lookup finds a configured ETF by symbol, case-insensitively.
func (s *ETFService) Lookup(symbol string) (model.ETF, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return model.ETF{}, apperrors.ErrInvalidSymbol
	}
	for _, etf := range s.etfs {
		if strings.EqualFold(etf.Symbol, symbol) {
			return etf, nil
		}
	}
	return model.ETF{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
}

// Groups returns one card summary per configured ETF, split by group. Symbols
// without data carry their error message instead of prices.
func (s *ETFService) Groups() model.ETFGroups {
	snapshot := s.state.Snapshot()
	groups := model.ETFGroups{
		Growth:    []model.ETFSummary{},
		Defensive: []model.ETFSummary{},
	}
	for _, etf := range s.etfs {
		summary := summarize(etf, snapshot)
		if etf.Group == model.GroupDefensive {
			groups.Defensive = append(groups.Defensive, summary)
		} else {
			groups.Growth = append(groups.Growth, summary)
		}
	}
	return groups
}

func summarize(etf model.ETF, snapshot model.DatasetSnapshot) model.ETFSummary {
	summary := model.ETFSummary{ETF: etf, Error: snapshot.Errors[etf.Symbol]}
	series, ok := snapshot.Data[etf.Symbol]
	if !ok {
		if summary.Error == "" {
			summary.Error = "No data available"
		}
		return summary
	}
	summary.Currency = series.Currency
	if latest, ok := series.Latest(); ok {
		price := latest.Close
		summary.LatestDate = latest.Date
		summary.LatestClose = &price
	}
	summary.DailyChange = DailyChange(series.Prices)
	return summary
}

// Window returns the chart summary of symbol over window.
//
// Returns ErrSymbolNotFound for an unconfigured symbol, ErrInvalidWindow for an
// unknown window and ErrSeriesNotFound when the symbol has no data yet.
func (s *ETFService) Window(symbol, window string) (model.WindowSummary, error) {
	etf, err := s.Lookup(symbol)
	if err != nil {
		return model.WindowSummary{}, err
	}
	w, err := model.ParseWindow(window)
	if err != nil {
		return model.WindowSummary{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidWindow, err)
	}
	series, ok := s.state.Series(etf.Symbol)
	if !ok {
		return model.WindowSummary{}, fmt.Errorf("%w: %s", apperrors.ErrSeriesNotFound, etf.Symbol)
	}
	return SummarizeWindow(series, w), nil
}
