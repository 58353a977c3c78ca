package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/ETF-Dashboard-Backend/internal/model"
	"github.com/ndewijer/ETF-Dashboard-Backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// Responses and errors are configured per symbol and resolution; anything
// not configured returns a NoChartData-style default error.
// It is safe for concurrent use.
type MockYahooClient struct {
	mu        sync.Mutex
	responses map[string]yahoo.Result
	errors    map[string]error
	// MockError, when set, is returned for every query.
	MockError error
	// QueryCount tracks how many times QueryChart was called.
	QueryCount int
	// Queries records each query as "SYMBOL range/interval".
	Queries []string
	// Block, when set, makes QueryChart wait for ctx cancellation.
	Block bool
}

// NewMockYahooClient creates a new mock Yahoo client with no configured responses.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		responses: make(map[string]yahoo.Result),
		errors:    make(map[string]error),
	}
}

func mockKey(symbol string, res yahoo.Resolution) string {
	return symbol + " " + res.String()
}

// QueryChart returns the configured result for symbol and res.
func (m *MockYahooClient) QueryChart(ctx context.Context, symbol string, res yahoo.Resolution) (yahoo.Result, error) {
	m.mu.Lock()
	key := mockKey(symbol, res)
	m.QueryCount++
	m.Queries = append(m.Queries, key)
	block := m.Block
	result, hasResult := m.responses[key]
	err := m.errors[key]
	if m.MockError != nil {
		err = m.MockError
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return yahoo.Result{}, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return yahoo.Result{}, err
	}
	if err != nil {
		return yahoo.Result{}, err
	}
	if !hasResult {
		return yahoo.Result{}, &mockNotConfiguredError{key: key}
	}
	return result, nil
}

type mockNotConfiguredError struct{ key string }

func (e *mockNotConfiguredError) Error() string { return "no mock response for " + e.key }

// Count returns the number of queries made so far.
func (m *MockYahooClient) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

// WithError configures the mock to return err for every query.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// WithResponse configures the result returned for symbol at res.
func (m *MockYahooClient) WithResponse(symbol string, res yahoo.Resolution, result yahoo.Result) *MockYahooClient {
	m.responses[mockKey(symbol, res)] = result
	return m
}

// WithSymbolError configures the error returned for symbol at res.
func (m *MockYahooClient) WithSymbolError(symbol string, res yahoo.Resolution, err error) *MockYahooClient {
	m.errors[mockKey(symbol, res)] = err
	return m
}

// WithSeries configures both resolutions of symbol from the given points.
func (m *MockYahooClient) WithSeries(symbol string, monthly, daily []model.PricePoint) *MockYahooClient {
	m.WithResponse(symbol, yahoo.ResolutionMonthlyMax, CreateChartResult(symbol, monthly))
	m.WithResponse(symbol, yahoo.ResolutionDaily10Y, CreateChartResult(symbol, daily))
	return m
}

// CreateChartResult builds a chart result whose adjclose array holds the
// closes of points. regularMarketTime is set to the last point's date.
func CreateChartResult(symbol string, points []model.PricePoint) yahoo.Result {
	timestamps := make([]yahoo.Timestamp, len(points))
	closes := make([]*float64, len(points))
	for i, p := range points {
		t, err := model.ParseDate(p.Date)
		if err != nil {
			panic(err)
		}
		timestamps[i] = yahoo.Timestamp{Seconds: t.Unix(), Valid: true}
		c := p.Close
		closes[i] = &c
	}

	meta := yahoo.Meta{
		Symbol:       symbol,
		Currency:     "AUD",
		ExchangeName: "ASX",
	}
	if len(points) > 0 {
		t, _ := model.ParseDate(points[len(points)-1].Date)
		sec := t.Add(6 * time.Hour).Unix()
		meta.RegularMarketTime = &sec
	}

	return yahoo.Result{
		Meta:      meta,
		Timestamp: timestamps,
		Indicators: yahoo.Indicators{
			AdjClose: []yahoo.AdjClose{{AdjClose: closes}},
			Quote:    []yahoo.Quote{{Close: closes}},
		},
	}
}
