package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/psx"
)

// MockPSXClient is an in-memory psx.Client for testing.
// Series are keyed by symbol; a symbol without a series fails like an
// unreachable portal.
type MockPSXClient struct {
	mu sync.Mutex

	// Symbols is returned by GetSymbols
	Symbols []model.Symbol
	// Intraday and EOD hold the series per symbol
	Intraday map[string][]model.TimeSeriesPoint
	EOD      map[string][]model.TimeSeriesPoint
	// Reports holds the report postings per symbol
	Reports map[string][]model.CompanyReport
	// MockError, when set, fails every call
	MockError error
	// QueryCount tracks how many calls were made
	QueryCount int
}

var _ psx.Client = (*MockPSXClient)(nil)

// NewMockPSXClient creates a mock with a small listing and no series.
func NewMockPSXClient() *MockPSXClient {
	return &MockPSXClient{
		Symbols: []model.Symbol{
			{Symbol: "OGDC", Name: "Oil & Gas Development Company Limited", SectorName: "OIL & GAS EXPLORATION COMPANIES"},
			{Symbol: "HBL", Name: "Habib Bank Limited", SectorName: "COMMERCIAL BANKS"},
			{Symbol: "MZNPETF", Name: "Meezan Pakistan ETF", SectorName: "EXCHANGE TRADED FUNDS", IsETF: true},
		},
		Intraday: make(map[string][]model.TimeSeriesPoint),
		EOD:      make(map[string][]model.TimeSeriesPoint),
		Reports:  make(map[string][]model.CompanyReport),
	}
}

// WithError makes every call fail with err.
func (m *MockPSXClient) WithError(err error) *MockPSXClient {
	m.MockError = err
	return m
}

// WithIntraday sets the intraday series of symbol.
func (m *MockPSXClient) WithIntraday(symbol string, points []model.TimeSeriesPoint) *MockPSXClient {
	m.Intraday[symbol] = points
	return m
}

// WithEOD sets the end-of-day series of symbol.
func (m *MockPSXClient) WithEOD(symbol string, points []model.TimeSeriesPoint) *MockPSXClient {
	m.EOD[symbol] = points
	return m
}

// Calls returns the number of calls made so far.
func (m *MockPSXClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

func (m *MockPSXClient) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCount++
	return m.MockError
}

// GetSymbols returns the configured listing.
func (m *MockPSXClient) GetSymbols(_ context.Context) ([]model.Symbol, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	return m.Symbols, nil
}

// GetIntraday returns the configured intraday series of symbol.
func (m *MockPSXClient) GetIntraday(_ context.Context, symbol string) ([]model.TimeSeriesPoint, error) {
	return m.series(m.Intraday, symbol)
}

// GetEOD returns the configured end-of-day series of symbol.
func (m *MockPSXClient) GetEOD(_ context.Context, symbol string) ([]model.TimeSeriesPoint, error) {
	return m.series(m.EOD, symbol)
}

// GetCompanyReports returns the configured reports of symbol, or none.
func (m *MockPSXClient) GetCompanyReports(_ context.Context, symbol string) ([]model.CompanyReport, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	reports := m.Reports[symbol]
	if reports == nil {
		reports = []model.CompanyReport{}
	}
	return reports, nil
}

func (m *MockPSXClient) series(source map[string][]model.TimeSeriesPoint, symbol string) ([]model.TimeSeriesPoint, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	points, ok := source[symbol]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no series for %s", apperrors.ErrUpstream, symbol)
	}
	return points, nil
}

// MakeSeries builds count points one step apart starting at start, with
// prices start, start+1, ...
//
// Example usage:
//
//	points := testutil.MakeSeries(time.Date(2025, 1, 6, 4, 0, 0, 0, time.UTC), time.Minute, 3, 100)
//	// prices 100, 101, 102
func MakeSeries(start time.Time, step time.Duration, count int, firstPrice float64) []model.TimeSeriesPoint {
	points := make([]model.TimeSeriesPoint, count)
	for i := range points {
		points[i] = model.TimeSeriesPoint{
			Timestamp: start.Add(time.Duration(i) * step).Unix(),
			Price:     firstPrice + float64(i),
			Volume:    1000,
		}
	}
	return points
}
