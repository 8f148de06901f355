package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/pricecache"
	"github.com/ndewijer/psx-portfolio-tracker/internal/psx"
)

// UnknownCompany is the name reported for symbols missing from the listing.
const UnknownCompany = "Unknown Company"

// symbolListTTL is how long the symbol listing is reused before refetching.
const symbolListTTL = time.Hour

// pakistanTime is PSX local time. Pakistan observes no daylight saving.
var pakistanTime = time.FixedZone("PKT", 5*60*60)

// MarketService serves PSX market data: listings, time series, reports and
// chart-ready series. Intraday and end-of-day series go through their own
// price caches.
type MarketService struct {
	client      psx.Client
	intraday    *pricecache.Cache
	eod         *pricecache.Cache
	concurrency int
	now         func() time.Time
	log         zerolog.Logger

	mu        sync.Mutex
	symbols   []model.Symbol
	symbolsAt time.Time
}

// NewMarketService creates a new MarketService.
// concurrency bounds the parallel fetches of GetSymbolsWithTimeSeries.
func NewMarketService(
	client psx.Client,
	intraday *pricecache.Cache,
	eod *pricecache.Cache,
	concurrency int,
	log zerolog.Logger,
) *MarketService {
	if concurrency < 1 {
		concurrency = pricecache.DefaultConcurrency
	}
	return &MarketService{
		client:      client,
		intraday:    intraday,
		eod:         eod,
		concurrency: concurrency,
		now:         time.Now,
		log:         log.With().Str("component", "market").Logger(),
	}
}

// SetClock replaces time.Now for chart range filtering and listing reuse.
func (s *MarketService) SetClock(now func() time.Time) {
	s.now = now
}

// GetSymbols returns every listed symbol except bills and bonds.
// The listing is reused for an hour.
func (s *MarketService) GetSymbols(ctx context.Context) ([]model.Symbol, error) {
	s.mu.Lock()
	if s.symbols != nil && s.now().Sub(s.symbolsAt) < symbolListTTL {
		symbols := s.symbols
		s.mu.Unlock()
		return symbols, nil
	}
	s.mu.Unlock()

	symbols, err := s.client.GetSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveSymbols, err)
	}

	s.mu.Lock()
	s.symbols = symbols
	s.symbolsAt = s.now()
	s.mu.Unlock()

	return symbols, nil
}

// GetCompanyName returns the listed name of symbol, or UnknownCompany when
// the symbol is not listed.
func (s *MarketService) GetCompanyName(ctx context.Context, symbol string) (model.CompanyInfo, error) {
	symbol = model.NormalizeSymbol(symbol)

	symbols, err := s.GetSymbols(ctx)
	if err != nil {
		return model.CompanyInfo{}, err
	}

	for _, sym := range symbols {
		if sym.Symbol == symbol && sym.Name != "" {
			return model.CompanyInfo{Symbol: symbol, Name: sym.Name}, nil
		}
	}
	return model.CompanyInfo{Symbol: symbol, Name: UnknownCompany}, nil
}

// GetCompanyReports returns the report postings of symbol, most recent first.
func (s *MarketService) GetCompanyReports(ctx context.Context, symbol string) ([]model.CompanyReport, error) {
	reports, err := s.client.GetCompanyReports(ctx, model.NormalizeSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveReports, err)
	}
	return reports, nil
}

// GetDayData returns today's intraday series of symbol: the cached series
// when fresh, otherwise a realtime fetch. A failed fetch yields an empty series.
func (s *MarketService) GetDayData(ctx context.Context, symbol string) []model.TimeSeriesPoint {
	return s.intraday.GetPrice(ctx, symbol)
}

// GetDaySummary returns the high, low, total volume and last price of
// today's intraday series of symbol.
func (s *MarketService) GetDaySummary(ctx context.Context, symbol string) model.DaySummary {
	symbol = model.NormalizeSymbol(symbol)
	summary := model.DaySummary{Symbol: symbol}

	points := s.intraday.GetPrice(ctx, symbol)
	if len(points) == 0 {
		return summary
	}

	summary.DayHigh = points[0].Price
	summary.DayLow = points[0].Price
	for _, p := range points {
		summary.DayHigh = max(summary.DayHigh, p.Price)
		summary.DayLow = min(summary.DayLow, p.Price)
		summary.Volume += p.Volume
	}
	summary.CurrentPrice = points[len(points)-1].Price
	return summary
}

// GetAllTimeData returns the end-of-day series of symbol over its whole history.
func (s *MarketService) GetAllTimeData(ctx context.Context, symbol string) []model.TimeSeriesPoint {
	return s.eod.GetPrice(ctx, symbol)
}

// GetIndexTimeSeries returns the intraday series of KSE100, KSE30 and KMI30.
// An index that fails to load is returned with an empty series.
func (s *MarketService) GetIndexTimeSeries(ctx context.Context) []model.IndexTimeSeries {
	series := s.intraday.Series(ctx, model.MarketIndices)

	out := make([]model.IndexTimeSeries, 0, len(model.MarketIndices))
	for _, index := range model.MarketIndices {
		points := series[index]
		if points == nil {
			points = []model.TimeSeriesPoint{}
		}
		out = append(out, model.IndexTimeSeries{Symbol: index, TimeSeries: points})
	}
	return out
}

// GetSymbolsWithTimeSeries returns the first limit listed symbols, each with
// its intraday series. Fetches run in parallel, bounded by the configured
// concurrency; a symbol whose series fails to load gets an empty series.
func (s *MarketService) GetSymbolsWithTimeSeries(ctx context.Context, limit int) ([]model.SymbolWithTimeSeries, error) {
	symbols, err := s.GetSymbols(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}

	out := make([]model.SymbolWithTimeSeries, len(symbols))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			points := s.intraday.GetPrice(ctx, sym.Symbol)
			out[i] = model.SymbolWithTimeSeries{SymbolData: sym, TimeSeries: points}
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

// GetChartSeries prepares price data for a chart of symbol over r.
//
// 1D uses the intraday series averaged into 5 minute buckets; every other
// range uses the end-of-day series averaged per day and then trimmed to the
// window. A positive smaPeriod adds a simple moving average aligned with the
// points.
func (s *MarketService) GetChartSeries(ctx context.Context, symbol string, r model.ChartRange, smaPeriod int) (model.ChartSeries, error) {
	if !model.ValidChartRanges[r] {
		return model.ChartSeries{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidRange, r)
	}
	symbol = model.NormalizeSymbol(symbol)

	var points []model.TimeSeriesPoint
	if r == model.Range1D {
		points = bucketSeries(s.GetDayData(ctx, symbol), intradayBucket)
	} else {
		points = bucketSeries(s.GetAllTimeData(ctx, symbol), dailyBucket)
		points = filterByRange(points, r, s.now(), pakistanTime)
	}

	chart := model.ChartSeries{
		Symbol: symbol,
		Range:  r,
		Points: points,
	}
	if smaPeriod > 0 {
		chart.SMA = smaOverlay(points, smaPeriod)
	}
	return chart, nil
}
