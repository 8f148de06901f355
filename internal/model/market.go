package model

import "time"

// Symbol is a listed PSX instrument as returned by the data portal.
type Symbol struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	SectorName string `json:"sectorName"`
	IsETF      bool   `json:"isETF"`
	IsDebt     bool   `json:"isDebt"`
}

// TimeSeriesPoint is one tick or end-of-day close.
type TimeSeriesPoint struct {
	Timestamp int64   `json:"timestamp"` // Unix seconds
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// Time returns the point timestamp as UTC time.
func (p TimeSeriesPoint) Time() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// SymbolWithTimeSeries pairs a symbol with its intraday series.
type SymbolWithTimeSeries struct {
	SymbolData Symbol            `json:"symbolData"`
	TimeSeries []TimeSeriesPoint `json:"timeSeries"`
}

// IndexTimeSeries is the intraday series of a market index such as KSE100.
type IndexTimeSeries struct {
	Symbol     string            `json:"symbol"`
	TimeSeries []TimeSeriesPoint `json:"timeSeries"`
}

// CompanyReport is a financial report posting for a listed company.
type CompanyReport struct {
	ReportType  string `json:"reportType"`  // Annual or Quarterly
	PeriodEnded string `json:"periodEnded"` // YYYY-MM-DD
	PostingDate string `json:"postingDate"` // YYYY-MM-DD
}

// CompanyInfo is the display name of a symbol.
type CompanyInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ChartSeries is price data prepared for a chart, bucketed and filtered by range.
type ChartSeries struct {
	Symbol string            `json:"symbol"`
	Range  ChartRange        `json:"range"`
	Points []TimeSeriesPoint `json:"points"`
	SMA    []*float64        `json:"sma,omitempty"` // aligned with Points, nil until the window fills
}

// DaySummary condenses today's intraday series of a symbol. Every field is 0
// when the series is empty.
type DaySummary struct {
	Symbol       string  `json:"symbol"`
	DayHigh      float64 `json:"dayHigh"`
	DayLow       float64 `json:"dayLow"`
	Volume       float64 `json:"volume"`
	CurrentPrice float64 `json:"currentPrice"`
}

// LastPrice is the most recent known price of a symbol.
type LastPrice struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"asOf"`
}

// ChartRange selects the window and granularity of a chart series.
type ChartRange string

const (
	Range1D  ChartRange = "1D" // intraday, 5 minute buckets
	Range1W  ChartRange = "1W"
	Range1M  ChartRange = "1M"
	Range6M  ChartRange = "6M"
	RangeYTD ChartRange = "YTD"
	Range1Y  ChartRange = "1Y"
	Range5Y  ChartRange = "5Y"
	RangeAll ChartRange = "All"
)

// ValidChartRanges contains the accepted chart ranges.
var ValidChartRanges = map[ChartRange]bool{
	Range1D: true, Range1W: true, Range1M: true, Range6M: true,
	RangeYTD: true, Range1Y: true, Range5Y: true, RangeAll: true,
}

// Market indices served by the index endpoint.
var MarketIndices = []string{"KSE100", "KSE30", "KMI30"}
