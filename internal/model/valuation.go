package model

import "time"

// PositionSummary is the folded state of all trades of one symbol.
// It is derived on every request and never persisted.
type PositionSummary struct {
	Symbol           string  `json:"symbol"`
	NetQuantity      float64 `json:"netQuantity"`      // Signed running total, positive when long
	CostBasis        float64 `json:"costBasis"`        // Buy cost plus fees minus net sale proceeds
	AvgBuyPrice      float64 `json:"avgBuyPrice"`      // Cost-weighted average over BUY fills only
	RealizedProfit   float64 `json:"realizedProfit"`   // Profit locked in by SELL fills
	TotalBuyCost     float64 `json:"totalBuyCost"`     // Sum of quantity*price+fees over BUY fills
	TotalBuyQuantity float64 `json:"totalBuyQuantity"` // Sum of quantity over BUY fills
}

// PriceSnapshot is the set of current prices used to value positions.
// A symbol missing from Prices has an unknown price.
type PriceSnapshot struct {
	Prices  map[string]float64 `json:"prices"`
	Stale   map[string]bool    `json:"stale,omitempty"` // price came from a fallback tier
	Loading bool               `json:"loading"`         // at least one requested symbol has no price yet
	AsOf    time.Time          `json:"asOf"`
}

// Price returns the price of symbol and whether it is known.
func (s PriceSnapshot) Price(symbol string) (float64, bool) {
	p, ok := s.Prices[symbol]
	return p, ok
}

// PositionValuation is a position combined with its current market price.
type PositionValuation struct {
	PositionSummary
	CurrentPrice     *float64 `json:"currentPrice"`
	MarketValue      float64  `json:"marketValue"`
	UnrealizedProfit float64  `json:"unrealizedProfit"`
	TotalProfit      float64  `json:"totalProfit"`
	PercentProfit    float64  `json:"percentProfit"`
	PriceStale       bool     `json:"priceStale"`
	PriceLoading     bool     `json:"priceLoading"`
}

// PortfolioValuation is the valuation of every position of a portfolio.
// Positions are ordered by symbol.
type PortfolioValuation struct {
	PortfolioID     string              `json:"portfolioId,omitempty"`
	Positions       []PositionValuation `json:"positions"`
	TotalCost       float64             `json:"totalCost"`
	TotalPnL        float64             `json:"totalPnL"`
	TotalPnLPercent float64             `json:"totalPnLPercent"`
	PriceLoading    bool                `json:"priceLoading"`
	PricesAsOf      time.Time           `json:"pricesAsOf"`
}

// PnLPoint is one point of the running profit and loss series.
type PnLPoint struct {
	Date time.Time `json:"date"` // Trade day at UTC midnight
	PnL  float64   `json:"pnl"`  // Realized plus unrealized
}

// PnLHistory is the running profit and loss of a portfolio.
type PnLHistory struct {
	PortfolioID string      `json:"portfolioId"`
	Pricing     PricingMode `json:"pricing"`
	Points      []PnLPoint  `json:"points"`
}

// PricingMode selects how the P&L history marks open holdings.
type PricingMode string

const (
	// PricingCurrent marks every point at today's price.
	PricingCurrent PricingMode = "current"
	// PricingHistorical marks every point at the close on or before its date.
	PricingHistorical PricingMode = "historical"
)
