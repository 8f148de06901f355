package model

import "time"

// Portfolio represents a portfolio from the database
type Portfolio struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PortfolioFilter for querying portfolios
type PortfolioFilter struct {
	UserID string // empty returns every portfolio
}

// PortfolioWithTrades is a portfolio together with its trade history,
// newest trade first.
type PortfolioWithTrades struct {
	Portfolio
	Trades []Trade `json:"trades"`
}

// NetWorth is the signed sum of trade values minus fees for a portfolio.
type NetWorth struct {
	PortfolioID string  `json:"portfolioId"`
	NetWorth    float64 `json:"netWorth"`
}
