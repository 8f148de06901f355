package model

import (
	"fmt"
	"strings"
	"time"
)

// TradeType is the side of a trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// ParseTradeType normalizes s and returns the matching TradeType.
func ParseTradeType(s string) (TradeType, error) {
	switch t := TradeType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TradeBuy, TradeSell:
		return t, nil
	default:
		return "", fmt.Errorf("invalid trade type: %q", s)
	}
}

// Valid reports whether t is BUY or SELL.
func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// Trade is a single executed BUY or SELL of a PSX symbol.
// Quantity and Price are positive, Fees is a flat non-negative cost.
type Trade struct {
	ID          string    `json:"id"`
	PortfolioID string    `json:"portfolioId"`
	Symbol      string    `json:"symbol"`
	Type        TradeType `json:"type"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	Fees        float64   `json:"fees"`
	TradeDate   time.Time `json:"tradeDate"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
