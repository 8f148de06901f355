package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithUserID("user-1").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	UserID      string
	Name        string
	Description string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// WithUserID sets the owner.
func (b *PortfolioBuilder) WithUserID(userID string) *PortfolioBuilder {
	b.UserID = userID
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	now := time.Now().UTC()
	p := model.Portfolio{
		ID:          b.ID,
		UserID:      b.UserID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repository.NewPortfolioRepository(db).InsertPortfolio(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return p
}

// Convenience functions

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := range count {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// TradeBuilder provides a fluent interface for creating test trades.
//
// Example usage:
//
//	trade := testutil.NewTrade(portfolio.ID).
//	    WithSymbol("OGDC").
//	    Sell(5, 120).
//	    Build(t, db)
type TradeBuilder struct {
	ID          string
	PortfolioID string
	Symbol      string
	Type        model.TradeType
	Quantity    float64
	Price       float64
	Fees        float64
	TradeDate   time.Time
}

// NewTrade creates a TradeBuilder for a BUY of 10 shares at 100.
func NewTrade(portfolioID string) *TradeBuilder {
	return &TradeBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      "OGDC",
		Type:        model.TradeBuy,
		Quantity:    10,
		Price:       100,
		TradeDate:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	}
}

// WithID sets a custom ID.
func (b *TradeBuilder) WithID(id string) *TradeBuilder {
	b.ID = id
	return b
}

// WithSymbol sets the traded symbol.
func (b *TradeBuilder) WithSymbol(symbol string) *TradeBuilder {
	b.Symbol = symbol
	return b
}

// Buy makes the trade a BUY of quantity at price.
func (b *TradeBuilder) Buy(quantity, price float64) *TradeBuilder {
	b.Type = model.TradeBuy
	b.Quantity = quantity
	b.Price = price
	return b
}

// Sell makes the trade a SELL of quantity at price.
func (b *TradeBuilder) Sell(quantity, price float64) *TradeBuilder {
	b.Type = model.TradeSell
	b.Quantity = quantity
	b.Price = price
	return b
}

// WithFees sets the fees.
func (b *TradeBuilder) WithFees(fees float64) *TradeBuilder {
	b.Fees = fees
	return b
}

// WithDate sets the execution time.
func (b *TradeBuilder) WithDate(date time.Time) *TradeBuilder {
	b.TradeDate = date
	return b
}

// Build creates the trade in the database and returns it.
func (b *TradeBuilder) Build(t *testing.T, db *sql.DB) model.Trade {
	t.Helper()

	now := time.Now().UTC()
	trade := model.Trade{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Symbol:      b.Symbol,
		Type:        b.Type,
		Quantity:    b.Quantity,
		Price:       b.Price,
		Fees:        b.Fees,
		TradeDate:   b.TradeDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repository.NewTradeRepository(db).InsertTrade(context.Background(), &trade); err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}
	return trade
}

// CreateLastPrice stores a last known price for symbol.
func CreateLastPrice(t *testing.T, db *sql.DB, symbol string, price float64, asOf time.Time) model.LastPrice {
	t.Helper()

	lp := model.LastPrice{Symbol: symbol, Price: price, AsOf: asOf}
	if err := repository.NewPriceRepository(db).SaveLastPrice(context.Background(), lp); err != nil {
		t.Fatalf("Failed to create last price: %v", err)
	}
	return lp
}
