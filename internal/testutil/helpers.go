package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/psx-portfolio-tracker/internal/logging"
	"github.com/ndewijer/psx-portfolio-tracker/internal/pricecache"
	"github.com/ndewijer/psx-portfolio-tracker/internal/psx"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
	"github.com/ndewijer/psx-portfolio-tracker/internal/service"
	"github.com/ndewijer/psx-portfolio-tracker/internal/valuation"
)

// NewTestCaches returns an intraday cache backed by the last_price table and
// an end-of-day cache, both fetching from client.
func NewTestCaches(t *testing.T, db *sql.DB, client psx.Client) (intraday, eod *pricecache.Cache) {
	t.Helper()

	intraday = pricecache.New(
		pricecache.FetcherFunc(client.GetIntraday),
		pricecache.WithTTL(time.Minute),
		pricecache.WithStore(repository.NewPriceRepository(db)),
		pricecache.WithLogger(logging.Nop()),
	)
	eod = pricecache.New(
		pricecache.FetcherFunc(client.GetEOD),
		pricecache.WithTTL(time.Hour),
		pricecache.WithLogger(logging.Nop()),
	)
	return intraday, eod
}

// NewTestPortfolioService creates a PortfolioService pricing from client
// under the allow oversell policy.
func NewTestPortfolioService(t *testing.T, db *sql.DB, client psx.Client) *service.PortfolioService {
	t.Helper()

	intraday, eod := NewTestCaches(t, db, client)
	return service.NewPortfolioService(
		repository.NewPortfolioRepository(db),
		repository.NewTradeRepository(db),
		valuation.New(valuation.OversellAllow),
		intraday,
		eod,
		logging.Nop(),
	)
}

// NewTestTradeService creates a TradeService under policy.
func NewTestTradeService(t *testing.T, db *sql.DB, policy valuation.OversellPolicy) *service.TradeService {
	t.Helper()

	return service.NewTradeService(
		db,
		repository.NewTradeRepository(db),
		repository.NewPortfolioRepository(db),
		valuation.New(policy),
	)
}

// NewTestMarketService creates a MarketService on top of client.
func NewTestMarketService(t *testing.T, db *sql.DB, client psx.Client) *service.MarketService {
	t.Helper()

	intraday, eod := NewTestCaches(t, db, client)
	return service.NewMarketService(client, intraday, eod, 2, logging.Nop())
}

// NewTestSystemService creates a SystemService with no features enabled.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db, map[string]bool{})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("OGDC")
//	// Returns: "OGDC1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
