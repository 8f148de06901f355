package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
	"github.com/ndewijer/psx-portfolio-tracker/internal/testutil"
)

var day = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// TestPortfolioRepository tests ordering and round-tripping of portfolios.
func TestPortfolioRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("lists portfolios by name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		testutil.CreatePortfolio(t, db, "Zeta")
		testutil.CreatePortfolio(t, db, "Alpha")

		portfolios, err := repo.GetPortfolios(ctx, model.PortfolioFilter{})
		require.NoError(t, err)
		require.Len(t, portfolios, 2)
		assert.Equal(t, "Alpha", portfolios[0].Name)
		assert.Equal(t, "Zeta", portfolios[1].Name)
	})

	t.Run("timestamps survive a round trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)
		p := testutil.CreatePortfolio(t, db, "Clock")

		got, err := repo.GetPortfolioOnID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(p.CreatedAt))
		assert.True(t, got.UpdatedAt.Equal(p.UpdatedAt))
	})

	t.Run("missing portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		_, err := repo.GetPortfolioOnID(ctx, testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)

		p := model.Portfolio{ID: testutil.MakeID(), Name: "ghost"}
		assert.ErrorIs(t, repo.UpdatePortfolio(ctx, &p), apperrors.ErrPortfolioNotFound)
	})
}

// TestTradeRepository tests ledger ordering and lookups.
//
// WHY: Average cost accounting depends on replaying the ledger in execution
// order, so ties on trade date must fall back to insertion order.
func TestTradeRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("ledger is ascending and stable on equal dates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTradeRepository(db)
		p := testutil.CreatePortfolio(t, db, "Ledger")

		late := testutil.NewTrade(p.ID).WithDate(day.AddDate(0, 0, 2)).Build(t, db)
		first := testutil.NewTrade(p.ID).WithDate(day).Build(t, db)
		second := testutil.NewTrade(p.ID).Sell(1, 100).WithDate(day).Build(t, db)

		ledger, err := repo.GetLedger(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, ledger, 3)
		assert.Equal(t, first.ID, ledger[0].ID)
		assert.Equal(t, second.ID, ledger[1].ID)
		assert.Equal(t, late.ID, ledger[2].ID)

		history, err := repo.GetTradesPerPortfolio(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, late.ID, history[0].ID)
	})

	t.Run("sub-second trade times keep their order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTradeRepository(db)
		p := testutil.CreatePortfolio(t, db, "Precise")

		later := testutil.NewTrade(p.ID).WithDate(day.Add(10 * time.Second)).Build(t, db)
		earlier := testutil.NewTrade(p.ID).WithDate(day.Add(9*time.Second + 500*time.Millisecond)).Build(t, db)

		ledger, err := repo.GetLedger(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, ledger, 2)
		assert.Equal(t, earlier.ID, ledger[0].ID)
		assert.Equal(t, later.ID, ledger[1].ID)
		assert.True(t, ledger[0].TradeDate.Equal(earlier.TradeDate))
	})

	t.Run("traded symbols are distinct and sorted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTradeRepository(db)
		a := testutil.CreatePortfolio(t, db, "A")
		b := testutil.CreatePortfolio(t, db, "B")
		testutil.NewTrade(a.ID).WithSymbol("OGDC").Build(t, db)
		testutil.NewTrade(b.ID).WithSymbol("HBL").Build(t, db)
		testutil.NewTrade(b.ID).WithSymbol("OGDC").Build(t, db)

		symbols, err := repo.GetTradedSymbols(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"HBL", "OGDC"}, symbols)
	})

	t.Run("database rejects invalid trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTradeRepository(db)
		p := testutil.CreatePortfolio(t, db, "Checks")

		bad := model.Trade{
			ID: testutil.MakeID(), PortfolioID: p.ID, Symbol: "OGDC", Type: model.TradeBuy,
			Quantity: -1, Price: 10, TradeDate: day,
		}
		assert.Error(t, repo.InsertTrade(ctx, &bad))

		orphan := model.Trade{
			ID: testutil.MakeID(), PortfolioID: testutil.MakeID(), Symbol: "OGDC", Type: model.TradeBuy,
			Quantity: 1, Price: 10, TradeDate: day,
		}
		assert.Error(t, repo.InsertTrade(ctx, &orphan))
	})

	t.Run("missing trade", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTradeRepository(db)

		_, err := repo.GetTrade(ctx, testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
		assert.ErrorIs(t, repo.DeleteTrade(ctx, testutil.MakeID()), apperrors.ErrTradeNotFound)
	})
}

// TestPriceRepository tests the last known price upsert.
//
// WHY: Refreshes can finish out of order; an older quote must never replace
// a newer one.
func TestPriceRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewPriceRepository(db)

	_, err := repo.GetLastPrice(ctx, "OGDC")
	assert.ErrorIs(t, err, apperrors.ErrPriceNotFound)

	require.NoError(t, repo.SaveLastPrice(ctx, model.LastPrice{Symbol: "ogdc", Price: 100, AsOf: day.Add(time.Hour)}))
	require.NoError(t, repo.SaveLastPrice(ctx, model.LastPrice{Symbol: "OGDC", Price: 90, AsOf: day}))

	last, err := repo.GetLastPrice(ctx, "ogdc")
	require.NoError(t, err)
	assert.Equal(t, "OGDC", last.Symbol)
	assert.InDelta(t, 100, last.Price, 1e-9)
	assert.True(t, last.AsOf.Equal(day.Add(time.Hour)))

	require.NoError(t, repo.SaveLastPrice(ctx, model.LastPrice{Symbol: "OGDC", Price: 110, AsOf: day.Add(2 * time.Hour)}))
	last, err = repo.GetLastPrice(ctx, "OGDC")
	require.NoError(t, err)
	assert.InDelta(t, 110, last.Price, 1e-9)
	testutil.AssertRowCount(t, db, "last_price", 1)
}
