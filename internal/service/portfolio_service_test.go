package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/testutil"
)

var tradingDay = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// TestPortfolioService_GetPortfolios tests listing and owner filtering.
//
// WHY: Portfolio retrieval is a fundamental operation. The owner filter must
// only narrow the result, and an empty database must yield an empty list.
func TestPortfolioService_GetPortfolios(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty slice when no portfolios exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		portfolios, err := svc.GetPortfolios(ctx, model.PortfolioFilter{})
		require.NoError(t, err)
		assert.Empty(t, portfolios)
	})

	t.Run("filters by owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		mine := testutil.NewPortfolio().WithUserID("user-1").Build(t, db)
		testutil.NewPortfolio().WithUserID("user-2").Build(t, db)
		testutil.NewPortfolio().Build(t, db)

		all, err := svc.GetPortfolios(ctx, model.PortfolioFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		filtered, err := svc.GetPortfolios(ctx, model.PortfolioFilter{UserID: "user-1"})
		require.NoError(t, err)
		require.Len(t, filtered, 1)
		assert.Equal(t, mine.ID, filtered[0].ID)
	})

	t.Run("handles closed database connection", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())
		db.Close()

		portfolios, err := svc.GetPortfolios(ctx, model.PortfolioFilter{})
		assert.Error(t, err)
		assert.Nil(t, portfolios)
	})
}

// TestPortfolioService_CRUD tests create, read, update and delete.
//
// WHY: Updates are partial, so absent fields must survive, and deleting a
// portfolio must take its trades with it.
func TestPortfolioService_CRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("create then get returns the portfolio with its trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		created, err := svc.CreatePortfolio(ctx, request.CreatePortfolioRequest{
			Name:        "Dividend stocks",
			Description: "Long term",
			UserID:      "user-1",
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		testutil.NewTrade(created.ID).WithDate(tradingDay).Build(t, db)
		testutil.NewTrade(created.ID).WithSymbol("HBL").WithDate(tradingDay.AddDate(0, 0, 1)).Build(t, db)

		got, err := svc.GetPortfolio(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dividend stocks", got.Name)
		assert.Equal(t, "user-1", got.UserID)
		require.Len(t, got.Trades, 2)
		assert.Equal(t, "HBL", got.Trades[0].Symbol, "newest trade first")
	})

	t.Run("get of unknown portfolio returns not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		_, err := svc.GetPortfolio(ctx, testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)
	})

	t.Run("update only changes provided fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())
		p := testutil.NewPortfolio().WithDescription("keep me").Build(t, db)

		name := "Renamed"
		updated, err := svc.UpdatePortfolio(ctx, p.ID, request.UpdatePortfolioRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "keep me", updated.Description)

		got, err := svc.GetPortfolio(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("update of unknown portfolio returns not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		name := "x"
		_, err := svc.UpdatePortfolio(ctx, testutil.MakeID(), request.UpdatePortfolioRequest{Name: &name})
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)
	})

	t.Run("delete cascades to trades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())
		p := testutil.CreatePortfolio(t, db, "Short lived")
		testutil.NewTrade(p.ID).Build(t, db)

		require.NoError(t, svc.DeletePortfolio(ctx, p.ID))
		testutil.AssertRowCount(t, db, "portfolio", 0)
		testutil.AssertRowCount(t, db, "trade", 0)

		assert.ErrorIs(t, svc.DeletePortfolio(ctx, p.ID), apperrors.ErrPortfolioNotFound)
	})
}

// TestPortfolioService_GetPortfolioValuation tests valuation against the price cache.
//
// WHY: Valuation is derived from the ledger plus whatever price is available.
// A failed fetch must fall back to the last known price and flag it stale; a
// symbol with no price at all must not fail the request.
func TestPortfolioService_GetPortfolioValuation(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 1, 6, 4, 30, 0, 0, time.UTC)

	t.Run("values positions at the latest intraday price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockPSXClient().
			WithIntraday("OGDC", testutil.MakeSeries(start, time.Minute, 11, 100)) // last 110
		svc := testutil.NewTestPortfolioService(t, db, client)

		p := testutil.CreatePortfolio(t, db, "Energy")
		testutil.NewTrade(p.ID).Buy(10, 100).Build(t, db)

		v, err := svc.GetPortfolioValuation(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, v.PortfolioID)
		assert.False(t, v.PriceLoading)
		require.Len(t, v.Positions, 1)

		pos := v.Positions[0]
		require.NotNil(t, pos.CurrentPrice)
		assert.InDelta(t, 110, *pos.CurrentPrice, 1e-9)
		assert.InDelta(t, 1100, pos.MarketValue, 1e-9)
		assert.InDelta(t, 100, pos.UnrealizedProfit, 1e-9)
		assert.InDelta(t, 100, v.TotalPnL, 1e-9)
		assert.InDelta(t, 0.1, v.TotalPnLPercent, 1e-9)

		// the fetched price is remembered as last known
		testutil.AssertRowCount(t, db, "last_price", 1)
	})

	t.Run("falls back to the last known price and marks it stale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		p := testutil.CreatePortfolio(t, db, "Banks")
		testutil.NewTrade(p.ID).WithSymbol("HBL").Buy(10, 100).Build(t, db)
		testutil.CreateLastPrice(t, db, "HBL", 95, start)

		v, err := svc.GetPortfolioValuation(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, v.Positions, 1)
		require.NotNil(t, v.Positions[0].CurrentPrice)
		assert.InDelta(t, 95, *v.Positions[0].CurrentPrice, 1e-9)
		assert.True(t, v.Positions[0].PriceStale)
		assert.InDelta(t, -50, v.TotalPnL, 1e-9)
	})

	t.Run("symbol without any price is reported loading", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		p := testutil.CreatePortfolio(t, db, "Unknown")
		testutil.NewTrade(p.ID).WithSymbol("PSO").Buy(1, 100).Build(t, db)
		testutil.NewTrade(p.ID).WithSymbol("PSO").Sell(1, 120).WithDate(tradingDay.AddDate(0, 0, 1)).Build(t, db)

		v, err := svc.GetPortfolioValuation(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, v.PriceLoading)
		require.Len(t, v.Positions, 1)
		assert.Nil(t, v.Positions[0].CurrentPrice)
		assert.True(t, v.Positions[0].PriceLoading)
		assert.InDelta(t, 20, v.Positions[0].RealizedProfit, 1e-9)
	})

	t.Run("unknown portfolio returns not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

		_, err := svc.GetPortfolioValuation(ctx, testutil.MakeID())
		assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)
	})
}

// TestPortfolioService_GetPortfolioPnLHistory tests both pricing modes.
//
// WHY: Current pricing marks every point at today's price, historical pricing
// at the close of the point's day. Mixing them up silently changes the curve.
func TestPortfolioService_GetPortfolioPnLHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("current pricing marks every point at today's price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockPSXClient().
			WithIntraday("OGDC", testutil.MakeSeries(tradingDay.AddDate(0, 1, 0), time.Minute, 1, 150))
		svc := testutil.NewTestPortfolioService(t, db, client)

		p := testutil.CreatePortfolio(t, db, "Current")
		testutil.NewTrade(p.ID).Buy(10, 100).WithDate(tradingDay).Build(t, db)
		testutil.NewTrade(p.ID).Sell(5, 110).WithDate(tradingDay.AddDate(0, 0, 1)).Build(t, db)

		history, err := svc.GetPortfolioPnLHistory(ctx, p.ID, model.PricingCurrent)
		require.NoError(t, err)
		assert.Equal(t, model.PricingCurrent, history.Pricing)
		require.Len(t, history.Points, 2)

		// 10 held at 150 against a cost of 1000
		assert.InDelta(t, 500, history.Points[0].PnL, 1e-9)
		// realized 50, 5 left at avg 100 marked at 150
		assert.InDelta(t, 50+250, history.Points[1].PnL, 1e-9)
	})

	t.Run("historical pricing marks each point at its own close", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		client := testutil.NewMockPSXClient().
			WithEOD("OGDC", []model.TimeSeriesPoint{
				{Timestamp: tradingDay.Add(10 * time.Hour).Unix(), Price: 105},
				{Timestamp: tradingDay.AddDate(0, 0, 1).Add(10 * time.Hour).Unix(), Price: 120},
			})
		svc := testutil.NewTestPortfolioService(t, db, client)

		p := testutil.CreatePortfolio(t, db, "Historical")
		testutil.NewTrade(p.ID).Buy(10, 100).WithDate(tradingDay).Build(t, db)
		testutil.NewTrade(p.ID).Sell(5, 110).WithDate(tradingDay.AddDate(0, 0, 1)).Build(t, db)

		history, err := svc.GetPortfolioPnLHistory(ctx, p.ID, model.PricingHistorical)
		require.NoError(t, err)
		assert.Equal(t, model.PricingHistorical, history.Pricing)
		require.Len(t, history.Points, 2)
		assert.InDelta(t, 50, history.Points[0].PnL, 1e-9)
		assert.InDelta(t, 50+100, history.Points[1].PnL, 1e-9)
	})

	t.Run("empty pricing defaults to current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())
		p := testutil.CreatePortfolio(t, db, "Empty")

		history, err := svc.GetPortfolioPnLHistory(ctx, p.ID, "")
		require.NoError(t, err)
		assert.Equal(t, model.PricingCurrent, history.Pricing)
		assert.Empty(t, history.Points)
	})

	t.Run("unknown pricing mode fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())
		p := testutil.CreatePortfolio(t, db, "Bad mode")

		_, err := svc.GetPortfolioPnLHistory(ctx, p.ID, model.PricingMode("weekly"))
		assert.ErrorIs(t, err, apperrors.ErrFailedToGetPnLHistory)
	})
}

// TestPortfolioService_GetNetWorth tests the signed trade value.
func TestPortfolioService_GetNetWorth(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockPSXClient())

	p := testutil.CreatePortfolio(t, db, "Net worth")
	testutil.NewTrade(p.ID).Buy(10, 100).WithFees(5).Build(t, db)
	testutil.NewTrade(p.ID).Sell(4, 120).WithFees(2).WithDate(tradingDay.AddDate(0, 0, 1)).Build(t, db)

	nw, err := svc.GetNetWorth(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, nw.PortfolioID)
	// (1000 - 5) + (-480 - 2)
	assert.InDelta(t, 513, nw.NetWorth, 1e-9)

	_, err = svc.GetNetWorth(ctx, testutil.MakeID())
	assert.ErrorIs(t, err, apperrors.ErrPortfolioNotFound)
}
