package valuation

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

func mustPnL(t *testing.T, trades []model.Trade, prices PriceResolver) []model.PnLPoint {
	t.Helper()
	points, err := PnLSeries(trades, prices)
	require.NoError(t, err)
	return points
}

func TestPnLSeries(t *testing.T) {
	t.Run("one point per trade with realized and unrealized parts", func(t *testing.T) {
		trades := []model.Trade{
			trade("1", "HBL", model.TradeBuy, 10, 100, 0, 0),
			trade("2", "HBL", model.TradeSell, 5, 120, 2, 1),
		}
		prices := CurrentPrices(snapshot(map[string]float64{"HBL": 110}))

		points := mustPnL(t, trades, prices)
		require.Len(t, points, 2)

		// after the buy: 10*110 - 1000
		assert.InDelta(t, 100, points[0].PnL, 1e-9)
		// after the sell: realized 98, remaining 5 at avg 100 marked at 110
		assert.InDelta(t, 98+50, points[1].PnL, 1e-9)
		assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), points[0].Date)
		assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), points[1].Date)
	})

	t.Run("closing a position leaves only realized profit", func(t *testing.T) {
		trades := []model.Trade{
			trade("1", "OGDC", model.TradeBuy, 10, 100, 10, 0),
			trade("2", "OGDC", model.TradeSell, 10, 150, 5, 1),
		}
		points := mustPnL(t, trades, CurrentPrices(snapshot(map[string]float64{"OGDC": 1000})))
		require.Len(t, points, 2)
		// avg cost 101, realized (150-101)*10-5
		assert.InDelta(t, 485, points[1].PnL, 1e-9)
	})

	t.Run("unknown prices contribute nothing", func(t *testing.T) {
		trades := []model.Trade{
			trade("1", "OGDC", model.TradeBuy, 10, 100, 0, 0),
		}
		points := mustPnL(t, trades, CurrentPrices(snapshot(nil)))
		require.Len(t, points, 1)
		assert.Zero(t, points[0].PnL)
	})

	t.Run("sell with nothing held realizes against zero cost", func(t *testing.T) {
		trades := []model.Trade{
			trade("1", "PSO", model.TradeSell, 2, 40, 1, 0),
			trade("2", "PSO", model.TradeBuy, 1, 30, 0, 1),
		}
		points := mustPnL(t, trades, CurrentPrices(snapshot(map[string]float64{"PSO": 35})))
		require.Len(t, points, 2)
		assert.InDelta(t, 79, points[0].PnL, 1e-9)
		assert.InDelta(t, 79+5, points[1].PnL, 1e-9)
	})

	t.Run("length and dates follow the sorted ledger", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 8))
		trades := randomTrades(rng, 60, true)
		rng.Shuffle(len(trades), func(a, b int) { trades[a], trades[b] = trades[b], trades[a] })

		points := mustPnL(t, trades, CurrentPrices(snapshot(map[string]float64{"OGDC": 50})))
		require.Len(t, points, len(trades))
		for i := 1; i < len(points); i++ {
			assert.False(t, points[i].Date.Before(points[i-1].Date), "dates must not decrease at %d", i)
		}
	})

	t.Run("same-day trades share a date", func(t *testing.T) {
		a := trade("1", "HBL", model.TradeBuy, 1, 100, 0, 0)
		b := trade("2", "HBL", model.TradeBuy, 1, 100, 0, 0)
		b.TradeDate = b.TradeDate.Add(3 * time.Hour)

		points := mustPnL(t, []model.Trade{a, b}, CurrentPrices(snapshot(nil)))
		require.Len(t, points, 2)
		assert.Equal(t, points[0].Date, points[1].Date)
	})

	t.Run("empty ledger yields no points", func(t *testing.T) {
		assert.Empty(t, mustPnL(t, nil, CurrentPrices(snapshot(nil))))
	})

	t.Run("unknown trade type fails like Aggregate", func(t *testing.T) {
		trades := []model.Trade{
			trade("1", "HBL", model.TradeBuy, 10, 100, 0, 0),
			trade("2", "HBL", model.TradeType("HOLD"), 5, 120, 0, 1),
		}
		prices := CurrentPrices(snapshot(map[string]float64{"HBL": 110}))

		_, err := PnLSeries(trades, prices)
		require.ErrorIs(t, err, ErrUnknownTradeType)

		_, aggErr := New(OversellAllow).Aggregate(trades)
		require.ErrorIs(t, aggErr, ErrUnknownTradeType)

		// the raw sequence stops before the bad trade
		var points []model.PnLPoint
		for p := range PnLSeq(trades, prices) {
			points = append(points, p)
		}
		assert.Len(t, points, 1)
	})
}

func TestPnLSeq_Restartable(t *testing.T) {
	trades := []model.Trade{
		trade("1", "HBL", model.TradeBuy, 10, 100, 0, 0),
		trade("2", "HBL", model.TradeSell, 5, 120, 2, 1),
		trade("3", "OGDC", model.TradeBuy, 3, 90, 1, 2),
	}
	seq := PnLSeq(trades, CurrentPrices(snapshot(map[string]float64{"HBL": 110, "OGDC": 95})))

	var first, second []model.PnLPoint
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	assert.Equal(t, first, second)

	// stopping early must not panic or leak state into the next run
	for range seq {
		break
	}
	var third []model.PnLPoint
	for p := range seq {
		third = append(third, p)
	}
	assert.Equal(t, first, third)
}

func TestHistoricalPrices(t *testing.T) {
	at := func(y int, m time.Month, d, h int) int64 {
		return time.Date(y, m, d, h, 0, 0, 0, time.UTC).Unix()
	}
	prices := HistoricalPrices{
		"HBL": {
			{Timestamp: at(2025, 1, 3, 9), Price: 90},
			{Timestamp: at(2025, 1, 6, 9), Price: 100},
			{Timestamp: at(2025, 1, 8, 9), Price: 130},
		},
	}

	t.Run("uses the close on the same day", func(t *testing.T) {
		p, ok := prices.PriceAt("HBL", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, 100.0, p)
	})

	t.Run("falls back to the previous close", func(t *testing.T) {
		p, ok := prices.PriceAt("HBL", time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.Equal(t, 100.0, p)
	})

	t.Run("unknown before the first close", func(t *testing.T) {
		_, ok := prices.PriceAt("HBL", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)
		_, ok = prices.PriceAt("OGDC", time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)
	})

	t.Run("marks each point at its own date", func(t *testing.T) {
		trades := []model.Trade{
			trade("1", "HBL", model.TradeBuy, 10, 100, 0, 0), // 2025-01-06
			trade("2", "HBL", model.TradeBuy, 10, 120, 0, 2), // 2025-01-08
		}
		points := mustPnL(t, trades, prices)
		require.Len(t, points, 2)
		assert.InDelta(t, 0, points[0].PnL, 1e-9)
		assert.InDelta(t, 20*130-2200, points[1].PnL, 1e-9)
	})
}
