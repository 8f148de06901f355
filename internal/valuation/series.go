package valuation

import (
	"iter"
	"slices"
	"time"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// PriceResolver supplies the price used to mark open holdings at a point of
// the running P&L series.
type PriceResolver interface {
	PriceAt(symbol string, date time.Time) (float64, bool)
}

// CurrentPrices marks every point of the series at today's price, whatever
// the date of the point.
type CurrentPrices model.PriceSnapshot

// PriceAt ignores date and returns the snapshot price.
func (c CurrentPrices) PriceAt(symbol string, _ time.Time) (float64, bool) {
	return model.PriceSnapshot(c).Price(symbol)
}

// HistoricalPrices marks each point at the last close on or before its date.
// Each series must be sorted by timestamp ascending.
type HistoricalPrices map[string][]model.TimeSeriesPoint

// PriceAt returns the latest close at or before the end of date's day.
func (h HistoricalPrices) PriceAt(symbol string, date time.Time) (float64, bool) {
	series := h[symbol]
	cutoff := date.AddDate(0, 0, 1).Unix()

	// first index with Timestamp >= cutoff
	i, _ := slices.BinarySearchFunc(series, cutoff, func(p model.TimeSeriesPoint, target int64) int {
		switch {
		case p.Timestamp < target:
			return -1
		case p.Timestamp > target:
			return 1
		}
		return 0
	})
	if i == 0 {
		return 0, false
	}
	return series[i-1].Price, true
}

type holding struct {
	quantity  float64
	totalCost float64
}

// PnLSeq yields one running P&L point per trade in chronological order.
//
// It keeps its own per-symbol holdings: a SELL realizes against the average
// cost of the holding, then rescales the remaining cost to avg*quantity, or
// drops the holding once fully closed. After each trade the open holdings are
// marked with prices and the point is realized plus unrealized P&L.
//
// The sequence is finite and restartable: every range recomputes from the
// start. Dates are truncated to the UTC day and never decrease. The sequence
// ends early at a trade that is neither BUY nor SELL, since no running total
// past it is meaningful; run ValidateLedger first to surface that as an error.
func PnLSeq(trades []model.Trade, prices PriceResolver) iter.Seq[model.PnLPoint] {
	return func(yield func(model.PnLPoint) bool) {
		holdings := make(map[string]*holding)
		var realized float64

		for _, t := range sortedByDate(trades) {
			h := holdings[t.Symbol]
			if h == nil {
				h = &holding{}
				holdings[t.Symbol] = h
			}

			switch t.Type {
			case model.TradeBuy:
				h.quantity += t.Quantity
				h.totalCost += t.Quantity*t.Price + t.Fees
			case model.TradeSell:
				avg := 0.0
				if h.quantity != 0 {
					avg = h.totalCost / h.quantity
				}
				realized += (t.Price-avg)*t.Quantity - t.Fees
				h.quantity -= t.Quantity
				if h.quantity > 0 {
					h.totalCost = avg * h.quantity
				} else {
					delete(holdings, t.Symbol)
				}
			default:
				return
			}

			day := truncateDay(t.TradeDate)
			point := model.PnLPoint{
				Date: day,
				PnL:  realized + unrealized(holdings, prices, day),
			}
			if !yield(point) {
				return
			}
		}
	}
}

// PnLSeries collects PnLSeq into a slice with one point per trade. It fails
// like Aggregate on a trade that is neither BUY nor SELL.
func PnLSeries(trades []model.Trade, prices PriceResolver) ([]model.PnLPoint, error) {
	if err := ValidateLedger(trades); err != nil {
		return nil, err
	}
	points := make([]model.PnLPoint, 0, len(trades))
	for p := range PnLSeq(trades, prices) {
		points = append(points, p)
	}
	return points, nil
}

func unrealized(holdings map[string]*holding, prices PriceResolver, day time.Time) float64 {
	var total float64
	for _, symbol := range sortedKeys(holdings) {
		h := holdings[symbol]
		price, ok := prices.PriceAt(symbol, day)
		if !ok {
			continue
		}
		total += price*h.quantity - h.totalCost
	}
	return total
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
