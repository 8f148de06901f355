// Package valuation computes positions, profit and loss from a trade ledger.
//
// Everything here is a pure function of its inputs: trades and a price
// snapshot go in, derived figures come out. Nothing is cached between calls,
// so recomputing over an unchanged ledger yields identical results.
//
// Average cost accounting depends on trade order. Every entry point sorts a
// copy of the trades by TradeDate (stable, so same-instant trades keep their
// input order) before folding them.
package valuation

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// OversellPolicy decides what happens when a SELL exceeds the held quantity.
type OversellPolicy int

const (
	// OversellAllow accepts the sell and lets the net quantity go negative.
	OversellAllow OversellPolicy = iota
	// OversellReject fails aggregation with ErrOversell.
	OversellReject
)

// ParseOversellPolicy maps "allow" and "reject" to a policy.
func ParseOversellPolicy(s string) (OversellPolicy, error) {
	switch s {
	case "", "allow":
		return OversellAllow, nil
	case "reject":
		return OversellReject, nil
	default:
		return OversellAllow, fmt.Errorf("unknown oversell policy %q", s)
	}
}

func (p OversellPolicy) String() string {
	if p == OversellReject {
		return "reject"
	}
	return "allow"
}

// ErrOversell is returned by Aggregate under OversellReject.
var ErrOversell = apperrors.ErrOversell

// ErrUnknownTradeType marks a ledger entry that is neither BUY nor SELL.
var ErrUnknownTradeType = errors.New("unknown trade type")

// quantityEpsilon absorbs float noise when comparing share counts.
const quantityEpsilon = 1e-9

// Engine folds trade ledgers into positions under a fixed oversell policy.
type Engine struct {
	oversell OversellPolicy
}

// New returns an Engine using the given oversell policy.
func New(policy OversellPolicy) *Engine {
	return &Engine{oversell: policy}
}

// Policy returns the oversell policy of the engine.
func (e *Engine) Policy() OversellPolicy {
	return e.oversell
}

// Aggregation is the result of folding a trade ledger.
type Aggregation struct {
	Positions map[string]model.PositionSummary
	TotalCost float64 // Sum of CostBasis over all positions
}

// Aggregate folds trades into one PositionSummary per symbol.
//
// BUY fills add quantity*price+fees to both the running buy cost (which drives
// AvgBuyPrice) and the cost basis. SELL fills realize
// (price-AvgBuyPrice)*quantity-fees against the average as it stood before
// the sell, and reduce the cost basis by the net proceeds.
//
// Trades are assumed valid (positive quantity and price, non-negative fees);
// a trade that is neither BUY nor SELL fails the whole ledger.
// The input slice is not modified.
func (e *Engine) Aggregate(trades []model.Trade) (Aggregation, error) {
	if err := ValidateLedger(trades); err != nil {
		return Aggregation{}, err
	}
	positions := make(map[string]model.PositionSummary)

	for _, t := range sortedByDate(trades) {
		pos := positions[t.Symbol]
		pos.Symbol = t.Symbol

		switch t.Type {
		case model.TradeBuy:
			cost := t.Quantity*t.Price + t.Fees
			pos.NetQuantity += t.Quantity
			pos.TotalBuyCost += cost
			pos.TotalBuyQuantity += t.Quantity
			pos.CostBasis += cost
			pos.AvgBuyPrice = avgBuyPrice(pos.TotalBuyCost, pos.TotalBuyQuantity)
		case model.TradeSell:
			if e.oversell == OversellReject && t.Quantity > pos.NetQuantity+quantityEpsilon {
				return Aggregation{}, fmt.Errorf("%w: %s trade %s sells %g with %g held",
					ErrOversell, t.Symbol, t.ID, t.Quantity, pos.NetQuantity)
			}
			pos.NetQuantity -= t.Quantity
			pos.RealizedProfit += (t.Price-pos.AvgBuyPrice)*t.Quantity - t.Fees
			pos.CostBasis -= t.Quantity*t.Price - t.Fees
		}

		positions[t.Symbol] = pos
	}

	var totalCost float64
	for _, symbol := range sortedKeys(positions) {
		totalCost += positions[symbol].CostBasis
	}

	return Aggregation{Positions: positions, TotalCost: totalCost}, nil
}

// Valuate combines aggregated positions with current prices.
//
// Unrealized profit is only counted for long positions with a known price:
// price*NetQuantity-CostBasis. CostBasis has already been reduced by sale
// proceeds, so after a partial sell the gain of the sold shares shows up in
// both UnrealizedProfit and RealizedProfit, and TotalProfit counts it twice.
// PnLSeq rescales the remaining cost to avg*quantity instead and does not. A missing price contributes nothing, leaving
// the realized profit as the best-effort total for that symbol. Percentages are
// relative to the magnitude of the cost basis and are 0 when it is 0.
func Valuate(agg Aggregation, snapshot model.PriceSnapshot) model.PortfolioValuation {
	result := model.PortfolioValuation{
		Positions:    make([]model.PositionValuation, 0, len(agg.Positions)),
		TotalCost:    agg.TotalCost,
		PriceLoading: snapshot.Loading,
		PricesAsOf:   snapshot.AsOf,
	}

	for _, symbol := range sortedKeys(agg.Positions) {
		pos := agg.Positions[symbol]
		pv := model.PositionValuation{PositionSummary: pos}

		price, known := snapshot.Price(symbol)
		if known {
			p := price
			pv.CurrentPrice = &p
			pv.MarketValue = price * pos.NetQuantity
			pv.PriceStale = snapshot.Stale[symbol]
			if pos.NetQuantity > 0 {
				pv.UnrealizedProfit = price*pos.NetQuantity - pos.CostBasis
			}
		} else {
			pv.PriceLoading = true
			result.PriceLoading = true
		}

		pv.TotalProfit = pv.UnrealizedProfit + pos.RealizedProfit
		pv.PercentProfit = ratio(pv.TotalProfit, pos.CostBasis)

		result.TotalPnL += pv.TotalProfit
		result.Positions = append(result.Positions, pv)
	}

	result.TotalPnLPercent = ratio(result.TotalPnL, result.TotalCost)

	return result
}

// NetWorth returns the signed sum of quantity*price minus fees over all
// trades, BUY counted positive and SELL negative.
func NetWorth(trades []model.Trade) float64 {
	var amount float64
	for _, t := range trades {
		qty := t.Quantity
		if t.Type == model.TradeSell {
			qty = -qty
		}
		amount += qty*t.Price - t.Fees
	}
	return amount
}

// Symbols returns the distinct symbols of trades in ascending order.
func Symbols(trades []model.Trade) []string {
	seen := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		seen[t.Symbol] = struct{}{}
	}
	return sortedKeys(seen)
}

func avgBuyPrice(totalCost, totalQuantity float64) float64 {
	if totalQuantity == 0 {
		return 0
	}
	return totalCost / totalQuantity
}

// ratio returns value/|base|, or 0 when base is 0.
func ratio(value, base float64) float64 {
	if base == 0 {
		return 0
	}
	return value / math.Abs(base)
}

func sortedByDate(trades []model.Trade) []model.Trade {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b model.Trade) int {
		return a.TradeDate.Compare(b.TradeDate)
	})
	return sorted
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp.Compare[string])
	return keys
}

// ValidateLedger returns an error for the first trade that is neither BUY nor SELL.
func ValidateLedger(trades []model.Trade) error {
	for _, t := range trades {
		if !t.Type.Valid() {
			return fmt.Errorf("trade %s: %w %q", t.ID, ErrUnknownTradeType, t.Type)
		}
	}
	return nil
}
