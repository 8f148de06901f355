package request

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// Chart query bounds.
const (
	MaxSMAPeriod = 200
)

// SIP calculator defaults and bounds.
const (
	DefaultSIPAmount = 1000.0
	DefaultSIPRate   = 12.0 // percent per year
	DefaultSIPYears  = 1
	MaxSIPYears      = 50
)

// ChartQuery holds the parsed parameters of a chart request.
type ChartQuery struct {
	Range     model.ChartRange
	SMAPeriod int // 0 disables the overlay
}

// SIPQuery holds the parsed parameters of a SIP projection.
type SIPQuery struct {
	Amount     float64
	AnnualRate float64 // fraction, 0.12 for 12%
	Years      int
}

// ParseChartQuery validates the range and sma query parameters.
//
// Validation rules:
//   - range: one of 1D, 1W, 1M, 6M, YTD, 1Y, 5Y, All, case-insensitive (defaults to 1D)
//   - sma: integer between 2 and 200 (optional)
func ParseChartQuery(rangeParam, smaParam string) (*ChartQuery, error) {
	q := &ChartQuery{Range: model.Range1D}

	if rangeParam != "" {
		r, ok := parseChartRange(rangeParam)
		if !ok {
			return nil, fmt.Errorf("invalid range: %s", rangeParam)
		}
		q.Range = r
	}

	if smaParam != "" {
		period, err := strconv.Atoi(smaParam)
		if err != nil {
			return nil, fmt.Errorf("invalid sma: must be a number")
		}
		if period < 2 || period > MaxSMAPeriod {
			return nil, fmt.Errorf("invalid sma: must be between 2 and %d", MaxSMAPeriod)
		}
		q.SMAPeriod = period
	}

	return q, nil
}

func parseChartRange(s string) (model.ChartRange, bool) {
	for r := range model.ValidChartRanges {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// ParsePricingMode validates the pricing parameter of the P&L history (defaults to current).
func ParsePricingMode(param string) (model.PricingMode, error) {
	switch model.PricingMode(strings.ToLower(strings.TrimSpace(param))) {
	case "", model.PricingCurrent:
		return model.PricingCurrent, nil
	case model.PricingHistorical:
		return model.PricingHistorical, nil
	default:
		return "", fmt.Errorf("invalid pricing: must be 'current' or 'historical'")
	}
}

// ParseLimit parses a positive limit capped at max; an empty value yields def.
func ParseLimit(param string, def, max int) (int, error) {
	if param == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: must be a number")
	}
	if limit < 1 || limit > max {
		return 0, fmt.Errorf("invalid limit: must be between 1 and %d", max)
	}
	return limit, nil
}

// ParseSIPQuery validates the SIP calculator parameters.
//
// Validation rules:
//   - amount: positive number (defaults to 1000)
//   - rate: annual rate in percent, 0 to 100 (defaults to 12)
//   - years: integer between 1 and 50 (defaults to 1)
func ParseSIPQuery(amountParam, rateParam, yearsParam string) (*SIPQuery, error) {
	q := &SIPQuery{
		Amount:     DefaultSIPAmount,
		AnnualRate: DefaultSIPRate / 100,
		Years:      DefaultSIPYears,
	}

	if amountParam != "" {
		amount, err := parseFinite(amountParam)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("invalid amount: must be a positive number")
		}
		q.Amount = amount
	}

	if rateParam != "" {
		rate, err := parseFinite(rateParam)
		if err != nil || rate < 0 || rate > 100 {
			return nil, fmt.Errorf("invalid rate: must be between 0 and 100")
		}
		q.AnnualRate = rate / 100
	}

	if yearsParam != "" {
		years, err := strconv.Atoi(yearsParam)
		if err != nil {
			return nil, fmt.Errorf("invalid years: must be a number")
		}
		if years < 1 || years > MaxSIPYears {
			return nil, fmt.Errorf("invalid years: must be between 1 and %d", MaxSIPYears)
		}
		q.Years = years
	}

	return q, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}
