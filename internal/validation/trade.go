package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// symbolPattern matches PSX tickers such as OGDC, HBL or MZNPETF.
var symbolPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,19}$`)

// ValidSymbol reports whether s, once normalized, looks like a PSX ticker.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(model.NormalizeSymbol(s))
}

// ValidateSymbol returns an error wrapping apperrors.ErrInvalidSymbol when
// s is not a PSX ticker.
func ValidateSymbol(s string) error {
	if !ValidSymbol(s) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidSymbol, s)
	}
	return nil
}

// ValidateCreateTrade validates a trade creation request.
//
// Required fields:
//   - symbol: a PSX ticker, case-insensitive
//   - type: BUY or SELL, case-insensitive
//   - quantity: must be positive
//   - price: must be positive
//   - tradeDate: YYYY-MM-DD or RFC3339
//
// fees is optional and must not be negative.
func ValidateCreateTrade(req request.CreateTradeRequest) error {
	errors := make(map[string]string)

	validateSymbol(errors, req.Symbol)
	validateType(errors, req.Type)
	validatePositive(errors, "quantity", req.Quantity)
	validatePositive(errors, "price", req.Price)
	validateFees(errors, req.Fees)
	validateTradeDate(errors, req.TradeDate)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateTrade validates a trade update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
func ValidateUpdateTrade(req request.UpdateTradeRequest) error {
	errors := make(map[string]string)

	if req.Symbol != nil {
		validateSymbol(errors, *req.Symbol)
	}
	if req.Type != nil {
		validateType(errors, *req.Type)
	}
	if req.Quantity != nil {
		validatePositive(errors, "quantity", *req.Quantity)
	}
	if req.Price != nil {
		validatePositive(errors, "price", *req.Price)
	}
	if req.Fees != nil {
		validateFees(errors, *req.Fees)
	}
	if req.TradeDate != nil {
		validateTradeDate(errors, *req.TradeDate)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateSymbol(errors map[string]string, symbol string) {
	if strings.TrimSpace(symbol) == "" {
		errors["symbol"] = "symbol is required"
	} else if !ValidSymbol(symbol) {
		errors["symbol"] = fmt.Sprintf("invalid symbol: %s", symbol)
	}
}

func validateType(errors map[string]string, tradeType string) {
	if strings.TrimSpace(tradeType) == "" {
		errors["type"] = "type is required"
	} else if _, err := model.ParseTradeType(tradeType); err != nil {
		errors["type"] = fmt.Sprintf("invalid type: %s", tradeType)
	}
}

func validatePositive(errors map[string]string, field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		errors[field] = field + " must be positive"
	}
}

func validateFees(errors map[string]string, fees float64) {
	if math.IsNaN(fees) || math.IsInf(fees, 0) || fees < 0 {
		errors["fees"] = "fees cannot be negative"
	}
}

func validateTradeDate(errors map[string]string, date string) {
	if strings.TrimSpace(date) == "" {
		errors["tradeDate"] = "tradeDate is required"
		return
	}
	if _, err := ParseTime(date); err != nil {
		errors["tradeDate"] = err.Error()
	}
}
