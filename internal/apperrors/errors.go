package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTradeNotFound indicates that a trade with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrPriceNotFound indicates that no last known price is stored for a symbol.
	ErrPriceNotFound = errors.New("price not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrOversell indicates that a sell would take a position below zero shares
	// while the oversell policy is set to reject.
	ErrOversell = errors.New("sell quantity exceeds held quantity")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidRange indicates an unknown chart range.
	ErrInvalidRange = errors.New("invalid chart range")

	// ErrInvalidSymbol indicates a value that cannot be a PSX ticker.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// Upstream errors represent failures talking to the market data portal.
var (
	// ErrUpstream indicates the PSX data portal returned an error or unreadable data.
	ErrUpstream = errors.New("market data request failed")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Portfolio operation errors
	ErrFailedToRetrievePortfolios = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrievePortfolio  = errors.New("failed to retrieve portfolio")
	ErrFailedToGetValuation       = errors.New("failed to get portfolio valuation")
	ErrFailedToGetPnLHistory      = errors.New("failed to get portfolio pnl history")

	// Trade operation errors
	ErrFailedToRetrieveTrades = errors.New("failed to retrieve trades")
	ErrFailedToRetrieveTrade  = errors.New("failed to retrieve trade")

	// Market operation errors
	ErrFailedToRetrieveSymbols    = errors.New("failed to retrieve symbols")
	ErrFailedToRetrieveTimeSeries = errors.New("failed to retrieve time series")
	ErrFailedToRetrieveReports    = errors.New("failed to retrieve company reports")
)
