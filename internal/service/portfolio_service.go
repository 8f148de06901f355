package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/pricecache"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
	"github.com/ndewijer/psx-portfolio-tracker/internal/valuation"
)

// PortfolioService handles portfolio-related business logic operations.
// Valuations and P&L histories are recomputed from the trade ledger on every
// call; nothing derived is persisted.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	tradeRepo     *repository.TradeRepository
	engine        *valuation.Engine
	prices        *pricecache.Cache
	history       *pricecache.Cache
	log           zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService.
// prices supplies current prices, history supplies end-of-day series for
// historical P&L pricing.
func NewPortfolioService(
	portfolioRepo *repository.PortfolioRepository,
	tradeRepo *repository.TradeRepository,
	engine *valuation.Engine,
	prices *pricecache.Cache,
	history *pricecache.Cache,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		tradeRepo:     tradeRepo,
		engine:        engine,
		prices:        prices,
		history:       history,
		log:           log.With().Str("component", "portfolio").Logger(),
	}
}

// GetPortfolios retrieves portfolios, optionally restricted to one owner.
func (s *PortfolioService) GetPortfolios(ctx context.Context, filter model.PortfolioFilter) ([]model.Portfolio, error) {
	return s.portfolioRepo.GetPortfolios(ctx, filter)
}

// GetPortfolio retrieves a portfolio with its trades, newest first.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.PortfolioWithTrades, error) {
	p, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return model.PortfolioWithTrades{}, err
	}
	trades, err := s.tradeRepo.GetTradesPerPortfolio(ctx, portfolioID)
	if err != nil {
		return model.PortfolioWithTrades{}, err
	}
	return model.PortfolioWithTrades{Portfolio: p, Trades: trades}, nil
}

// CreatePortfolio stores a new portfolio with a fresh UUID.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, req request.CreatePortfolioRequest) (*model.Portfolio, error) {
	now := time.Now().UTC()
	portfolio := &model.Portfolio{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.portfolioRepo.InsertPortfolio(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}
	return portfolio, nil
}

// UpdatePortfolio applies the provided fields of req to an existing portfolio.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, portfolioID string, req request.UpdatePortfolioRequest) (*model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		portfolio.Name = *req.Name
	}
	if req.Description != nil {
		portfolio.Description = *req.Description
	}
	if req.UserID != nil {
		portfolio.UserID = *req.UserID
	}
	portfolio.UpdatedAt = time.Now().UTC()

	if err := s.portfolioRepo.UpdatePortfolio(ctx, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// DeletePortfolio removes a portfolio together with its trades.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID string) error {
	return s.portfolioRepo.DeletePortfolio(ctx, portfolioID)
}

// GetPortfolioValuation values every position of a portfolio at current prices.
//
// Prices come from the tiered cache; a symbol without any price is reported
// with PriceLoading set and contributes only its realized profit.
func (s *PortfolioService) GetPortfolioValuation(ctx context.Context, portfolioID string) (model.PortfolioValuation, error) {
	ledger, err := s.ledger(ctx, portfolioID)
	if err != nil {
		return model.PortfolioValuation{}, err
	}

	agg, err := s.engine.Aggregate(ledger)
	if err != nil {
		return model.PortfolioValuation{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetValuation, err)
	}

	snapshot := s.prices.Snapshot(ctx, valuation.Symbols(ledger))
	if snapshot.Loading {
		s.log.Debug().Str("portfolio_id", portfolioID).Msg("Valuation served with missing prices")
	}

	result := valuation.Valuate(agg, snapshot)
	result.PortfolioID = portfolioID
	return result, nil
}

// GetPortfolioPnLHistory returns one running P&L point per trade.
//
// PricingCurrent marks every point at today's price. PricingHistorical marks
// each point at the end-of-day close on or before its date.
func (s *PortfolioService) GetPortfolioPnLHistory(ctx context.Context, portfolioID string, mode model.PricingMode) (model.PnLHistory, error) {
	ledger, err := s.ledger(ctx, portfolioID)
	if err != nil {
		return model.PnLHistory{}, err
	}

	symbols := valuation.Symbols(ledger)

	var prices valuation.PriceResolver
	switch mode {
	case model.PricingHistorical:
		prices = valuation.HistoricalPrices(s.history.Series(ctx, symbols))
	case model.PricingCurrent, "":
		mode = model.PricingCurrent
		prices = valuation.CurrentPrices(s.prices.Snapshot(ctx, symbols))
	default:
		return model.PnLHistory{}, fmt.Errorf("%w: unknown pricing %q", apperrors.ErrFailedToGetPnLHistory, mode)
	}

	points, err := valuation.PnLSeries(ledger, prices)
	if err != nil {
		return model.PnLHistory{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetPnLHistory, err)
	}

	return model.PnLHistory{
		PortfolioID: portfolioID,
		Pricing:     mode,
		Points:      points,
	}, nil
}

// GetNetWorth returns the signed trade value of a portfolio minus fees.
func (s *PortfolioService) GetNetWorth(ctx context.Context, portfolioID string) (model.NetWorth, error) {
	ledger, err := s.ledger(ctx, portfolioID)
	if err != nil {
		return model.NetWorth{}, err
	}
	return model.NetWorth{
		PortfolioID: portfolioID,
		NetWorth:    round(valuation.NetWorth(ledger)),
	}, nil
}

// ledger returns the trades of an existing portfolio in execution order.
func (s *PortfolioService) ledger(ctx context.Context, portfolioID string) ([]model.Trade, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.tradeRepo.GetLedger(ctx, portfolioID)
}
