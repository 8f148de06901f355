package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/psx-portfolio-tracker/internal/api/request"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
	"github.com/ndewijer/psx-portfolio-tracker/internal/repository"
	"github.com/ndewijer/psx-portfolio-tracker/internal/validation"
	"github.com/ndewijer/psx-portfolio-tracker/internal/valuation"
)

// TradeService handles trade-related business logic operations.
//
// Under valuation.OversellReject every mutation runs in a database
// transaction and is rolled back if the resulting ledger sells more of a
// symbol than it holds at any point.
type TradeService struct {
	db            *sql.DB
	tradeRepo     *repository.TradeRepository
	portfolioRepo *repository.PortfolioRepository
	engine        *valuation.Engine
}

// NewTradeService creates a new TradeService.
func NewTradeService(
	db *sql.DB,
	tradeRepo *repository.TradeRepository,
	portfolioRepo *repository.PortfolioRepository,
	engine *valuation.Engine,
) *TradeService {
	return &TradeService{
		db:            db,
		tradeRepo:     tradeRepo,
		portfolioRepo: portfolioRepo,
		engine:        engine,
	}
}

// GetTradesPerPortfolio returns the trades of a portfolio, newest first.
func (s *TradeService) GetTradesPerPortfolio(ctx context.Context, portfolioID string) ([]model.Trade, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.tradeRepo.GetTradesPerPortfolio(ctx, portfolioID)
}

// GetTrade retrieves a single trade.
func (s *TradeService) GetTrade(ctx context.Context, tradeID string) (model.Trade, error) {
	return s.tradeRepo.GetTrade(ctx, tradeID)
}

// CreateTrade records a trade in a portfolio. The symbol is upper-cased.
func (s *TradeService) CreateTrade(ctx context.Context, portfolioID string, req request.CreateTradeRequest) (*model.Trade, error) {
	if _, err := s.portfolioRepo.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}

	tradeType, err := model.ParseTradeType(req.Type)
	if err != nil {
		return nil, err
	}
	tradeDate, err := validation.ParseTime(req.TradeDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trade := &model.Trade{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      model.NormalizeSymbol(req.Symbol),
		Type:        tradeType,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Fees:        req.Fees,
		TradeDate:   tradeDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.mutate(ctx, portfolioID, func(repo *repository.TradeRepository) error {
		return repo.InsertTrade(ctx, trade)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	return trade, nil
}

// UpdateTrade applies the provided fields of req to an existing trade.
func (s *TradeService) UpdateTrade(ctx context.Context, tradeID string, req request.UpdateTradeRequest) (*model.Trade, error) {
	trade, err := s.tradeRepo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if req.Symbol != nil {
		trade.Symbol = model.NormalizeSymbol(*req.Symbol)
	}
	if req.Type != nil {
		if trade.Type, err = model.ParseTradeType(*req.Type); err != nil {
			return nil, err
		}
	}
	if req.Quantity != nil {
		trade.Quantity = *req.Quantity
	}
	if req.Price != nil {
		trade.Price = *req.Price
	}
	if req.Fees != nil {
		trade.Fees = *req.Fees
	}
	if req.TradeDate != nil {
		if trade.TradeDate, err = validation.ParseTime(*req.TradeDate); err != nil {
			return nil, err
		}
	}
	trade.UpdatedAt = time.Now().UTC()

	err = s.mutate(ctx, trade.PortfolioID, func(repo *repository.TradeRepository) error {
		return repo.UpdateTrade(ctx, &trade)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}
	return &trade, nil
}

// DeleteTrade removes a trade.
func (s *TradeService) DeleteTrade(ctx context.Context, tradeID string) error {
	trade, err := s.tradeRepo.GetTrade(ctx, tradeID)
	if err != nil {
		return err
	}

	err = s.mutate(ctx, trade.PortfolioID, func(repo *repository.TradeRepository) error {
		return repo.DeleteTrade(ctx, tradeID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return nil
}

// mutate runs fn inside a transaction and, under OversellReject, re-aggregates
// the portfolio ledger before committing.
func (s *TradeService) mutate(ctx context.Context, portfolioID string, fn func(repo *repository.TradeRepository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	repo := s.tradeRepo.WithTx(tx)
	if err := fn(repo); err != nil {
		return err
	}

	if s.engine.Policy() == valuation.OversellReject {
		ledger, err := repo.GetLedger(ctx, portfolioID)
		if err != nil {
			return err
		}
		if _, err := s.engine.Aggregate(ledger); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
