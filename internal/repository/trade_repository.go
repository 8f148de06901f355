package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// TradeRepository provides data access methods for the trade table.
type TradeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// WithTx returns a new TradeRepository scoped to the provided transaction.
func (r *TradeRepository) WithTx(tx *sql.Tx) *TradeRepository {
	return &TradeRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TradeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const tradeColumns = `id, portfolio_id, symbol, type, quantity, price, fees, trade_date, created_at, updated_at`

// GetTradesPerPortfolio returns the trades of a portfolio, newest trade first.
func (r *TradeRepository) GetTradesPerPortfolio(ctx context.Context, portfolioID string) ([]model.Trade, error) {
	return r.queryTrades(ctx,
		`SELECT `+tradeColumns+` FROM trade WHERE portfolio_id = ? ORDER BY trade_date DESC, created_at DESC`,
		portfolioID)
}

// GetLedger returns the trades of a portfolio in the order they were executed.
// Same-instant trades keep their insertion order.
func (r *TradeRepository) GetLedger(ctx context.Context, portfolioID string) ([]model.Trade, error) {
	return r.queryTrades(ctx,
		`SELECT `+tradeColumns+` FROM trade WHERE portfolio_id = ? ORDER BY trade_date ASC, created_at ASC, rowid ASC`,
		portfolioID)
}

// GetTrade retrieves a single trade.
// Returns apperrors.ErrTradeNotFound if it does not exist.
func (r *TradeRepository) GetTrade(ctx context.Context, tradeID string) (model.Trade, error) {
	row := r.getQuerier().QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trade WHERE id = ?`, tradeID)

	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trade{}, apperrors.ErrTradeNotFound
	}
	if err != nil {
		return model.Trade{}, err
	}
	return t, nil
}

// GetTradedSymbols returns every symbol that appears in any trade, sorted.
func (r *TradeRepository) GetTradedSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT DISTINCT symbol FROM trade ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query traded symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating traded symbols: %w", err)
	}
	return symbols, nil
}

// InsertTrade stores a new trade.
func (r *TradeRepository) InsertTrade(ctx context.Context, t *model.Trade) error {
	query := `
		INSERT INTO trade (id, portfolio_id, symbol, type, quantity, price, fees, trade_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		t.Symbol,
		string(t.Type),
		t.Quantity,
		t.Price,
		t.Fees,
		formatTime(t.TradeDate),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}
	return nil
}

// UpdateTrade overwrites an existing trade.
// Returns apperrors.ErrTradeNotFound if it does not exist.
func (r *TradeRepository) UpdateTrade(ctx context.Context, t *model.Trade) error {
	query := `
		UPDATE trade
		SET symbol = ?, type = ?, quantity = ?, price = ?, fees = ?, trade_date = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.getQuerier().ExecContext(ctx, query,
		t.Symbol,
		string(t.Type),
		t.Quantity,
		t.Price,
		t.Fees,
		formatTime(t.TradeDate),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade: %w", err)
	}
	return requireAffected(result, apperrors.ErrTradeNotFound)
}

// DeleteTrade removes a trade.
// Returns apperrors.ErrTradeNotFound if it does not exist.
func (r *TradeRepository) DeleteTrade(ctx context.Context, tradeID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM trade WHERE id = ?`, tradeID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return requireAffected(result, apperrors.ErrTradeNotFound)
}

func (r *TradeRepository) queryTrades(ctx context.Context, query string, args ...any) ([]model.Trade, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade table: %w", err)
	}
	return trades, nil
}

func scanTrade(s rowScanner) (model.Trade, error) {
	var t model.Trade
	var tradeType, tradeDateStr, createdStr, updatedStr string

	err := s.Scan(
		&t.ID,
		&t.PortfolioID,
		&t.Symbol,
		&tradeType,
		&t.Quantity,
		&t.Price,
		&t.Fees,
		&tradeDateStr,
		&createdStr,
		&updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return t, err
	}
	if err != nil {
		return t, fmt.Errorf("failed to scan trade: %w", err)
	}

	t.Type = model.TradeType(tradeType)
	if t.TradeDate, err = ParseTime(tradeDateStr); err != nil {
		return t, err
	}
	if t.CreatedAt, err = ParseTime(createdStr); err != nil {
		return t, err
	}
	if t.UpdatedAt, err = ParseTime(updatedStr); err != nil {
		return t, err
	}
	return t, nil
}
