package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// PriceRepository persists the last known price of each symbol.
// It backs the final fallback tier of the price cache.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// SaveLastPrice inserts or replaces the last price of a symbol.
// An older AsOf never overwrites a newer one.
func (r *PriceRepository) SaveLastPrice(ctx context.Context, p model.LastPrice) error {
	query := `
		INSERT INTO last_price (symbol, price, as_of)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			price = excluded.price,
			as_of = excluded.as_of
		WHERE excluded.as_of >= last_price.as_of
	`
	_, err := r.db.ExecContext(ctx, query, model.NormalizeSymbol(p.Symbol), p.Price, formatTime(p.AsOf))
	if err != nil {
		return fmt.Errorf("failed to save last price: %w", err)
	}
	return nil
}

// GetLastPrice returns the last known price of a symbol.
// Returns apperrors.ErrPriceNotFound if none was ever stored.
func (r *PriceRepository) GetLastPrice(ctx context.Context, symbol string) (model.LastPrice, error) {
	var p model.LastPrice
	var asOfStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT symbol, price, as_of FROM last_price WHERE symbol = ?`,
		model.NormalizeSymbol(symbol),
	).Scan(&p.Symbol, &p.Price, &asOfStr)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LastPrice{}, apperrors.ErrPriceNotFound
	}
	if err != nil {
		return model.LastPrice{}, fmt.Errorf("failed to query last price: %w", err)
	}

	if p.AsOf, err = ParseTime(asOfStr); err != nil {
		return model.LastPrice{}, err
	}
	return p, nil
}
