package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/psx-portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/psx-portfolio-tracker/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const portfolioColumns = `id, user_id, name, description, created_at, updated_at`

// GetPortfolios retrieves portfolios ordered by name.
// A non-empty filter.UserID restricts the result to that owner.
// Returns an empty slice if no portfolios match.
func (r *PortfolioRepository) GetPortfolios(ctx context.Context, filter model.PortfolioFilter) ([]model.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio WHERE 1=1`
	var args []any

	if filter.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, filter.UserID)
	}
	query += " ORDER BY name, id"

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio.
// Returns apperrors.ErrPortfolioNotFound if it does not exist.
func (r *PortfolioRepository) GetPortfolioOnID(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	row := r.getQuerier().QueryRowContext(ctx,
		`SELECT `+portfolioColumns+` FROM portfolio WHERE id = ?`, portfolioID)

	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// InsertPortfolio stores a new portfolio.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Description,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// UpdatePortfolio overwrites the mutable fields of an existing portfolio.
// Returns apperrors.ErrPortfolioNotFound if it does not exist.
func (r *PortfolioRepository) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		UPDATE portfolio
		SET name = ?, description = ?, user_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Name,
		p.Description,
		p.UserID,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	return requireAffected(result, apperrors.ErrPortfolioNotFound)
}

// DeletePortfolio removes a portfolio; its trades cascade.
// Returns apperrors.ErrPortfolioNotFound if it does not exist.
func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, portfolioID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM portfolio WHERE id = ?`, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return requireAffected(result, apperrors.ErrPortfolioNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPortfolio(s rowScanner) (model.Portfolio, error) {
	var p model.Portfolio
	var createdStr, updatedStr string

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Description,
		&createdStr,
		&updatedStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan portfolio: %w", err)
	}

	if p.CreatedAt, err = ParseTime(createdStr); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = ParseTime(updatedStr); err != nil {
		return p, err
	}
	return p, nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
