package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Repository handles position and cash balance database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// InitSchema ensures the portfolio tables exist
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(Schema)
	return err
}

// GetPortfolioPositions returns all positions in a region joined with their
// security metadata. Positions without a securities row still come back, with
// empty company and the default stock type.
func (r *Repository) GetPortfolioPositions(region domain.Region) ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT p.region, p.symbol, COALESCE(s.name, ''), COALESCE(s.stock_type, 'stock'), p.quantity
		FROM positions p
		LEFT JOIN securities s ON s.symbol = p.symbol
		WHERE p.region = ?
		ORDER BY p.symbol
	`, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for %s: %w", region, err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var pos domain.Position
		if err := rows.Scan(&pos.Region, &pos.Symbol, &pos.Company, &pos.StockType, &pos.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetCashBalance returns the cash balance for a region, 0 when none is
// recorded (not an error).
func (r *Repository) GetCashBalance(region domain.Region) (float64, error) {
	var balance float64
	err := r.db.QueryRow(`
		SELECT balance FROM cash_balances WHERE region = ?
	`, string(region)).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query cash balance for %s: %w", region, err)
	}
	return balance, nil
}

// SetCashBalance stores the cash balance for a region.
func (r *Repository) SetCashBalance(region domain.Region, balance float64) error {
	_, err := r.db.Exec(`
		INSERT INTO cash_balances (region, balance) VALUES (?, ?)
		ON CONFLICT(region) DO UPDATE SET balance = excluded.balance
	`, string(region), balance)
	if err != nil {
		return fmt.Errorf("failed to set cash balance for %s: %w", region, err)
	}
	return nil
}

// UpsertPosition stores a position, used by the out-of-scope import layer.
func (r *Repository) UpsertPosition(pos domain.Position) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin position upsert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO securities (symbol, name, stock_type) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			stock_type = excluded.stock_type
	`, pos.Symbol, pos.Company, pos.StockType)
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", pos.Symbol, err)
	}

	_, err = tx.Exec(`
		INSERT INTO positions (region, symbol, quantity) VALUES (?, ?, ?)
		ON CONFLICT(region, symbol) DO UPDATE SET quantity = excluded.quantity
	`, string(pos.Region), pos.Symbol, pos.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", pos.Symbol, err)
	}

	return tx.Commit()
}
