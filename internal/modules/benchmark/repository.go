package benchmark

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Repository handles ETF holdings database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new benchmark repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "benchmark").Logger(),
	}
}

// InitSchema ensures the etf_holdings table exists
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(Schema)
	return err
}

// GetETFHoldings returns the stored composition of an ETF. An unknown ETF
// returns an empty slice.
func (r *Repository) GetETFHoldings(etfSymbol string) ([]domain.BenchmarkWeight, error) {
	rows, err := r.db.Query(`
		SELECT etf_symbol, ticker, weight
		FROM etf_holdings
		WHERE etf_symbol = ?
		ORDER BY weight DESC
	`, etfSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query etf holdings for %s: %w", etfSymbol, err)
	}
	defer rows.Close()

	var weights []domain.BenchmarkWeight
	for rows.Next() {
		var w domain.BenchmarkWeight
		if err := rows.Scan(&w.ETFSymbol, &w.Ticker, &w.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan etf holding: %w", err)
		}
		weights = append(weights, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating etf holdings: %w", err)
	}

	return weights, nil
}

// ReplaceETFHoldings swaps an ETF's entire composition in one transaction.
func (r *Repository) ReplaceETFHoldings(etfSymbol string, weights []domain.BenchmarkWeight) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin etf holdings replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM etf_holdings WHERE etf_symbol = ?`, etfSymbol); err != nil {
		return fmt.Errorf("failed to clear etf holdings for %s: %w", etfSymbol, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO etf_holdings (etf_symbol, ticker, weight) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare etf holdings insert: %w", err)
	}
	defer stmt.Close()

	for _, w := range weights {
		if _, err := stmt.Exec(etfSymbol, w.Ticker, w.Weight); err != nil {
			return fmt.Errorf("failed to insert etf holding %s/%s: %w", etfSymbol, w.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit etf holdings replace: %w", err)
	}

	r.log.Info().Str("etf", etfSymbol).Int("holdings", len(weights)).Msg("ETF holdings replaced")
	return nil
}
