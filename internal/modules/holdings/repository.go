package holdings

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Repository handles holdings table database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holdings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

// InitSchema ensures the holdings table exists
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(Schema)
	return err
}

// GetHoldings returns the current holdings rows for a region. Cash sorts
// first, then positions by descending weight.
func (r *Repository) GetHoldings(region domain.Region) ([]domain.HoldingsRow, error) {
	rows, err := r.db.Query(`
		SELECT region, symbol, company, stock_type, quantity, current_price,
		       net_asset_value, portfolio_weight, benchmark_weight, delta_weight,
		       daily_change_percent, mtd_change_percent, ytd_change_percent,
		       six_month_change_percent, fifty_two_week_change_percent
		FROM holdings
		WHERE region = ?
		ORDER BY CASE WHEN symbol = 'CASH' THEN 0 ELSE 1 END, portfolio_weight DESC
	`, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings for %s: %w", region, err)
	}
	defer rows.Close()

	var result []domain.HoldingsRow
	for rows.Next() {
		var h domain.HoldingsRow
		err := rows.Scan(
			&h.Region, &h.Symbol, &h.Company, &h.StockType, &h.Quantity,
			&h.CurrentPrice, &h.NetAssetValue, &h.PortfolioWeight,
			&h.BenchmarkWeight, &h.DeltaWeight, &h.DailyChangePercent,
			&h.MTDChangePercent, &h.YTDChangePercent,
			&h.SixMonthChangePercent, &h.FiftyTwoWeekChangePercent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holdings row: %w", err)
		}
		result = append(result, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return result, nil
}

// ReplaceHoldings swaps a region's entire holdings set in a single
// transaction, so readers see either the old complete set or the new one,
// never a mix. Replacing a previously populated region with zero rows is an
// integrity violation and is refused.
func (r *Repository) ReplaceHoldings(region domain.Region, newRows []domain.HoldingsRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin holdings replace: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM holdings WHERE region = ?`, string(region)).Scan(&existing); err != nil {
		return fmt.Errorf("failed to count holdings for %s: %w", region, err)
	}

	if len(newRows) == 0 && existing > 0 {
		return fmt.Errorf("refusing to replace %d holdings rows for %s with an empty set", existing, region)
	}

	if _, err := tx.Exec(`DELETE FROM holdings WHERE region = ?`, string(region)); err != nil {
		return fmt.Errorf("failed to clear holdings for %s: %w", region, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO holdings
			(region, symbol, company, stock_type, quantity, current_price,
			 net_asset_value, portfolio_weight, benchmark_weight, delta_weight,
			 daily_change_percent, mtd_change_percent, ytd_change_percent,
			 six_month_change_percent, fifty_two_week_change_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare holdings insert: %w", err)
	}
	defer stmt.Close()

	for _, h := range newRows {
		_, err := stmt.Exec(
			string(h.Region), h.Symbol, h.Company, h.StockType, h.Quantity,
			h.CurrentPrice, h.NetAssetValue, h.PortfolioWeight,
			h.BenchmarkWeight, h.DeltaWeight, h.DailyChangePercent,
			h.MTDChangePercent, h.YTDChangePercent,
			h.SixMonthChangePercent, h.FiftyTwoWeekChangePercent,
		)
		if err != nil {
			return fmt.Errorf("failed to insert holdings row %s/%s: %w", region, h.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings replace: %w", err)
	}

	r.log.Debug().Str("region", string(region)).Int("rows", len(newRows)).Msg("Holdings replaced")
	return nil
}
