package prices

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for history files
	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Store provides access to price data: per-symbol history database files plus
// the current-price snapshot table in the application database.
type Store struct {
	historyDir string
	appDB      *sql.DB
	log        zerolog.Logger
}

// NewStore creates a new price store
func NewStore(historyDir string, appDB *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		historyDir: historyDir,
		appDB:      appDB,
		log:        log.With().Str("component", "price_store").Logger(),
	}
}

// InitSchema ensures the app-database tables exist
func (s *Store) InitSchema() error {
	_, err := s.appDB.Exec(Schema)
	return err
}

// GetHistoricalPrices fetches all price points for a symbol, ascending by date.
// A symbol with no history file returns an empty slice.
func (s *Store) GetHistoricalPrices(symbol string, region domain.Region) ([]domain.PricePoint, error) {
	db, err := s.openHistoryDB(symbol, region, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return []domain.PricePoint{}, nil
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT id, date, open_price, high_price, low_price, close_price, adjusted_close, volume
		FROM daily_prices
		ORDER BY date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		p, err := scanPricePoint(rows, symbol, region)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices for %s: %w", symbol, err)
	}

	return points, nil
}

// GetPriceOnOrAfter returns the earliest price point dated on or after date.
func (s *Store) GetPriceOnOrAfter(symbol string, region domain.Region, date string) (*domain.PricePoint, error) {
	return s.queryOne(symbol, region, `
		SELECT id, date, open_price, high_price, low_price, close_price, adjusted_close, volume
		FROM daily_prices
		WHERE date >= ?
		ORDER BY date ASC
		LIMIT 1
	`, date)
}

// GetPriceBefore returns the latest price point dated strictly before date.
func (s *Store) GetPriceBefore(symbol string, region domain.Region, date string) (*domain.PricePoint, error) {
	return s.queryOne(symbol, region, `
		SELECT id, date, open_price, high_price, low_price, close_price, adjusted_close, volume
		FROM daily_prices
		WHERE date < ?
		ORDER BY date DESC
		LIMIT 1
	`, date)
}

// GetCurrentPrice returns the current price snapshot, or nil when none exists.
func (s *Store) GetCurrentPrice(symbol string, region domain.Region) (*domain.CurrentPrice, error) {
	var cp domain.CurrentPrice
	err := s.appDB.QueryRow(`
		SELECT symbol, region, price, updated_at
		FROM current_prices
		WHERE symbol = ? AND region = ?
	`, symbol, string(region)).Scan(&cp.Symbol, &cp.Region, &cp.Price, &cp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query current price for %s: %w", symbol, err)
	}
	return &cp, nil
}

// UpsertCurrentPrice stores the current price snapshot for a symbol.
// Called by the external ingestion process.
func (s *Store) UpsertCurrentPrice(symbol string, region domain.Region, price float64) error {
	_, err := s.appDB.Exec(`
		INSERT INTO current_prices (symbol, region, price, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol, region) DO UPDATE SET
			price = excluded.price,
			updated_at = excluded.updated_at
	`, symbol, string(region), price, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert current price for %s: %w", symbol, err)
	}
	return nil
}

// ListSymbols returns every symbol with historical data in the region.
func (s *Store) ListSymbols(region domain.Region) ([]string, error) {
	rows, err := s.appDB.Query(`
		SELECT symbol FROM tracked_symbols WHERE region = ? ORDER BY symbol
	`, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan tracked symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracked symbols: %w", err)
	}

	return symbols, nil
}

// AppendPricePoints appends daily bars to a symbol's history file, creating
// the file and catalog entry on first use. Existing dates are left untouched;
// history is append-only.
func (s *Store) AppendPricePoints(symbol string, region domain.Region, points []domain.PricePoint) error {
	db, err := s.openHistoryDB(symbol, region, true)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(historySchema); err != nil {
		return fmt.Errorf("failed to init history schema for %s: %w", symbol, err)
	}

	stmt, err := db.Prepare(`
		INSERT OR IGNORE INTO daily_prices
			(date, open_price, high_price, low_price, close_price, adjusted_close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", symbol, err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(p.Date, p.Open, p.High, p.Low,
			nullableFloat(p.Close), nullableFloat(p.AdjustedClose), nullableInt(p.Volume)); err != nil {
			return fmt.Errorf("failed to insert price %s %s: %w", symbol, p.Date, err)
		}
	}

	_, err = s.appDB.Exec(`
		INSERT OR IGNORE INTO tracked_symbols (symbol, region) VALUES (?, ?)
	`, symbol, string(region))
	if err != nil {
		return fmt.Errorf("failed to register tracked symbol %s: %w", symbol, err)
	}

	return nil
}

func (s *Store) queryOne(symbol string, region domain.Region, query, date string) (*domain.PricePoint, error) {
	db, err := s.openHistoryDB(symbol, region, false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, nil
	}
	defer db.Close()

	rows, err := db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query price for %s: %w", symbol, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	p, err := scanPricePoint(rows, symbol, region)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// openHistoryDB opens the history database file for a (symbol, region).
// When create is false and the file does not exist, returns (nil, nil).
func (s *Store) openHistoryDB(symbol string, region domain.Region, create bool) (*sql.DB, error) {
	path := s.historyPath(symbol, region)

	if !create {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, nil
		}
	} else {
		if err := os.MkdirAll(s.historyDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database for %s: %w", symbol, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database for %s: %w", symbol, err)
	}

	return db, nil
}

// historyPath maps a (symbol, region) to its database file.
// Symbol format: RY.TO/CAD -> RY_TO_CAD.db
func (s *Store) historyPath(symbol string, region domain.Region) string {
	mangled := strings.ReplaceAll(symbol, ".", "_")
	return filepath.Join(s.historyDir, fmt.Sprintf("%s_%s.db", mangled, region))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPricePoint(row rowScanner, symbol string, region domain.Region) (domain.PricePoint, error) {
	var p domain.PricePoint
	var closePrice, adjClose sql.NullFloat64
	var volume sql.NullInt64

	err := row.Scan(&p.ID, &p.Date, &p.Open, &p.High, &p.Low, &closePrice, &adjClose, &volume)
	if err != nil {
		return p, fmt.Errorf("failed to scan price point: %w", err)
	}

	p.Symbol = symbol
	p.Region = region
	if closePrice.Valid {
		p.Close = &closePrice.Float64
	}
	if adjClose.Valid {
		p.AdjustedClose = &adjClose.Float64
	}
	if volume.Valid {
		p.Volume = &volume.Int64
	}

	return p, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
