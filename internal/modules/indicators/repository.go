package indicators

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Repository handles indicator record database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new indicator repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "indicators").Logger(),
	}
}

// InitSchema ensures the technical_indicators table exists
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(Schema)
	return err
}

// GetIndicatorRecords returns all records for a (symbol, region), ascending
// by date.
func (r *Repository) GetIndicatorRecords(symbol string, region domain.Region) ([]domain.IndicatorRecord, error) {
	rows, err := r.db.Query(`
		SELECT symbol, region, date, ma50, ma200, rsi9, rsi14, rsi21,
		       macd_fast, macd_slow, macd_histogram, source_price_point_id
		FROM technical_indicators
		WHERE symbol = ? AND region = ?
		ORDER BY date ASC
	`, symbol, string(region))
	if err != nil {
		return nil, fmt.Errorf("failed to query indicator records: %w", err)
	}
	defer rows.Close()

	var records []domain.IndicatorRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indicator records: %w", err)
	}

	return records, nil
}

// UpsertIndicatorRecords applies records one by one in the order given.
// Each upsert is keyed by (symbol, date, region): insert if absent, update in
// place if present, so concurrent re-runs and retries are harmless. Records
// are applied sequentially rather than in one transaction so a crash leaves
// the earliest dates committed, never a scattered subset.
func (r *Repository) UpsertIndicatorRecords(records []domain.IndicatorRecord) error {
	stmt, err := r.db.Prepare(`
		INSERT INTO technical_indicators
			(symbol, region, date, ma50, ma200, rsi9, rsi14, rsi21,
			 macd_fast, macd_slow, macd_histogram, source_price_point_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date, region) DO UPDATE SET
			ma50 = excluded.ma50,
			ma200 = excluded.ma200,
			rsi9 = excluded.rsi9,
			rsi14 = excluded.rsi14,
			rsi21 = excluded.rsi21,
			macd_fast = excluded.macd_fast,
			macd_slow = excluded.macd_slow,
			macd_histogram = excluded.macd_histogram,
			source_price_point_id = excluded.source_price_point_id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare indicator upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if !rec.HasValues() {
			return fmt.Errorf("refusing to persist all-null indicator record for %s %s", rec.Symbol, rec.Date)
		}

		_, err := stmt.Exec(
			rec.Symbol, string(rec.Region), rec.Date,
			nullable(rec.MA50), nullable(rec.MA200),
			nullable(rec.RSI9), nullable(rec.RSI14), nullable(rec.RSI21),
			nullable(rec.MACDFast), nullable(rec.MACDSlow), nullable(rec.MACDHistogram),
			rec.SourcePricePointID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert indicator record %s %s: %w", rec.Symbol, rec.Date, err)
		}
	}

	return nil
}

func scanRecord(rows *sql.Rows) (domain.IndicatorRecord, error) {
	var rec domain.IndicatorRecord
	var ma50, ma200, rsi9, rsi14, rsi21, macdFast, macdSlow, macdHist sql.NullFloat64

	err := rows.Scan(
		&rec.Symbol, &rec.Region, &rec.Date,
		&ma50, &ma200, &rsi9, &rsi14, &rsi21,
		&macdFast, &macdSlow, &macdHist,
		&rec.SourcePricePointID,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan indicator record: %w", err)
	}

	rec.MA50 = fromNull(ma50)
	rec.MA200 = fromNull(ma200)
	rec.RSI9 = fromNull(rsi9)
	rec.RSI14 = fromNull(rsi14)
	rec.RSI21 = fromNull(rsi21)
	rec.MACDFast = fromNull(macdFast)
	rec.MACDSlow = fromNull(macdSlow)
	rec.MACDHistogram = fromNull(macdHist)

	return rec, nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
