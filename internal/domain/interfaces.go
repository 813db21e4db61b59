package domain

// The engine talks to its collaborator stores only through these interfaces.
// Concrete sqlite implementations live in the module packages; tests inject
// in-memory fakes.

// PriceSource provides read access to historical and current prices.
type PriceSource interface {
	// GetHistoricalPrices returns all price points for a symbol, ascending by
	// date. An unknown symbol returns an empty slice, not an error.
	GetHistoricalPrices(symbol string, region Region) ([]PricePoint, error)

	// GetCurrentPrice returns the current price snapshot, or nil when no
	// snapshot exists.
	GetCurrentPrice(symbol string, region Region) (*CurrentPrice, error)

	// GetPriceOnOrAfter returns the earliest price point dated on or after
	// date, or nil if none exists.
	GetPriceOnOrAfter(symbol string, region Region, date string) (*PricePoint, error)

	// GetPriceBefore returns the latest price point dated strictly before
	// date, or nil if none exists.
	GetPriceBefore(symbol string, region Region, date string) (*PricePoint, error)

	// ListSymbols returns every symbol with historical data in the region.
	ListSymbols(region Region) ([]string, error)
}

// IndicatorStore persists derived indicator records.
type IndicatorStore interface {
	GetIndicatorRecords(symbol string, region Region) ([]IndicatorRecord, error)

	// UpsertIndicatorRecords applies records in the given order: insert if
	// absent, update in place if present, keyed by (symbol, date, region).
	UpsertIndicatorRecords(records []IndicatorRecord) error
}

// PortfolioStore provides positions and cash balances.
type PortfolioStore interface {
	GetPortfolioPositions(region Region) ([]Position, error)
	GetCashBalance(region Region) (float64, error)
}

// BenchmarkStore provides reference ETF compositions.
type BenchmarkStore interface {
	GetETFHoldings(etfSymbol string) ([]BenchmarkWeight, error)
}

// HoldingsStore persists the materialized holdings view.
type HoldingsStore interface {
	// ReplaceHoldings atomically swaps the region's holdings table for rows.
	// Readers never observe a partially replaced region.
	ReplaceHoldings(region Region, rows []HoldingsRow) error

	GetHoldings(region Region) ([]HoldingsRow, error)
}
