package holdings

// Schema for the materialized holdings view. Rows are regenerated wholesale
// per region (delete-then-insert in one transaction); this table is never a
// source of truth.
const Schema = `
CREATE TABLE IF NOT EXISTS holdings (
    id INTEGER PRIMARY KEY,
    region TEXT NOT NULL,
    symbol TEXT NOT NULL,
    company TEXT NOT NULL DEFAULT '',
    stock_type TEXT NOT NULL DEFAULT 'stock',
    quantity REAL NOT NULL DEFAULT 0,
    current_price REAL NOT NULL DEFAULT 0,
    net_asset_value REAL NOT NULL DEFAULT 0,
    portfolio_weight REAL NOT NULL DEFAULT 0,
    benchmark_weight REAL NOT NULL DEFAULT 0,
    delta_weight REAL NOT NULL DEFAULT 0,
    daily_change_percent REAL NOT NULL DEFAULT 0,
    mtd_change_percent REAL NOT NULL DEFAULT 0,
    ytd_change_percent REAL NOT NULL DEFAULT 0,
    six_month_change_percent REAL NOT NULL DEFAULT 0,
    fifty_two_week_change_percent REAL NOT NULL DEFAULT 0,
    UNIQUE (region, symbol)
);

CREATE INDEX IF NOT EXISTS idx_holdings_region ON holdings(region);
`

// RegionResult reports one region's outcome in an aggregate-all run.
type RegionResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}
