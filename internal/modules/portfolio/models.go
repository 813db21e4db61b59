package portfolio

// Schema for portfolio positions and the security metadata they join with,
// plus per-region cash balances. Positions and balances are maintained by the
// out-of-scope import/sync layer; the engine only reads them.
const Schema = `
CREATE TABLE IF NOT EXISTS securities (
    symbol TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    stock_type TEXT NOT NULL DEFAULT 'stock'
);

CREATE TABLE IF NOT EXISTS positions (
    id INTEGER PRIMARY KEY,
    region TEXT NOT NULL,
    symbol TEXT NOT NULL,
    quantity REAL NOT NULL,
    UNIQUE (region, symbol)
);

CREATE INDEX IF NOT EXISTS idx_positions_region ON positions(region);

CREATE TABLE IF NOT EXISTS cash_balances (
    region TEXT PRIMARY KEY,
    balance REAL NOT NULL DEFAULT 0
);
`
