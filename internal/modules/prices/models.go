package prices

// Schema for the per-symbol history database files. Each (symbol, region)
// pair gets its own sqlite file under the history directory; rows are
// append-only and the rowid doubles as the PricePoint id.
const historySchema = `
CREATE TABLE IF NOT EXISTS daily_prices (
    id INTEGER PRIMARY KEY,
    date TEXT UNIQUE NOT NULL,
    open_price REAL NOT NULL DEFAULT 0,
    high_price REAL NOT NULL DEFAULT 0,
    low_price REAL NOT NULL DEFAULT 0,
    close_price REAL,
    adjusted_close REAL,
    volume INTEGER
);

CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date);
`

// Schema for app-database tables owned by this module: the single-row
// current-price snapshots and the catalog of symbols with history files.
const Schema = `
CREATE TABLE IF NOT EXISTS current_prices (
    symbol TEXT NOT NULL,
    region TEXT NOT NULL,
    price REAL NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (symbol, region)
);

CREATE TABLE IF NOT EXISTS tracked_symbols (
    symbol TEXT NOT NULL,
    region TEXT NOT NULL,
    PRIMARY KEY (symbol, region)
);
`
