package benchmark

// Schema for reference-index compositions. Snapshots are refreshed wholesale
// per ETF (full replace), never incrementally.
const Schema = `
CREATE TABLE IF NOT EXISTS etf_holdings (
    id INTEGER PRIMARY KEY,
    etf_symbol TEXT NOT NULL,
    ticker TEXT NOT NULL,
    weight REAL NOT NULL,
    UNIQUE (etf_symbol, ticker)
);

CREATE INDEX IF NOT EXISTS idx_etf_holdings_etf ON etf_holdings(etf_symbol);
`
