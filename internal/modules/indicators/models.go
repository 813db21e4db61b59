package indicators

// Indicator parameters. The seeding window must cover the longest trailing
// requirement: MA200 needs 200 prior points, MACD needs slow+signal.
const (
	ma50Period  = 50
	ma200Period = 200

	rsiShortPeriod = 9
	rsiMidPeriod   = 14
	rsiLongPeriod  = 21
)

// Schema for derived indicator rows. All indicator columns are nullable:
// NULL means "insufficient data", never zero. source_price_point_id holds the
// rowid of the originating bar in the symbol's history file.
const Schema = `
CREATE TABLE IF NOT EXISTS technical_indicators (
    id INTEGER PRIMARY KEY,
    symbol TEXT NOT NULL,
    region TEXT NOT NULL,
    date TEXT NOT NULL,
    ma50 REAL,
    ma200 REAL,
    rsi9 REAL,
    rsi14 REAL,
    rsi21 REAL,
    macd_fast REAL,
    macd_slow REAL,
    macd_histogram REAL,
    source_price_point_id INTEGER NOT NULL,
    UNIQUE (symbol, date, region)
);

CREATE INDEX IF NOT EXISTS idx_technical_indicators_symbol_region
    ON technical_indicators(symbol, region);
`

// UpdateResult reports a single-symbol indicator update.
type UpdateResult struct {
	RecordsProcessed int `json:"records_processed"`
}

// RegionUpdateResult reports a region-wide sweep. A failed symbol does not
// abort its siblings; callers can always tell "nothing updated" from
// "partially updated".
type RegionUpdateResult struct {
	TotalProcessed int      `json:"total_processed"`
	Processed      int      `json:"processed"`
	Succeeded      int      `json:"succeeded"`
	Failed         int      `json:"failed"`
	Errors         []string `json:"errors,omitempty"`
}
