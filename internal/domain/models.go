package domain

// Region identifies one of the tracked portfolio regions.
type Region string

const (
	RegionUSD  Region = "USD"
	RegionCAD  Region = "CAD"
	RegionINTL Region = "INTL"
)

// RegionConfig describes a region's data-driven parameters: which benchmark
// ETF it tracks and which exchange suffixes its tickers may carry. One table
// replaces per-region hand-coded paths.
type RegionConfig struct {
	Region         Region
	BenchmarkETF   string
	TickerSuffixes []string
}

// Regions is the fixed region descriptor table.
var Regions = []RegionConfig{
	{Region: RegionUSD, BenchmarkETF: "SPY"},
	{Region: RegionCAD, BenchmarkETF: "XIC", TickerSuffixes: []string{".TO", ".V"}},
	{Region: RegionINTL, BenchmarkETF: "ACWX"},
}

// RegionConfigFor returns the descriptor for a region, or nil for an unknown
// region.
func RegionConfigFor(region Region) *RegionConfig {
	for i := range Regions {
		if Regions[i].Region == region {
			return &Regions[i]
		}
	}
	return nil
}

// PricePoint is one daily OHLC bar for a (symbol, region), immutable once
// stored. Close and AdjustedClose are pointers because upstream feeds deliver
// incomplete rows; a point with neither is a gap, not a zero.
type PricePoint struct {
	ID            int64    `json:"id"`
	Symbol        string   `json:"symbol"`
	Region        Region   `json:"region"`
	Date          string   `json:"date"` // YYYY-MM-DD
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Close         *float64 `json:"close,omitempty"`
	AdjustedClose *float64 `json:"adjusted_close,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
}

// EffectivePrice returns the price used for derivations: adjusted close with
// close as fallback. ok is false when the point is a data gap (both null or
// the value is not positive).
func (p PricePoint) EffectivePrice() (float64, bool) {
	if p.AdjustedClose != nil && *p.AdjustedClose > 0 {
		return *p.AdjustedClose, true
	}
	if p.Close != nil && *p.Close > 0 {
		return *p.Close, true
	}
	return 0, false
}

// CurrentPrice is the single-row-per-symbol price snapshot.
type CurrentPrice struct {
	Symbol    string  `json:"symbol"`
	Region    Region  `json:"region"`
	Price     float64 `json:"price"`
	UpdatedAt string  `json:"updated_at"`
}

// IndicatorRecord holds derived technical indicators for one (symbol, date,
// region). Nil fields mean "insufficient data", distinct from a computed zero.
// SourcePricePointID references the PricePoint the record derives from.
type IndicatorRecord struct {
	Symbol             string   `json:"symbol"`
	Region             Region   `json:"region"`
	Date               string   `json:"date"`
	MA50               *float64 `json:"ma50,omitempty"`
	MA200              *float64 `json:"ma200,omitempty"`
	RSI9               *float64 `json:"rsi9,omitempty"`
	RSI14              *float64 `json:"rsi14,omitempty"`
	RSI21              *float64 `json:"rsi21,omitempty"`
	MACDFast           *float64 `json:"macd_fast,omitempty"`
	MACDSlow           *float64 `json:"macd_slow,omitempty"`
	MACDHistogram      *float64 `json:"macd_histogram,omitempty"`
	SourcePricePointID int64    `json:"source_price_point_id"`
}

// HasValues reports whether at least one indicator field is populated.
// A record with every field nil is invalid and must not be persisted.
func (r IndicatorRecord) HasValues() bool {
	return r.MA50 != nil || r.MA200 != nil ||
		r.RSI9 != nil || r.RSI14 != nil || r.RSI21 != nil ||
		r.MACDFast != nil || r.MACDSlow != nil || r.MACDHistogram != nil
}

// BenchmarkWeight is one constituent of a reference ETF, refreshed wholesale.
type BenchmarkWeight struct {
	ETFSymbol string  `json:"etf_symbol"`
	Ticker    string  `json:"ticker"`
	Weight    float64 `json:"weight"` // percent of index
}

// Position is a portfolio position joined with its security metadata.
type Position struct {
	Region    Region  `json:"region"`
	Symbol    string  `json:"symbol"`
	Company   string  `json:"company"`
	StockType string  `json:"stock_type"`
	Quantity  float64 `json:"quantity"`
}

// CashSymbol is the symbol of the synthetic cash row in a holdings table.
const CashSymbol = "CASH"

// HoldingsRow is one row of the per-region holdings table: a materialized
// view regenerated wholesale on every aggregation run.
type HoldingsRow struct {
	Region                    Region  `json:"region"`
	Symbol                    string  `json:"symbol"`
	Company                   string  `json:"company"`
	StockType                 string  `json:"stock_type"`
	Quantity                  float64 `json:"quantity"`
	CurrentPrice              float64 `json:"current_price"`
	NetAssetValue             float64 `json:"net_asset_value"`
	PortfolioWeight           float64 `json:"portfolio_weight"`
	BenchmarkWeight           float64 `json:"benchmark_weight"`
	DeltaWeight               float64 `json:"delta_weight"`
	DailyChangePercent        float64 `json:"daily_change_percent"`
	MTDChangePercent          float64 `json:"mtd_change_percent"`
	YTDChangePercent          float64 `json:"ytd_change_percent"`
	SixMonthChangePercent     float64 `json:"six_month_change_percent"`
	FiftyTwoWeekChangePercent float64 `json:"fifty_two_week_change_percent"`
}
