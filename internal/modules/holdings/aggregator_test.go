package holdings

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/internal/modules/benchmark"
	"github.com/akontos/portfolio-tracker/pkg/logger"
)

type fakePortfolioStore struct {
	positions    map[domain.Region][]domain.Position
	cash         map[domain.Region]float64
	positionsErr map[domain.Region]error
}

func (f *fakePortfolioStore) GetPortfolioPositions(region domain.Region) ([]domain.Position, error) {
	if err := f.positionsErr[region]; err != nil {
		return nil, err
	}
	return f.positions[region], nil
}

func (f *fakePortfolioStore) GetCashBalance(region domain.Region) (float64, error) {
	return f.cash[region], nil
}

type fakePriceSource struct {
	current map[string]*domain.CurrentPrice
	history map[string][]domain.PricePoint // sorted by date
}

func newFakePriceSource() *fakePriceSource {
	return &fakePriceSource{
		current: make(map[string]*domain.CurrentPrice),
		history: make(map[string][]domain.PricePoint),
	}
}

func (f *fakePriceSource) setCurrent(symbol string, region domain.Region, price float64) {
	f.current[symbol+"/"+string(region)] = &domain.CurrentPrice{Symbol: symbol, Region: region, Price: price}
}

func (f *fakePriceSource) addPoint(symbol string, region domain.Region, date string, close float64) {
	key := symbol + "/" + string(region)
	c := close
	f.history[key] = append(f.history[key], domain.PricePoint{
		Symbol: symbol, Region: region, Date: date, Close: &c,
	})
	sort.Slice(f.history[key], func(i, j int) bool {
		return f.history[key][i].Date < f.history[key][j].Date
	})
}

func (f *fakePriceSource) addGap(symbol string, region domain.Region, date string) {
	key := symbol + "/" + string(region)
	f.history[key] = append(f.history[key], domain.PricePoint{
		Symbol: symbol, Region: region, Date: date,
	})
	sort.Slice(f.history[key], func(i, j int) bool {
		return f.history[key][i].Date < f.history[key][j].Date
	})
}

func (f *fakePriceSource) GetHistoricalPrices(symbol string, region domain.Region) ([]domain.PricePoint, error) {
	return f.history[symbol+"/"+string(region)], nil
}

func (f *fakePriceSource) GetCurrentPrice(symbol string, region domain.Region) (*domain.CurrentPrice, error) {
	return f.current[symbol+"/"+string(region)], nil
}

func (f *fakePriceSource) GetPriceOnOrAfter(symbol string, region domain.Region, date string) (*domain.PricePoint, error) {
	for _, p := range f.history[symbol+"/"+string(region)] {
		if p.Date >= date {
			point := p
			return &point, nil
		}
	}
	return nil, nil
}

func (f *fakePriceSource) GetPriceBefore(symbol string, region domain.Region, date string) (*domain.PricePoint, error) {
	points := f.history[symbol+"/"+string(region)]
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Date < date {
			point := points[i]
			return &point, nil
		}
	}
	return nil, nil
}

func (f *fakePriceSource) ListSymbols(region domain.Region) ([]string, error) {
	return nil, nil
}

type fakeHoldingsStore struct {
	replaced map[domain.Region][]domain.HoldingsRow
	calls    int
}

func newFakeHoldingsStore() *fakeHoldingsStore {
	return &fakeHoldingsStore{replaced: make(map[domain.Region][]domain.HoldingsRow)}
}

func (f *fakeHoldingsStore) ReplaceHoldings(region domain.Region, rows []domain.HoldingsRow) error {
	f.replaced[region] = rows
	f.calls++
	return nil
}

func (f *fakeHoldingsStore) GetHoldings(region domain.Region) ([]domain.HoldingsRow, error) {
	return f.replaced[region], nil
}

type fakeBenchmarkStore struct {
	holdings map[string][]domain.BenchmarkWeight
}

func (f *fakeBenchmarkStore) GetETFHoldings(etfSymbol string) ([]domain.BenchmarkWeight, error) {
	return f.holdings[etfSymbol], nil
}

type aggregatorFixture struct {
	portfolio *fakePortfolioStore
	prices    *fakePriceSource
	store     *fakeHoldingsStore
	agg       *Aggregator
}

func newFixture(benchmarks map[string][]domain.BenchmarkWeight) *aggregatorFixture {
	log := logger.New(logger.Config{Level: "error"})
	f := &aggregatorFixture{
		portfolio: &fakePortfolioStore{
			positions: make(map[domain.Region][]domain.Position),
			cash:      make(map[domain.Region]float64),
		},
		prices: newFakePriceSource(),
		store:  newFakeHoldingsStore(),
	}
	resolver := benchmark.NewResolver(&fakeBenchmarkStore{holdings: benchmarks}, log)
	f.agg = NewAggregator(f.portfolio, f.prices, resolver, f.store, log)
	f.agg.now = func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func rowBySymbol(rows []domain.HoldingsRow, symbol string) *domain.HoldingsRow {
	for i := range rows {
		if rows[i].Symbol == symbol {
			return &rows[i]
		}
	}
	return nil
}

func TestAggregateRegion_WeightClosure(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "AAPL", Company: "Apple", StockType: "stock", Quantity: 10},
		{Region: domain.RegionUSD, Symbol: "MSFT", Company: "Microsoft", StockType: "stock", Quantity: 5},
	}
	f.portfolio.cash[domain.RegionUSD] = 1000
	f.prices.setCurrent("AAPL", domain.RegionUSD, 110)
	f.prices.setCurrent("MSFT", domain.RegionUSD, 400)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var sum float64
	for _, row := range rows {
		sum += row.PortfolioWeight
	}
	assert.InDelta(t, 100, sum, 0.01, "portfolio weights must close to 100")

	// NAV: 10*110 + 5*400 + 1000 cash = 4100
	aapl := rowBySymbol(rows, "AAPL")
	require.NotNil(t, aapl)
	assert.InDelta(t, 1100, aapl.NetAssetValue, 1e-9)
	assert.InDelta(t, 1100.0/4100*100, aapl.PortfolioWeight, 1e-9)
}

func TestAggregateRegion_CashRowComesFirst(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "AAPL", Quantity: 1},
	}
	f.portfolio.cash[domain.RegionUSD] = 500
	f.prices.setCurrent("AAPL", domain.RegionUSD, 100)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	cash := rows[0]
	assert.Equal(t, domain.CashSymbol, cash.Symbol)
	assert.Equal(t, "cash", cash.StockType)
	assert.Equal(t, 1.0, cash.CurrentPrice)
	assert.Equal(t, 500.0, cash.NetAssetValue)
	assert.Zero(t, cash.YTDChangePercent)
	assert.Zero(t, cash.BenchmarkWeight)
}

func TestAggregateRegion_CashOnlyPortfolio(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.cash[domain.RegionUSD] = 2500

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.CashSymbol, rows[0].Symbol)
	assert.InDelta(t, 100, rows[0].PortfolioWeight, 1e-9)
}

func TestAggregateRegion_EmptyPortfolioEmitsNoRows(t *testing.T) {
	f := newFixture(nil)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 1, f.store.calls, "replace still runs so the view clears")
}

func TestAggregateRegion_SkipsPositionsWithoutCurrentPrice(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "AAPL", Quantity: 10},
		{Region: domain.RegionUSD, Symbol: "STALE", Quantity: 10},
	}
	f.portfolio.cash[domain.RegionUSD] = 100
	f.prices.setCurrent("AAPL", domain.RegionUSD, 100)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)

	assert.Nil(t, rowBySymbol(rows, "STALE"))
	require.NotNil(t, rowBySymbol(rows, "AAPL"))

	var sum float64
	for _, row := range rows {
		sum += row.PortfolioWeight
	}
	assert.InDelta(t, 100, sum, 0.01, "weights close over the priced positions")
}

func TestAggregateRegion_HorizonReturns(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "AAPL", Quantity: 1},
	}
	f.prices.setCurrent("AAPL", domain.RegionUSD, 110)
	// First trading day of the year and the most recent close
	f.prices.addPoint("AAPL", domain.RegionUSD, "2024-01-02", 100)
	f.prices.addPoint("AAPL", domain.RegionUSD, "2024-06-14", 108)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)

	aapl := rowBySymbol(rows, "AAPL")
	require.NotNil(t, aapl)

	// YTD reference is the first close on or after Jan 1
	assert.InDelta(t, 10, aapl.YTDChangePercent, 1e-9)
	// MTD and daily both resolve to the 2024-06-14 close
	assert.InDelta(t, (110.0-108)/108*100, aapl.MTDChangePercent, 1e-9)
	assert.InDelta(t, (110.0-108)/108*100, aapl.DailyChangePercent, 1e-9)
}

func TestAggregateRegion_HorizonFallsBackToPriceBefore(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "OLD", Quantity: 1},
	}
	f.prices.setCurrent("OLD", domain.RegionUSD, 100)
	// Only history predates every horizon boundary
	f.prices.addPoint("OLD", domain.RegionUSD, "2020-01-02", 50)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)

	old := rowBySymbol(rows, "OLD")
	require.NotNil(t, old)
	assert.InDelta(t, 100, old.YTDChangePercent, 1e-9)
	assert.InDelta(t, 100, old.FiftyTwoWeekChangePercent, 1e-9)
}

func TestAggregateRegion_HorizonStepsPastGapBars(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "AAPL", Quantity: 1},
	}
	f.prices.setCurrent("AAPL", domain.RegionUSD, 110)
	// The first bar of the year is a gap; the YTD reference must be the next
	// usable close, not the 0 sentinel
	f.prices.addGap("AAPL", domain.RegionUSD, "2024-01-02")
	f.prices.addPoint("AAPL", domain.RegionUSD, "2024-01-03", 100)
	// The most recent bar is a gap; daily change steps back to the close
	// before it
	f.prices.addPoint("AAPL", domain.RegionUSD, "2024-06-13", 100)
	f.prices.addGap("AAPL", domain.RegionUSD, "2024-06-14")

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)

	aapl := rowBySymbol(rows, "AAPL")
	require.NotNil(t, aapl)
	assert.InDelta(t, 10, aapl.YTDChangePercent, 1e-9)
	assert.InDelta(t, 10, aapl.DailyChangePercent, 1e-9)
}

func TestAggregateRegion_AllGapHistoryYieldsZeroReturns(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "GAPPY", Quantity: 1},
	}
	f.prices.setCurrent("GAPPY", domain.RegionUSD, 42)
	f.prices.addGap("GAPPY", domain.RegionUSD, "2024-01-02")
	f.prices.addGap("GAPPY", domain.RegionUSD, "2024-06-14")

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)

	gappy := rowBySymbol(rows, "GAPPY")
	require.NotNil(t, gappy)
	assert.Zero(t, gappy.YTDChangePercent)
	assert.Zero(t, gappy.DailyChangePercent)
}

func TestAggregateRegion_NoHistoryYieldsZeroReturns(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.positions[domain.RegionUSD] = []domain.Position{
		{Region: domain.RegionUSD, Symbol: "IPO", Quantity: 1},
	}
	f.prices.setCurrent("IPO", domain.RegionUSD, 42)

	rows, err := f.agg.AggregateRegion(domain.RegionUSD)
	require.NoError(t, err)

	ipo := rowBySymbol(rows, "IPO")
	require.NotNil(t, ipo)
	assert.Zero(t, ipo.DailyChangePercent)
	assert.Zero(t, ipo.MTDChangePercent)
	assert.Zero(t, ipo.YTDChangePercent)
	assert.Zero(t, ipo.SixMonthChangePercent)
	assert.Zero(t, ipo.FiftyTwoWeekChangePercent)
}

func TestAggregateRegion_DeltaWeightAgainstBenchmark(t *testing.T) {
	f := newFixture(map[string][]domain.BenchmarkWeight{
		"XIC": {{ETFSymbol: "XIC", Ticker: "RY.TO", Weight: 3.2}},
	})
	f.portfolio.positions[domain.RegionCAD] = []domain.Position{
		{Region: domain.RegionCAD, Symbol: "RY", Quantity: 10},
	}
	f.prices.setCurrent("RY", domain.RegionCAD, 100)

	rows, err := f.agg.AggregateRegion(domain.RegionCAD)
	require.NoError(t, err)

	ry := rowBySymbol(rows, "RY")
	require.NotNil(t, ry)
	assert.Equal(t, 3.2, ry.BenchmarkWeight, "suffix-stripped ticker must match")
	assert.InDelta(t, ry.PortfolioWeight-3.2, ry.DeltaWeight, 1e-9)
}

func TestAggregateAll_FailingRegionDoesNotAbortSiblings(t *testing.T) {
	f := newFixture(nil)
	f.portfolio.cash[domain.RegionUSD] = 100
	f.portfolio.positionsErr = map[domain.Region]error{
		domain.RegionCAD: errors.New("positions table unavailable"),
	}

	results := f.agg.AggregateAll()
	require.Len(t, results, len(domain.Regions))

	cad := results[domain.RegionCAD]
	assert.False(t, cad.Success)
	assert.Contains(t, cad.Message, "positions table unavailable")

	usd := results[domain.RegionUSD]
	assert.True(t, usd.Success)
	assert.Equal(t, 1, usd.Count)

	intl := results[domain.RegionINTL]
	assert.True(t, intl.Success)
}
