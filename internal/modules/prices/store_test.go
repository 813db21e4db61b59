package prices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akontos/portfolio-tracker/internal/database"
	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(t.TempDir(), db.Conn(), logger.New(logger.Config{Level: "error"}))
	require.NoError(t, store.InitSchema())
	return store
}

func point(date string, close float64) domain.PricePoint {
	c := close
	return domain.PricePoint{Date: date, Open: close, High: close, Low: close, Close: &c}
}

func TestGetHistoricalPrices_UnknownSymbolIsEmpty(t *testing.T) {
	store := newTestStore(t)

	points, err := store.GetHistoricalPrices("NOPE", domain.RegionUSD)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestAppendPricePoints_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	in := []domain.PricePoint{
		point("2024-01-03", 102),
		point("2024-01-02", 101),
	}
	require.NoError(t, store.AppendPricePoints("AAPL", domain.RegionUSD, in))

	points, err := store.GetHistoricalPrices("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Ascending by date regardless of insert order
	assert.Equal(t, "2024-01-02", points[0].Date)
	assert.Equal(t, "2024-01-03", points[1].Date)
	assert.Equal(t, 101.0, *points[0].Close)
	assert.Greater(t, points[0].ID, int64(0))
	assert.Equal(t, "AAPL", points[0].Symbol)
	assert.Equal(t, domain.RegionUSD, points[0].Region)
}

func TestAppendPricePoints_HistoryIsAppendOnly(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AppendPricePoints("AAPL", domain.RegionUSD, []domain.PricePoint{point("2024-01-02", 101)}))

	// Re-inserting the same date with a different close must not overwrite
	require.NoError(t, store.AppendPricePoints("AAPL", domain.RegionUSD, []domain.PricePoint{point("2024-01-02", 999)}))

	points, err := store.GetHistoricalPrices("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 101.0, *points[0].Close)
}

func TestAppendPricePoints_PreservesNullCloses(t *testing.T) {
	store := newTestStore(t)

	gap := domain.PricePoint{Date: "2024-01-02", Open: 100, High: 101, Low: 99}
	require.NoError(t, store.AppendPricePoints("GAPPY", domain.RegionUSD, []domain.PricePoint{gap}))

	points, err := store.GetHistoricalPrices("GAPPY", domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Nil(t, points[0].Close)
	assert.Nil(t, points[0].AdjustedClose)

	_, ok := points[0].EffectivePrice()
	assert.False(t, ok)
}

func TestQueryOne_HorizonLookups(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.AppendPricePoints("AAPL", domain.RegionUSD, []domain.PricePoint{
		point("2024-01-02", 100),
		point("2024-01-05", 103),
		point("2024-01-08", 106),
	}))

	// On-or-after lands on the exact date when present
	p, err := store.GetPriceOnOrAfter("AAPL", domain.RegionUSD, "2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2024-01-05", p.Date)

	// Weekend-style miss rolls forward to the next trading day
	p, err = store.GetPriceOnOrAfter("AAPL", domain.RegionUSD, "2024-01-06")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2024-01-08", p.Date)

	// Past the end of history
	p, err = store.GetPriceOnOrAfter("AAPL", domain.RegionUSD, "2024-02-01")
	require.NoError(t, err)
	assert.Nil(t, p)

	// Strictly before
	p, err = store.GetPriceBefore("AAPL", domain.RegionUSD, "2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2024-01-02", p.Date)

	// Nothing before the first bar
	p, err = store.GetPriceBefore("AAPL", domain.RegionUSD, "2024-01-02")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestCurrentPrice_UpsertAndRead(t *testing.T) {
	store := newTestStore(t)

	cp, err := store.GetCurrentPrice("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	assert.Nil(t, cp)

	require.NoError(t, store.UpsertCurrentPrice("AAPL", domain.RegionUSD, 180.5))
	require.NoError(t, store.UpsertCurrentPrice("AAPL", domain.RegionUSD, 181.0))

	cp, err = store.GetCurrentPrice("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 181.0, cp.Price)
	assert.NotEmpty(t, cp.UpdatedAt)
}

func TestListSymbols_CatalogTracksDottedSymbols(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AppendPricePoints("RY.TO", domain.RegionCAD, []domain.PricePoint{point("2024-01-02", 130)}))
	require.NoError(t, store.AppendPricePoints("SHOP.TO", domain.RegionCAD, []domain.PricePoint{point("2024-01-02", 95)}))
	require.NoError(t, store.AppendPricePoints("AAPL", domain.RegionUSD, []domain.PricePoint{point("2024-01-02", 180)}))

	cad, err := store.ListSymbols(domain.RegionCAD)
	require.NoError(t, err)
	assert.Equal(t, []string{"RY.TO", "SHOP.TO"}, cad, "catalog preserves the original dotted form")

	usd, err := store.ListSymbols(domain.RegionUSD)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, usd)
}

func TestHistoryFilesAreIsolatedByRegion(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AppendPricePoints("RY", domain.RegionCAD, []domain.PricePoint{point("2024-01-02", 130)}))

	points, err := store.GetHistoricalPrices("RY", domain.RegionUSD)
	require.NoError(t, err)
	assert.Empty(t, points, "same symbol in another region has its own file")
}
