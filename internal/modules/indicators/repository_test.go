package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akontos/portfolio-tracker/internal/database"
	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/pkg/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db.Conn(), logger.New(logger.Config{Level: "error"}))
	require.NoError(t, repo.InitSchema())
	return repo
}

func ptr(v float64) *float64 { return &v }

func TestRepository_UpsertInsertsThenUpdates(t *testing.T) {
	repo := newTestRepo(t)

	rec := domain.IndicatorRecord{
		Symbol:             "AAPL",
		Region:             domain.RegionUSD,
		Date:               "2024-03-01",
		RSI14:              ptr(55.5),
		SourcePricePointID: 7,
	}
	require.NoError(t, repo.UpsertIndicatorRecords([]domain.IndicatorRecord{rec}))

	// Same key, new values: must update in place, not duplicate
	rec.RSI14 = ptr(60.0)
	rec.MA50 = ptr(101.25)
	require.NoError(t, repo.UpsertIndicatorRecords([]domain.IndicatorRecord{rec}))

	records, err := repo.GetIndicatorRecords("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 60.0, *records[0].RSI14)
	assert.Equal(t, 101.25, *records[0].MA50)
	assert.Nil(t, records[0].MA200)
	assert.Equal(t, int64(7), records[0].SourcePricePointID)
}

func TestRepository_KeyIncludesRegion(t *testing.T) {
	repo := newTestRepo(t)

	usd := domain.IndicatorRecord{
		Symbol: "RY", Region: domain.RegionUSD, Date: "2024-03-01",
		RSI14: ptr(40), SourcePricePointID: 1,
	}
	cad := domain.IndicatorRecord{
		Symbol: "RY", Region: domain.RegionCAD, Date: "2024-03-01",
		RSI14: ptr(70), SourcePricePointID: 1,
	}
	require.NoError(t, repo.UpsertIndicatorRecords([]domain.IndicatorRecord{usd, cad}))

	usdRecords, err := repo.GetIndicatorRecords("RY", domain.RegionUSD)
	require.NoError(t, err)
	cadRecords, err := repo.GetIndicatorRecords("RY", domain.RegionCAD)
	require.NoError(t, err)

	require.Len(t, usdRecords, 1)
	require.Len(t, cadRecords, 1)
	assert.Equal(t, 40.0, *usdRecords[0].RSI14)
	assert.Equal(t, 70.0, *cadRecords[0].RSI14)
}

func TestRepository_RejectsAllNullRecord(t *testing.T) {
	repo := newTestRepo(t)

	rec := domain.IndicatorRecord{
		Symbol: "AAPL", Region: domain.RegionUSD, Date: "2024-03-01",
		SourcePricePointID: 1,
	}
	err := repo.UpsertIndicatorRecords([]domain.IndicatorRecord{rec})
	assert.Error(t, err)

	records, err := repo.GetIndicatorRecords("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRepository_RecordsOrderedByDate(t *testing.T) {
	repo := newTestRepo(t)

	dates := []string{"2024-03-03", "2024-03-01", "2024-03-02"}
	for _, date := range dates {
		rec := domain.IndicatorRecord{
			Symbol: "AAPL", Region: domain.RegionUSD, Date: date,
			RSI14: ptr(50), SourcePricePointID: 1,
		}
		require.NoError(t, repo.UpsertIndicatorRecords([]domain.IndicatorRecord{rec}))
	}

	records, err := repo.GetIndicatorRecords("AAPL", domain.RegionUSD)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2024-03-01", records[0].Date)
	assert.Equal(t, "2024-03-02", records[1].Date)
	assert.Equal(t, "2024-03-03", records[2].Date)
}
