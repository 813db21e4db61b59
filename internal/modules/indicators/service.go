package indicators

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/pkg/formulas"
)

// seedLookback is how many points before the earliest new date the
// calculation window starts, so trailing-window indicators are correctly
// seeded: MA200 needs 200 prior points, MACD needs slow+signal.
var seedLookback = maxInt(ma200Period, formulas.DefaultMACDSlowPeriod+formulas.DefaultMACDSignalPeriod)

// Service brings stored indicator records up to date with the price series,
// computing only what is missing and never discarding correct prior results.
type Service struct {
	prices domain.PriceSource
	store  domain.IndicatorStore
	pause  time.Duration
	log    zerolog.Logger
}

// NewService creates a new indicator service
func NewService(prices domain.PriceSource, store domain.IndicatorStore, pause time.Duration, log zerolog.Logger) *Service {
	return &Service{
		prices: prices,
		store:  store,
		pause:  pause,
		log:    log.With().Str("service", "indicators").Logger(),
	}
}

// UpdateSymbol computes and upserts indicator records for every price date
// that has no record yet. With forceRefreshLatest the single most recent date
// is recomputed as well, to reconcile a same-day price correction. Running
// twice with unchanged input is a no-op on the second run.
func (s *Service) UpdateSymbol(symbol string, region domain.Region, forceRefreshLatest bool) (UpdateResult, error) {
	points, err := s.prices.GetHistoricalPrices(symbol, region)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("load prices for %s/%s: %w", symbol, region, err)
	}

	// Exclude gaps: points without a usable close never enter the series,
	// so a null or zero close cannot corrupt RSI/MA values.
	valid := make([]domain.PricePoint, 0, len(points))
	closes := make([]float64, 0, len(points))
	for _, p := range points {
		price, ok := p.EffectivePrice()
		if !ok {
			continue
		}
		valid = append(valid, p)
		closes = append(closes, price)
	}

	if len(valid) == 0 {
		// Missing data is not an error
		return UpdateResult{}, nil
	}

	existing, err := s.store.GetIndicatorRecords(symbol, region)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("load indicator records for %s/%s: %w", symbol, region, err)
	}
	have := make(map[string]bool, len(existing))
	for _, rec := range existing {
		have[rec.Date] = true
	}

	newDates := make(map[string]bool)
	for _, p := range valid {
		if !have[p.Date] {
			newDates[p.Date] = true
		}
	}
	if forceRefreshLatest {
		newDates[valid[len(valid)-1].Date] = true
	}

	if len(newDates) == 0 {
		return UpdateResult{}, nil
	}

	// Window back from the earliest new date so trailing indicators seed
	// from enough history (or from the start of history if shorter).
	firstNew := 0
	for i, p := range valid {
		if newDates[p.Date] {
			firstNew = i
			break
		}
	}
	start := firstNew - seedLookback
	if start < 0 {
		start = 0
	}
	window := valid[start:]
	windowCloses := closes[start:]

	ma50 := formulas.MovingAverage(windowCloses, ma50Period)
	ma200 := formulas.MovingAverage(windowCloses, ma200Period)
	rsis := formulas.RSIMulti(windowCloses, rsiShortPeriod, rsiMidPeriod, rsiLongPeriod)
	macd := formulas.MACDHistogram(windowCloses, formulas.DefaultMACDFastPeriod, formulas.DefaultMACDSlowPeriod)

	var records []domain.IndicatorRecord
	for i, p := range window {
		if !newDates[p.Date] {
			continue
		}

		rec := domain.IndicatorRecord{
			Symbol:             symbol,
			Region:             region,
			Date:               p.Date,
			MA50:               ma50[i],
			MA200:              ma200[i],
			RSI9:               rsis[rsiShortPeriod][i],
			RSI14:              rsis[rsiMidPeriod][i],
			RSI21:              rsis[rsiLongPeriod][i],
			MACDFast:           macd.Fast[i],
			MACDSlow:           macd.Slow[i],
			MACDHistogram:      macd.Histogram[i],
			SourcePricePointID: p.ID,
		}

		// A record with no values at all is invalid and is skipped,
		// not persisted and not an error.
		if rec.HasValues() {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return UpdateResult{}, nil
	}

	// Records are already date-ascending; the store applies them in order.
	if err := s.store.UpsertIndicatorRecords(records); err != nil {
		return UpdateResult{}, fmt.Errorf("upsert indicator records for %s/%s: %w", symbol, region, err)
	}

	s.log.Debug().
		Str("symbol", symbol).
		Str("region", string(region)).
		Int("records", len(records)).
		Msg("Indicators updated")

	return UpdateResult{RecordsProcessed: len(records)}, nil
}

// UpdateRegion updates indicators for every symbol with historical data in
// the region, strictly sequentially with a pause between symbols. A failing
// symbol is recorded and its siblings still run.
func (s *Service) UpdateRegion(region domain.Region) (RegionUpdateResult, error) {
	symbols, err := s.prices.ListSymbols(region)
	if err != nil {
		return RegionUpdateResult{}, fmt.Errorf("list symbols for %s: %w", region, err)
	}

	result := RegionUpdateResult{}
	for i, symbol := range symbols {
		if i > 0 && s.pause > 0 {
			time.Sleep(s.pause)
		}

		result.Processed++
		res, err := s.UpdateSymbol(symbol, region, false)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", symbol, err))
			s.log.Error().Err(err).
				Str("symbol", symbol).
				Str("region", string(region)).
				Msg("Indicator update failed")
			continue
		}

		result.Succeeded++
		result.TotalProcessed += res.RecordsProcessed
	}

	s.log.Info().
		Str("region", string(region)).
		Int("symbols", result.Processed).
		Int("failed", result.Failed).
		Int("records", result.TotalProcessed).
		Msg("Region indicator update complete")

	return result, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
