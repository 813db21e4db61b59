package holdings

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/internal/modules/benchmark"
)

// Aggregator produces one consistent holdings snapshot per region: NAV and
// weight per position, benchmark-relative delta, multi-horizon returns and a
// synthetic cash row, replacing any prior snapshot atomically.
type Aggregator struct {
	portfolio domain.PortfolioStore
	prices    domain.PriceSource
	resolver  *benchmark.Resolver
	store     domain.HoldingsStore
	log       zerolog.Logger

	// now is replaceable so MTD/YTD boundaries are testable
	now func() time.Time
}

// NewAggregator creates a new holdings aggregator
func NewAggregator(
	portfolio domain.PortfolioStore,
	prices domain.PriceSource,
	resolver *benchmark.Resolver,
	store domain.HoldingsStore,
	log zerolog.Logger,
) *Aggregator {
	return &Aggregator{
		portfolio: portfolio,
		prices:    prices,
		resolver:  resolver,
		store:     store,
		log:       log.With().Str("service", "holdings").Logger(),
		now:       time.Now,
	}
}

// AggregateRegion recomputes and atomically replaces a region's holdings
// table. Positions with no current price are skipped with a warning; the run
// still emits every other position and the cash row.
func (a *Aggregator) AggregateRegion(region domain.Region) ([]domain.HoldingsRow, error) {
	positions, err := a.portfolio.GetPortfolioPositions(region)
	if err != nil {
		return nil, fmt.Errorf("load positions for %s: %w", region, err)
	}

	cash, err := a.portfolio.GetCashBalance(region)
	if err != nil {
		return nil, fmt.Errorf("load cash balance for %s: %w", region, err)
	}

	weights, err := a.resolver.WeightsForRegion(region)
	if err != nil {
		return nil, fmt.Errorf("resolve benchmark weights for %s: %w", region, err)
	}

	// First pass: current prices and NAV, so total value is known before
	// weights are computed.
	type pricedPosition struct {
		pos   domain.Position
		price float64
		nav   float64
	}
	var priced []pricedPosition
	total := cash

	for _, pos := range positions {
		cp, err := a.prices.GetCurrentPrice(pos.Symbol, region)
		if err != nil {
			return nil, fmt.Errorf("load current price for %s/%s: %w", pos.Symbol, region, err)
		}
		if cp == nil {
			a.log.Warn().
				Str("symbol", pos.Symbol).
				Str("region", string(region)).
				Msg("No current price, skipping position")
			continue
		}

		nav := cp.Price * pos.Quantity
		total += nav
		priced = append(priced, pricedPosition{pos: pos, price: cp.Price, nav: nav})
	}

	var rows []domain.HoldingsRow

	// Synthetic cash row. All percentage fields other than the portfolio
	// weight stay zero.
	if cash > 0 || len(priced) > 0 {
		cashWeight := 0.0
		if total > 0 {
			cashWeight = cash / total * 100
		}
		rows = append(rows, domain.HoldingsRow{
			Region:          region,
			Symbol:          domain.CashSymbol,
			Company:         "Cash",
			StockType:       "cash",
			Quantity:        cash,
			CurrentPrice:    1,
			NetAssetValue:   cash,
			PortfolioWeight: cashWeight,
		})
	}

	today := a.now().Format("2006-01-02")
	horizons := a.horizonDates()

	for _, pp := range priced {
		weight := 0.0
		if total > 0 {
			weight = pp.nav / total * 100
		}
		benchWeight := weights.Weight(pp.pos.Symbol)

		row := domain.HoldingsRow{
			Region:          region,
			Symbol:          pp.pos.Symbol,
			Company:         pp.pos.Company,
			StockType:       pp.pos.StockType,
			Quantity:        pp.pos.Quantity,
			CurrentPrice:    pp.price,
			NetAssetValue:   pp.nav,
			PortfolioWeight: weight,
			BenchmarkWeight: benchWeight,
			DeltaWeight:     weight - benchWeight,
		}

		row.DailyChangePercent = a.dailyChange(pp.pos.Symbol, region, today, pp.price)
		row.MTDChangePercent = a.horizonChange(pp.pos.Symbol, region, horizons.monthStart, pp.price)
		row.YTDChangePercent = a.horizonChange(pp.pos.Symbol, region, horizons.yearStart, pp.price)
		row.SixMonthChangePercent = a.horizonChange(pp.pos.Symbol, region, horizons.sixMonthsBack, pp.price)
		row.FiftyTwoWeekChangePercent = a.horizonChange(pp.pos.Symbol, region, horizons.fiftyTwoWeeksBack, pp.price)

		rows = append(rows, row)
	}

	if err := a.store.ReplaceHoldings(region, rows); err != nil {
		return nil, fmt.Errorf("replace holdings for %s: %w", region, err)
	}

	a.log.Info().
		Str("region", string(region)).
		Int("rows", len(rows)).
		Int("skipped", len(positions)-len(priced)).
		Msg("Holdings aggregated")

	return rows, nil
}

// AggregateAll aggregates every region, collecting per-region outcomes.
// A failing region never aborts its siblings.
func (a *Aggregator) AggregateAll() map[domain.Region]RegionResult {
	results := make(map[domain.Region]RegionResult, len(domain.Regions))

	for _, cfg := range domain.Regions {
		rows, err := a.AggregateRegion(cfg.Region)
		if err != nil {
			a.log.Error().Err(err).Str("region", string(cfg.Region)).Msg("Holdings aggregation failed")
			results[cfg.Region] = RegionResult{Success: false, Message: err.Error()}
			continue
		}
		results[cfg.Region] = RegionResult{
			Success: true,
			Count:   len(rows),
			Message: fmt.Sprintf("aggregated %d holdings", len(rows)),
		}
	}

	return results
}

type horizonDates struct {
	monthStart        string
	yearStart         string
	sixMonthsBack     string
	fiftyTwoWeeksBack string
}

func (a *Aggregator) horizonDates() horizonDates {
	now := a.now()
	return horizonDates{
		monthStart:        time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"),
		yearStart:         time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02"),
		sixMonthsBack:     now.AddDate(0, -6, 0).Format("2006-01-02"),
		fiftyTwoWeeksBack: now.AddDate(0, 0, -7*52).Format("2006-01-02"),
	}
}

// horizonChange computes the percentage change from the reference price at a
// horizon date to the current price. The reference is the first usable close
// on or after the horizon date, falling back to the last usable close strictly
// before it; gap bars are stepped over on both sides. With no usable close on
// either side the return is 0: the documented insufficient-history sentinel,
// distinct from an error.
func (a *Aggregator) horizonChange(symbol string, region domain.Region, date string, current float64) float64 {
	refPrice, ok := a.priceOnOrAfter(symbol, region, date)
	if !ok {
		refPrice, ok = a.priceBefore(symbol, region, date)
	}
	if !ok || refPrice == 0 {
		return 0
	}

	return (current - refPrice) / refPrice * 100
}

// dailyChange is the return versus the most recent usable close strictly
// before today.
func (a *Aggregator) dailyChange(symbol string, region domain.Region, today string, current float64) float64 {
	prevPrice, ok := a.priceBefore(symbol, region, today)
	if !ok || prevPrice == 0 {
		return 0
	}

	return (current - prevPrice) / prevPrice * 100
}

// priceOnOrAfter returns the first usable close on or after date, stepping
// forward past gap bars. The cursor advances one day past each gap, so the
// loop terminates once history is exhausted.
func (a *Aggregator) priceOnOrAfter(symbol string, region domain.Region, date string) (float64, bool) {
	cursor := date
	for {
		ref, err := a.prices.GetPriceOnOrAfter(symbol, region, cursor)
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", symbol).Str("date", date).Msg("Horizon lookup failed")
			return 0, false
		}
		if ref == nil {
			return 0, false
		}
		if price, ok := ref.EffectivePrice(); ok {
			return price, true
		}

		next, err := time.Parse("2006-01-02", ref.Date)
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", symbol).Str("date", ref.Date).Msg("Unparseable price date")
			return 0, false
		}
		cursor = next.AddDate(0, 0, 1).Format("2006-01-02")
	}
}

// priceBefore returns the last usable close strictly before date, stepping
// backward past gap bars.
func (a *Aggregator) priceBefore(symbol string, region domain.Region, date string) (float64, bool) {
	cursor := date
	for {
		ref, err := a.prices.GetPriceBefore(symbol, region, cursor)
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", symbol).Str("date", date).Msg("Horizon fallback lookup failed")
			return 0, false
		}
		if ref == nil {
			return 0, false
		}
		if price, ok := ref.EffectivePrice(); ok {
			return price, true
		}
		cursor = ref.Date
	}
}
