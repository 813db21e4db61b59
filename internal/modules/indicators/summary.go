package indicators

import (
	"fmt"

	"github.com/akontos/portfolio-tracker/internal/domain"
	"github.com/akontos/portfolio-tracker/pkg/formulas"
)

const (
	bollingerPeriod     = 20
	bollingerMultiplier = 2.0
	volatilityWindow    = 252
)

// Summary is a dashboard-facing view: the latest stored indicator record plus
// a few derived context metrics computed on the fly.
type Summary struct {
	Latest               *domain.IndicatorRecord     `json:"latest,omitempty"`
	BollingerPosition    *formulas.BollingerPosition `json:"bollinger_position,omitempty"`
	DistanceFromEMA200   *float64                    `json:"distance_from_ema200,omitempty"`
	AnnualizedVolatility *float64                    `json:"annualized_volatility,omitempty"`
}

// Summary returns the most recent indicator record for a symbol together with
// Bollinger position, EMA-200 distance and trailing-year volatility.
func (s *Service) Summary(symbol string, region domain.Region) (Summary, error) {
	var out Summary

	records, err := s.store.GetIndicatorRecords(symbol, region)
	if err != nil {
		return out, fmt.Errorf("load indicator records for %s/%s: %w", symbol, region, err)
	}
	if len(records) > 0 {
		latest := records[len(records)-1]
		out.Latest = &latest
	}

	points, err := s.prices.GetHistoricalPrices(symbol, region)
	if err != nil {
		return out, fmt.Errorf("load prices for %s/%s: %w", symbol, region, err)
	}

	var closes []float64
	for _, p := range points {
		if price, ok := p.EffectivePrice(); ok {
			closes = append(closes, price)
		}
	}
	if len(closes) == 0 {
		return out, nil
	}

	out.BollingerPosition = formulas.CalculateBollingerPosition(closes, bollingerPeriod, bollingerMultiplier)
	out.DistanceFromEMA200 = formulas.CalculateDistanceFromEMA(closes, ma200Period)

	recent := closes
	if len(recent) > volatilityWindow {
		recent = recent[len(recent)-volatilityWindow:]
	}
	if returns := formulas.CalculateReturns(recent); len(returns) > 0 {
		vol := formulas.AnnualizedVolatility(returns)
		out.AnnualizedVolatility = &vol
	}

	return out, nil
}
