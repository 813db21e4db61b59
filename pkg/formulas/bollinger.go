package formulas

import (
	"github.com/markcheno/go-talib"
)

// BollingerBands represents Bollinger Bands values
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// BollingerPosition represents where price is relative to Bollinger Bands
// Range: 0.0 (at lower band) to 1.0 (at upper band)
type BollingerPosition struct {
	Position float64        `json:"position"`
	Bands    BollingerBands `json:"bands"`
}

// CalculateBollingerBands calculates Bollinger Bands
//
//	Middle Band = N-day SMA
//	Upper Band = Middle + (multiplier × std deviation)
//	Lower Band = Middle - (multiplier × std deviation)
//
// Returns nil if there is insufficient data.
func CalculateBollingerBands(closes []float64, length int, stdDevMultiplier float64) *BollingerBands {
	if len(closes) < length {
		return nil
	}

	// MAType 0 = SMA
	upper, middle, lower := talib.BBands(closes, length, stdDevMultiplier, stdDevMultiplier, 0)

	if len(upper) > 0 && !isNaN(upper[len(upper)-1]) {
		return &BollingerBands{
			Upper:  upper[len(upper)-1],
			Middle: middle[len(middle)-1],
			Lower:  lower[len(lower)-1],
		}
	}

	return nil
}

// CalculateBollingerPosition calculates where the current price sits within
// the Bollinger Bands: 0.0 at the lower band, 0.5 at the middle, 1.0 at the
// upper band.
func CalculateBollingerPosition(closes []float64, length int, stdDevMultiplier float64) *BollingerPosition {
	bands := CalculateBollingerBands(closes, length, stdDevMultiplier)
	if bands == nil {
		return nil
	}

	width := bands.Upper - bands.Lower
	if width == 0 {
		return nil
	}

	price := closes[len(closes)-1]
	return &BollingerPosition{
		Position: (price - bands.Lower) / width,
		Bands:    *bands,
	}
}

// CalculateDistanceFromEMA calculates the percentage distance of the current
// price from its EMA. Positive when price is above the EMA, negative below.
//
// Formula: (Current Price - EMA) / EMA
func CalculateDistanceFromEMA(closes []float64, length int) *float64 {
	if len(closes) < length {
		return nil
	}

	ema := talib.Ema(closes, length)
	if len(ema) == 0 || isNaN(ema[len(ema)-1]) {
		return nil
	}

	last := ema[len(ema)-1]
	if last == 0 {
		return nil
	}

	distance := (closes[len(closes)-1] - last) / last
	return &distance
}
