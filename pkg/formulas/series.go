package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// MovingAverage calculates the simple moving average series over a price array.
//
// The value at index i is the arithmetic mean of the trailing `period` prices.
// Indices with fewer than `period` prices behind them are nil (insufficient
// data), so the output always has the same length as the input.
//
// Args:
//
//	prices: Array of prices, oldest first
//	period: Window length (typically 50 or 200)
//
// Returns:
//
//	Series of *float64, nil where the window is not yet full
func MovingAverage(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}

	for i := period - 1; i < len(prices); i++ {
		v := stat.Mean(prices[i-period+1:i+1], nil)
		out[i] = &v
	}

	return out
}

// EMASeries calculates the exponential moving average series.
//
// EMA Formula:
//
//	EMA_today = (Price_today × k) + (EMA_yesterday × (1 - k))
//	where k = 2 / (period + 1)
//
// The series is seeded at index period-1 with the simple average of the first
// `period` prices. Earlier indices are nil.
func EMASeries(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}

	k := 2.0 / (float64(period) + 1.0)

	seed := stat.Mean(prices[:period], nil)
	out[period-1] = &seed

	prev := seed
	for i := period; i < len(prices); i++ {
		ema := prices[i]*k + prev*(1-k)
		out[i] = &ema
		prev = ema
	}

	return out
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
