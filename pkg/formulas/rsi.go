package formulas

// RSI Formula (Wilder):
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
//
// The first value appears at index `period` and is computed from the simple
// average of the first `period` gains and losses. Later values use Wilder
// smoothing:
//
//	avgGain = (avgGain*(period-1) + gain) / period
//
// When the average loss is zero, RS is pinned at 100 rather than dividing by
// zero, so a pure uptrend reads just above 99.

// RSISeries calculates the Wilder RSI series for a single period.
// Indices 0..period-1 are nil (insufficient data).
func RSISeries(prices []float64, period int) []*float64 {
	gains, losses := gainLossSeries(prices)
	return rsiFromDeltas(gains, losses, period, len(prices))
}

// RSIMulti calculates RSI series for multiple periods (e.g. 9/14/21) from a
// single shared gain/loss series, so the price deltas are computed once.
func RSIMulti(prices []float64, periods ...int) map[int][]*float64 {
	gains, losses := gainLossSeries(prices)

	out := make(map[int][]*float64, len(periods))
	for _, period := range periods {
		out[period] = rsiFromDeltas(gains, losses, period, len(prices))
	}
	return out
}

// gainLossSeries converts prices into per-step gains and losses.
// gains[i] and losses[i] describe the move from prices[i-1] to prices[i];
// index 0 is always zero.
func gainLossSeries(prices []float64) ([]float64, []float64) {
	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))

	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	return gains, losses
}

func rsiFromDeltas(gains, losses []float64, period, n int) []*float64 {
	out := make([]*float64, n)
	if period <= 0 || n < period+1 {
		return out
	}

	// Seed with the simple average of the first `period` gains/losses
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	first := rsiValue(avgGain, avgLoss)
	out[period] = &first

	// Wilder smoothing for the rest of the series
	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)

		v := rsiValue(avgGain, avgLoss)
		out[i] = &v
	}

	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100.0 - 100.0/(1.0+rs)
}
