package formulas

// MACDResult holds the fast/slow EMA pair and their difference.
//
// Note: this engine reports only fast, slow and histogram (fast - slow). It
// deliberately does not smooth the difference into a separate signal line;
// downstream consumers rely on the histogram column as-is.
type MACDResult struct {
	Fast      []*float64
	Slow      []*float64
	Histogram []*float64
}

// DefaultMACDFastPeriod and friends are the conventional 12/26 EMA pair.
// The signal period is reserved for window sizing even though no signal line
// is produced (see MACDResult).
const (
	DefaultMACDFastPeriod   = 12
	DefaultMACDSlowPeriod   = 26
	DefaultMACDSignalPeriod = 9
)

// MACDHistogram calculates the fast and slow EMA series and their difference.
// Histogram values are nil wherever either EMA is still nil.
func MACDHistogram(prices []float64, fastPeriod, slowPeriod int) MACDResult {
	result := MACDResult{
		Fast:      EMASeries(prices, fastPeriod),
		Slow:      EMASeries(prices, slowPeriod),
		Histogram: make([]*float64, len(prices)),
	}

	for i := range prices {
		if result.Fast[i] == nil || result.Slow[i] == nil {
			continue
		}
		h := *result.Fast[i] - *result.Slow[i]
		result.Histogram[i] = &h
	}

	return result
}
