package calculator

import "math"

// ATR computes the average true range as a rolling simple mean of the true
// range. The first true range is high-low and the first period-1 values are
// averaged over the bars seen so far.
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	tr := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		if i == 0 {
			tr[i] = highs[i] - lows[i]
		} else {
			tr[i] = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		}
		sum += tr[i]
		if i >= period {
			sum -= tr[i-period]
		}
		out[i] = sum / float64(min(i+1, period))
	}
	return out
}
