package calculator

// RSI computes the relative strength index over a fixed window: for each bar
// the up and down moves of the trailing period deltas are re-summed, and
// RSI = 100 - 100/(1 + up/down) with a zero down sum treated as 1.
// Entries before index period are NaN.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 {
		return out
	}
	for i := period; i < len(closes); i++ {
		var up, down float64
		for j := i - period + 1; j <= i; j++ {
			delta := closes[j] - closes[j-1]
			if delta > 0 {
				up += delta
			} else {
				down -= delta
			}
		}
		out[i] = 100 - 100/(1+up/orOne(down))
	}
	return out
}

// orOne replaces a zero denominator with 1.
func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
