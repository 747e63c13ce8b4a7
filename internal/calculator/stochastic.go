package calculator

// StochasticSeries holds the smoothed %K and %D lines.
type StochasticSeries struct {
	K []float64
	D []float64
}

// Stochastic computes the KD oscillator over period bars. The raw stochastic
// value is 50 when the window is flat; %K = 2/3 %K + 1/3 rsv and
// %D = 2/3 %D + 1/3 %K, both seeded at 50. The first period-1 bars emit
// 50/50 without advancing the smoothing.
func Stochastic(highs, lows, closes []float64, period int) StochasticSeries {
	n := len(closes)
	out := StochasticSeries{K: make([]float64, n), D: make([]float64, n)}
	k, d := 50.0, 50.0
	for i := 0; i < n; i++ {
		if i < period-1 {
			out.K[i], out.D[i] = 50, 50
			continue
		}
		hi := Highest(highs[i-period+1 : i+1])
		lo := Lowest(lows[i-period+1 : i+1])
		rsv := 50.0
		if hi != lo {
			rsv = (closes[i] - lo) / (hi - lo) * 100
		}
		k = 2.0/3.0*k + 1.0/3.0*rsv
		d = 2.0/3.0*d + 1.0/3.0*k
		out.K[i], out.D[i] = k, d
	}
	return out
}
