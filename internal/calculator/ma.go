package calculator

import "math"

// SMA computes the simple moving average series. Entries before the first
// full window are NaN. Every window is averaged on its own, as the window's
// first value plus the mean deviation from it, so a flat window averages to
// exactly its price and long histories do not accumulate running-sum drift.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		ref := window[0]
		var dev float64
		for _, v := range window {
			dev += v - ref
		}
		out[i] = ref + dev/float64(period)
	}
	return out
}

// EMA computes the exponential moving average seeded with the first value,
// using k = 2/(period+1). It is defined from the first bar.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
