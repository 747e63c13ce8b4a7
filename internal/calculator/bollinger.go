package calculator

import talib "github.com/markcheno/go-talib"

// BollingerSeries holds the bands together with %B and bandwidth.
type BollingerSeries struct {
	Upper     []float64
	Mid       []float64
	Lower     []float64
	PercentB  []float64
	BandWidth []float64
}

// Bollinger computes period-bar bands at mult population standard
// deviations around the simple mean. %B is NaN when the bands coincide and
// bandwidth is NaN when the mid band is zero.
func Bollinger(closes []float64, period int, mult float64) BollingerSeries {
	n := len(closes)
	out := BollingerSeries{
		Upper:     nanSeries(n),
		Mid:       nanSeries(n),
		Lower:     nanSeries(n),
		PercentB:  nanSeries(n),
		BandWidth: nanSeries(n),
	}
	if period <= 0 || n < period {
		return out
	}
	upper, mid, lower := talib.BBands(closes, period, mult, mult, talib.SMA)
	for i := period - 1; i < n; i++ {
		out.Upper[i], out.Mid[i], out.Lower[i] = upper[i], mid[i], lower[i]
		if upper[i] != lower[i] {
			out.PercentB[i] = (closes[i] - lower[i]) / (upper[i] - lower[i])
		}
		if mid[i] != 0 {
			out.BandWidth[i] = (upper[i] - lower[i]) / mid[i]
		}
	}
	return out
}
