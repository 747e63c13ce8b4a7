package calculator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Slope computes the least-squares slope of closes against the bar index
// over the trailing points bars. Entries before index points-1 are NaN.
func Slope(closes []float64, points int) []float64 {
	out := nanSeries(len(closes))
	if points < 2 || len(closes) < points {
		return out
	}
	slope := talib.LinearRegSlope(closes, points)
	copy(out[points-1:], slope[points-1:])
	return out
}

// SlopePercentile ranks the last defined slope against all defined slopes:
// the share of slopes strictly below it, in percent. It is 50 when no slope
// is defined.
func SlopePercentile(slopes []float64) float64 {
	last := math.NaN()
	valid := 0
	for _, s := range slopes {
		if math.IsNaN(s) {
			continue
		}
		valid++
		last = s
	}
	if valid == 0 {
		return 50
	}
	below := 0
	for _, s := range slopes {
		if !math.IsNaN(s) && s < last {
			below++
		}
	}
	return float64(below) / float64(valid) * 100
}
