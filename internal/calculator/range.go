package calculator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Highest returns the largest value, or -Inf for an empty slice.
func Highest(values []float64) float64 {
	h := math.Inf(-1)
	for _, v := range values {
		if v > h {
			h = v
		}
	}
	return h
}

// Lowest returns the smallest value, or +Inf for an empty slice.
func Lowest(values []float64) float64 {
	l := math.Inf(1)
	for _, v := range values {
		if v < l {
			l = v
		}
	}
	return l
}

// HighestIndex returns the index of the first occurrence of the maximum, or
// -1 for an empty slice.
func HighestIndex(values []float64) int {
	idx := -1
	for i, v := range values {
		if idx < 0 || v > values[idx] {
			idx = i
		}
	}
	return idx
}

// LowestIndex returns the index of the first occurrence of the minimum, or
// -1 for an empty slice.
func LowestIndex(values []float64) int {
	idx := -1
	for i, v := range values {
		if idx < 0 || v < values[idx] {
			idx = i
		}
	}
	return idx
}

// Extremes is the high/low pair of one window.
type Extremes struct {
	High float64
	Low  float64
}

// WindowExtremes returns the rolling max and min of the trailing period
// values for every index. Entries before the first full window hold NaN.
func WindowExtremes(values []float64, period int) (highs, lows []float64) {
	highs, lows = nanSeries(len(values)), nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return highs, lows
	}
	if period == 1 {
		copy(highs, values)
		copy(lows, values)
		return highs, lows
	}
	mx := talib.Max(values, period)
	mn := talib.Min(values, period)
	copy(highs[period-1:], mx[period-1:])
	copy(lows[period-1:], mn[period-1:])
	return highs, lows
}

// Window returns the extremes of values[start:end], clamping the bounds.
// NaN entries are skipped; a window without a defined value is not ok.
func Window(values []float64, start, end int) (Extremes, bool) {
	start = max(start, 0)
	end = min(end, len(values))
	if start >= end {
		return Extremes{}, false
	}
	defined := make([]float64, 0, end-start)
	for _, v := range values[start:end] {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) == 0 {
		return Extremes{}, false
	}
	highs, lows := WindowExtremes(defined, len(defined))
	last := len(defined) - 1
	return Extremes{High: highs[last], Low: lows[last]}, true
}
