package calculator

import (
	"math"
	"sort"

	"SwingSentinel/internal/model"
)

// Normalize returns a cleaned copy of bars: ascending by date, one bar per
// day (the later occurrence wins), no bar without a positive close, and
// missing open/high/low/volume fields filled from the close.
func Normalize(bars []model.Bar) []model.Bar {
	if len(bars) == 0 {
		return nil
	}

	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if !finite(b.Close) || b.Close <= 0 {
			continue
		}
		if !finite(b.Open) || b.Open <= 0 {
			b.Open = b.Close
		}
		if !finite(b.High) || b.High <= 0 {
			b.High = b.Close * 1.01
		}
		if !finite(b.Low) || b.Low <= 0 {
			b.Low = b.Close * 0.99
		}
		if !finite(b.Volume) || b.Volume < 0 {
			b.Volume = 0
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	deduped := out[:0]
	for _, b := range out {
		n := len(deduped)
		if n > 0 && sameDay(deduped[n-1], b) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}

func sameDay(a, b model.Bar) bool {
	ay, am, ad := a.Time.Date()
	by, bm, bd := b.Time.Date()
	return ay == by && am == bm && ad == bd
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
