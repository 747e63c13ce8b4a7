// Package swing locates the reference swing high and low of a price series
// and derives its Fibonacci retracement and extension levels.
package swing

import (
	"math"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
)

// Locate finds the swing over the trailing closes according to rule.
//
// With LowBeforeHigh set, the high is the first maximum of the trailing
// Lookback closes and the low is the minimum of the closes up to it. When the
// high sits within PrecedenceMargin bars of the window start and the series
// is longer than ExtendedLookback, the low is taken over the trailing
// ExtendedLookback closes instead. Without LowBeforeHigh the window's global
// maximum and minimum are used.
func Locate(closes []float64, rule profile.SwingRule) model.SwingReference {
	ref := model.SwingReference{HighIndex: -1, LowIndex: -1, Levels: map[string]float64{}}
	n := len(closes)
	if n == 0 || rule.Lookback <= 0 {
		return ref
	}

	start := max(n-rule.Lookback, 0)
	window := closes[start:]
	hi := calculator.HighestIndex(window)
	ref.HighIndex, ref.HighPrice = start+hi, window[hi]

	var lo int
	if rule.LowBeforeHigh {
		lo = calculator.LowestIndex(window[:hi+1])
		ref.LowIndex, ref.LowPrice = start+lo, window[lo]
		if hi < rule.PrecedenceMargin && rule.ExtendedLookback > 0 && n > rule.ExtendedLookback {
			extStart := n - rule.ExtendedLookback
			lo = calculator.LowestIndex(closes[extStart:])
			ref.LowIndex, ref.LowPrice = extStart+lo, closes[extStart+lo]
			ref.Extended = true
		}
	} else {
		lo = calculator.LowestIndex(window)
		ref.LowIndex, ref.LowPrice = start+lo, window[lo]
	}

	ref.Range = ref.HighPrice - ref.LowPrice
	ref.Ratio = ref.Range / nonZero(ref.LowPrice)
	ref.Valid = ref.Range > 0 && ref.Ratio >= rule.Threshold

	for _, r := range rule.Retracements {
		ref.Levels[model.RetracementKey(r)] = Retracement(ref, r)
	}
	for _, e := range rule.Extensions {
		ref.Levels[model.ExtensionKey(e)] = ExtensionLevel(ref, e)
	}
	return ref
}

// Retracement is the price ratio r of the range below the swing high.
func Retracement(ref model.SwingReference, r float64) float64 {
	return ref.HighPrice - ref.Range*r
}

// ExtensionLevel is the price ratio r of the range above the swing high.
func ExtensionLevel(ref model.SwingReference, r float64) float64 {
	return ref.HighPrice + ref.Range*r
}

// Depth is how far price sits below the swing high in units of the range:
// 0 at the high, 1 at the low. It is snapped to 1e-12 of the range, so a
// price taken from Retracement(ref, r) maps back to exactly r.
func Depth(ref model.SwingReference, price float64) float64 {
	return snap((ref.HighPrice - price) / nonZero(ref.Range))
}

// Breached reports whether price sits deeper than depth below the swing
// high. It compares in the same depth units as the retracement tiers, so a
// price scored as inside a band ending at depth is never also a breach.
func Breached(ref model.SwingReference, depth, price float64) bool {
	return ref.HighIndex >= 0 && Depth(ref, price) > depth
}

// Extension is how far price sits above the swing high in units of the
// range.
func Extension(ref model.SwingReference, price float64) float64 {
	return snap((price - ref.HighPrice) / nonZero(ref.Range))
}

func snap(ratio float64) float64 {
	return math.Round(ratio*1e12) / 1e12
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
