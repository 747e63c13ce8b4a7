package calculator

import "math"

// DMISeries holds the directional indicators and the ADX.
type DMISeries struct {
	PlusDI  []float64
	MinusDI []float64
	ADX     []float64
}

// DMI computes the directional movement system. True range and directional
// moves are 0 on the first bar; each is smoothed recursively with
// S = (S*(period-1) + x)/period seeded with its first value. Zero
// denominators are replaced by 1.
func DMI(highs, lows, closes []float64, period int) DMISeries {
	n := len(closes)
	tr := make([]float64, n)
	pdm := make([]float64, n)
	mdm := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		tr[i] = math.Max(highs[i]-lows[i], math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		if up > down {
			pdm[i] = math.Max(up, 0)
		}
		if down > up {
			mdm[i] = math.Max(down, 0)
		}
	}

	str := smoothDirectional(tr, period)
	spdm := smoothDirectional(pdm, period)
	smdm := smoothDirectional(mdm, period)

	out := DMISeries{
		PlusDI:  make([]float64, n),
		MinusDI: make([]float64, n),
	}
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		p := 100 * spdm[i] / orOne(str[i])
		m := 100 * smdm[i] / orOne(str[i])
		out.PlusDI[i], out.MinusDI[i] = p, m
		dx[i] = 100 * math.Abs(p-m) / orOne(p+m)
	}
	out.ADX = smoothDirectional(dx, period)
	return out
}

func smoothDirectional(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	p := float64(period)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (out[i-1]*(p-1) + values[i]) / p
	}
	return out
}
