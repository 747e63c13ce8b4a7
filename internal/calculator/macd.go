package calculator

// MACDSeries holds the MACD line, its signal line and the histogram.
type MACDSeries struct {
	DIF  []float64
	DEA  []float64
	Hist []float64
}

// MACD computes DIF = EMA(fast) - EMA(slow), DEA = EMA(signal) of DIF and
// the histogram DIF - DEA. Every series is defined from the first bar.
func MACD(closes []float64, fast, slow, signal int) MACDSeries {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	dif := make([]float64, len(closes))
	for i := range closes {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea := EMA(dif, signal)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = dif[i] - dea[i]
	}
	return MACDSeries{DIF: dif, DEA: dea, Hist: hist}
}
