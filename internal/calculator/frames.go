package calculator

import "SwingSentinel/internal/model"

// Standard indicator periods.
const (
	ShortMAPeriod   = 20
	LongMAPeriod    = 60
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	KDPeriod        = 9
	DMIPeriod       = 14
	BollingerPeriod = 20
	BollingerMult   = 2.0
	ATRPeriod       = 14
	SlopePoints     = 61
)

// Options selects the windows that vary between profiles.
type Options struct {
	ShortMA int
	LongMA  int
	TrendMA int
}

// DefaultOptions uses the 20/60 averages and the 60-bar trend MA.
func DefaultOptions() Options {
	return Options{ShortMA: ShortMAPeriod, LongMA: LongMAPeriod, TrendMA: LongMAPeriod}
}

// BuildFrames computes every indicator over bars and returns one frame per
// bar in the same order. bars are expected to be normalized.
func BuildFrames(bars []model.Bar, opts Options) []model.IndicatorFrame {
	n := len(bars)
	if n == 0 {
		return nil
	}
	if opts.ShortMA <= 0 {
		opts.ShortMA = ShortMAPeriod
	}
	if opts.LongMA <= 0 {
		opts.LongMA = LongMAPeriod
	}
	if opts.TrendMA <= 0 {
		opts.TrendMA = opts.LongMA
	}

	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		highs[i], lows[i], closes[i], volumes[i] = b.High, b.Low, b.Close, b.Volume
	}

	shortMA := SMA(closes, opts.ShortMA)
	longMA := SMA(closes, opts.LongMA)
	trendMA := SMA(closes, opts.TrendMA)
	rsi := RSI(closes, RSIPeriod)
	macd := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	kd := Stochastic(highs, lows, closes, KDPeriod)
	dmi := DMI(highs, lows, closes, DMIPeriod)
	bb := Bollinger(closes, BollingerPeriod, BollingerMult)
	atr := ATR(highs, lows, closes, ATRPeriod)
	volMA5 := SMA(volumes, 5)
	volMA20 := SMA(volumes, 20)
	slope := Slope(closes, SlopePoints)

	frames := make([]model.IndicatorFrame, n)
	for i, b := range bars {
		frames[i] = model.IndicatorFrame{
			Bar:       b,
			ShortMA:   shortMA[i],
			LongMA:    longMA[i],
			TrendMA:   trendMA[i],
			RSI:       rsi[i],
			DIF:       macd.DIF[i],
			DEA:       macd.DEA[i],
			MACDHist:  macd.Hist[i],
			ADX:       dmi.ADX[i],
			PlusDI:    dmi.PlusDI[i],
			MinusDI:   dmi.MinusDI[i],
			K:         kd.K[i],
			D:         kd.D[i],
			BBUpper:   bb.Upper[i],
			BBMid:     bb.Mid[i],
			BBLower:   bb.Lower[i],
			PercentB:  bb.PercentB[i],
			BandWidth: bb.BandWidth[i],
			ATR:       atr[i],
			VolMA5:    volMA5[i],
			VolMA20:   volMA20[i],
			Slope:     slope[i],
		}
	}
	return frames
}

// Field extracts one value per frame.
func Field(frames []model.IndicatorFrame, pick func(model.IndicatorFrame) float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = pick(f)
	}
	return out
}
