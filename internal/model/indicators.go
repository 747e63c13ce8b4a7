package model

import (
	"encoding/json"
	"math"
)

// IndicatorFrame is one bar plus every indicator value computed up to it.
// Values that are still warming up hold NaN and serialize as null.
type IndicatorFrame struct {
	Bar

	ShortMA float64
	LongMA  float64
	TrendMA float64

	RSI float64

	DIF      float64
	DEA      float64
	MACDHist float64

	ADX     float64
	PlusDI  float64
	MinusDI float64

	K float64
	D float64

	BBUpper   float64
	BBMid     float64
	BBLower   float64
	PercentB  float64
	BandWidth float64
	ATR       float64
	VolMA5    float64
	VolMA20   float64
	Slope     float64
}

type frameJSON struct {
	Bar
	ShortMA   *float64 `json:"short_ma"`
	LongMA    *float64 `json:"long_ma"`
	TrendMA   *float64 `json:"trend_ma"`
	RSI       *float64 `json:"rsi"`
	DIF       *float64 `json:"dif"`
	DEA       *float64 `json:"dea"`
	MACDHist  *float64 `json:"macd_hist"`
	ADX       *float64 `json:"adx"`
	PlusDI    *float64 `json:"plus_di"`
	MinusDI   *float64 `json:"minus_di"`
	K         *float64 `json:"k"`
	D         *float64 `json:"d"`
	BBUpper   *float64 `json:"bb_upper"`
	BBMid     *float64 `json:"bb_mid"`
	BBLower   *float64 `json:"bb_lower"`
	PercentB  *float64 `json:"percent_b"`
	BandWidth *float64 `json:"bandwidth"`
	ATR       *float64 `json:"atr"`
	VolMA5    *float64 `json:"vol_ma5"`
	VolMA20   *float64 `json:"vol_ma20"`
	Slope     *float64 `json:"slope"`
}

// MarshalJSON emits null for indicator values that are not yet defined.
func (f IndicatorFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(frameJSON{
		Bar:       f.Bar,
		ShortMA:   nullable(f.ShortMA),
		LongMA:    nullable(f.LongMA),
		TrendMA:   nullable(f.TrendMA),
		RSI:       nullable(f.RSI),
		DIF:       nullable(f.DIF),
		DEA:       nullable(f.DEA),
		MACDHist:  nullable(f.MACDHist),
		ADX:       nullable(f.ADX),
		PlusDI:    nullable(f.PlusDI),
		MinusDI:   nullable(f.MinusDI),
		K:         nullable(f.K),
		D:         nullable(f.D),
		BBUpper:   nullable(f.BBUpper),
		BBMid:     nullable(f.BBMid),
		BBLower:   nullable(f.BBLower),
		PercentB:  nullable(f.PercentB),
		BandWidth: nullable(f.BandWidth),
		ATR:       nullable(f.ATR),
		VolMA5:    nullable(f.VolMA5),
		VolMA20:   nullable(f.VolMA20),
		Slope:     nullable(f.Slope),
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
