package strategy

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"
	"time"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
)

func day(i int) time.Time {
	return time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// barsFromCloses opens each bar at the previous close and pads high and low
// by spread around the body.
func barsFromCloses(closes []float64, spread float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = model.Bar{
			Time:   day(i),
			Open:   open,
			High:   math.Max(open, c) + spread,
			Low:    math.Min(open, c) - spread,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func findPart(sub model.SubScore, side model.Side, rule string) (model.ScorePart, bool) {
	for _, p := range sub.Parts {
		if p.Side == side && p.Rule == rule {
			return p, true
		}
	}
	return model.ScorePart{}, false
}

func TestAnalyze_InsufficientData(t *testing.T) {
	closes := make([]float64, 119)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	for _, bars := range [][]model.Bar{nil, barsFromCloses(closes, 1)} {
		res := Analyze(bars, profile.LongSwing())
		if res.Status != model.StatusInsufficientData {
			t.Fatalf("expected insufficient_data, got %s", res.Status)
		}
		if !errors.Is(res.Err(), ErrInsufficientData) {
			t.Errorf("Err() = %v, want ErrInsufficientData", res.Err())
		}
		if res.Frames != nil || res.Scores != nil || res.Swing != nil || res.Diagnostics != nil {
			t.Error("insufficient result must not carry frames, swing or scores")
		}
		if res.BuyTotal != 0 || res.SellTotal != 0 || res.BuySignal != "" || res.SellSignal != "" {
			t.Error("insufficient result must not carry totals or labels")
		}
		if res.MinBars != 120 || res.BarCount != len(bars) {
			t.Errorf("bar counts = %d/%d", res.BarCount, res.MinBars)
		}
	}

	ok := Analyze(barsFromCloses(append(closes, 300), 1), profile.LongSwing())
	if ok.Status != model.StatusOK || ok.Err() != nil {
		t.Errorf("120 bars should be scored, got %s (%v)", ok.Status, ok.Err())
	}
}

// A long downtrend, one more drop and a sharp up day pushes %K
// across %D while %K is still below 20.
func TestAnalyze_LongSwingGoldenCrossAtLowK(t *testing.T) {
	closes := make([]float64, 0, 130)
	for i := 0; i < 128; i++ {
		closes = append(closes, 300-float64(i))
	}
	closes = append(closes, closes[127]-4)
	closes = append(closes, closes[128]+3)

	res := Analyze(barsFromCloses(closes, 0.5), profile.LongSwing())
	if res.Status != model.StatusOK {
		t.Fatalf("status = %s", res.Status)
	}
	last, _ := res.Last()
	prev := res.Frames[len(res.Frames)-2]
	if !(prev.K < prev.D && last.K > last.D && last.K < 20) {
		t.Fatalf("fixture does not cross at low K: prev %.2f/%.2f last %.2f/%.2f", prev.K, prev.D, last.K, last.D)
	}
	kd := res.Scores[model.IndicatorKD]
	cross, ok := findPart(kd, model.SideBuy, "golden cross")
	if !ok || cross.Points != 6 {
		t.Errorf("golden cross part = %+v (found %v), want 6 points", cross, ok)
	}
	if kd.Buy != 10 {
		t.Errorf("kd buy = %.2f, want position plus cross capped at 10", kd.Buy)
	}
}

// The final close undercuts the 20-bar window low while RSI
// stays above the window's RSI minimum.
func TestAnalyze_ShortSwingRSIDivergence(t *testing.T) {
	const n = 130
	closes := make([]float64, 0, n)
	for i := 0; i < n-22; i++ {
		closes = append(closes, 100+float64(i%2))
	}
	c := closes[len(closes)-1]
	for i := 0; i < 6; i++ {
		c -= 2
		closes = append(closes, c)
	}
	for len(closes) < n-1 {
		c++
		closes = append(closes, c)
	}
	closes = append(closes, slices.Min(closes[n-22:n-2])-1)

	res := Analyze(barsFromCloses(closes, 0.5), profile.ShortSwing())
	if res.Status != model.StatusOK {
		t.Fatalf("status = %s", res.Status)
	}
	rsi := res.Scores[model.IndicatorRSI]
	if rsi.Buy != 25 {
		t.Errorf("rsi buy = %.2f, want full weight 25", rsi.Buy)
	}
	if _, ok := findPart(rsi, model.SideBuy, "bottom divergence"); !ok {
		t.Errorf("expected bottom divergence part, got %+v", rsi.Parts)
	}
}

// A close below the 61.8% retracement forces the stop-loss label.
func TestAnalyze_StopLossOverride(t *testing.T) {
	closes := make([]float64, 0, 130)
	for i := 0; i < 30; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 60; i++ {
		closes = append(closes, 100+float64(i)*100/60)
	}
	for i := 1; i <= 40; i++ {
		closes = append(closes, 200-float64(i)*70/40)
	}

	res := Analyze(barsFromCloses(closes, 0.5), profile.LongSwing())
	if res.Status != model.StatusOK {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Swing.HighPrice != 200 || res.Swing.LowPrice != 100 {
		t.Fatalf("swing = %.2f/%.2f, want 200/100", res.Swing.HighPrice, res.Swing.LowPrice)
	}
	if res.SellSignal != model.SellStopLoss {
		t.Errorf("sell signal = %q (total %d), want forced stop-loss", res.SellSignal, res.SellTotal)
	}
	if got := res.Scores[model.IndicatorFibo].Sell; got != 35 {
		t.Errorf("fibo sell = %.2f, want 35", got)
	}
	if math.Abs(res.Diagnostics.StopLossLevel-138.2) > 1e-9 {
		t.Errorf("stop-loss level = %.4f, want 138.2", res.Diagnostics.StopLossLevel)
	}
}

// Three bars with %K above 80 and above %D silence the KD sell
// side.
func TestAnalyze_PassivationOverride(t *testing.T) {
	closes := make([]float64, 0, 130)
	for i := 0; i < 110; i++ {
		closes = append(closes, 100)
	}
	for i := 1; i <= 20; i++ {
		closes = append(closes, 100+float64(2*i))
	}

	res := Analyze(barsFromCloses(closes, 0.5), profile.LongSwing())
	if res.Status != model.StatusOK {
		t.Fatalf("status = %s", res.Status)
	}
	for _, f := range res.Frames[len(res.Frames)-3:] {
		if !(f.K > 80 && f.K > f.D) {
			t.Fatalf("fixture not passivated: K=%.2f D=%.2f", f.K, f.D)
		}
	}
	if !res.Diagnostics.Passivation {
		t.Error("expected passivation diagnostic")
	}
	kd := res.Scores[model.IndicatorKD]
	if kd.Sell != 0 {
		t.Errorf("kd sell = %.2f, want 0", kd.Sell)
	}
	if pos, ok := findPart(kd, model.SideSell, "k position"); !ok || pos.Points <= 0 {
		t.Errorf("expected a positive k position part before the override, got %+v", kd.Parts)
	}
	if p, ok := findPart(kd, model.SideSell, "passivation"); !ok || p.Points >= 0 {
		t.Errorf("expected a negative passivation part, got %+v", kd.Parts)
	}
}

func randomWalk(r *rand.Rand, n int) []model.Bar {
	bars := make([]model.Bar, n)
	c := 50 + r.Float64()*100
	for i := range bars {
		open := c
		c = math.Max(1, c*(1+(r.Float64()-0.5)*0.08))
		hi := math.Max(open, c) * (1 + r.Float64()*0.03)
		lo := math.Min(open, c) * (1 - r.Float64()*0.03)
		bars[i] = model.Bar{Time: day(i), Open: open, High: hi, Low: lo, Close: c, Volume: float64(r.Intn(5000))}
	}
	return bars
}

func TestAnalyze_SubScoresWithinWeights(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	profiles := []*profile.Profile{profile.LongSwing(), profile.ShortSwing()}
	buyLabels := []model.BuySignal{model.BuyStrong, model.BuyAccumulate, model.BuyWatch, model.BuyStandAside, model.BuyCounterTrend}
	sellLabels := []model.SellSignal{model.SellLiquidate, model.SellTrim, model.SellHold, model.SellStopLoss}

	for run := 0; run < 200; run++ {
		bars := randomWalk(r, 120+r.Intn(200))
		for _, p := range profiles {
			res := Analyze(bars, p)
			if res.Status != model.StatusOK {
				t.Fatalf("run %d: status %s", run, res.Status)
			}
			var buySum, sellSum float64
			for name, sub := range res.Scores {
				w := p.Weight(name)
				if w <= 0 {
					t.Errorf("run %d %s: unweighted indicator %s scored", run, p.ID, name)
				}
				if sub.Buy < 0 || sub.Buy > w || sub.Sell < 0 || sub.Sell > w {
					t.Fatalf("run %d %s: %s = %.2f/%.2f outside [0,%.0f]", run, p.ID, name, sub.Buy, sub.Sell, w)
				}
				buySum += sub.Buy
				sellSum += sub.Sell
			}
			if res.BuyTotal != int(math.Round(buySum)) || res.SellTotal != int(math.Round(sellSum)) {
				t.Errorf("run %d %s: totals %d/%d do not match sums %.2f/%.2f", run, p.ID, res.BuyTotal, res.SellTotal, buySum, sellSum)
			}
			if !slices.Contains(buyLabels, res.BuySignal) || !slices.Contains(sellLabels, res.SellSignal) {
				t.Errorf("run %d %s: unexpected labels %q/%q", run, p.ID, res.BuySignal, res.SellSignal)
			}
			if len(res.Frames) != len(bars) {
				t.Errorf("run %d %s: %d frames for %d bars", run, p.ID, len(res.Frames), len(bars))
			}
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	bars := randomWalk(rand.New(rand.NewSource(7)), 250)
	for _, p := range []*profile.Profile{profile.LongSwing(), profile.ShortSwing()} {
		a, err := json.Marshal(Analyze(bars, p))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		b, err := json.Marshal(Analyze(bars, p))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s: repeated analysis differs", p.ID)
		}
	}
}

func TestAnalyze_NormalizesInput(t *testing.T) {
	bars := randomWalk(rand.New(rand.NewSource(3)), 180)
	reversed := slices.Clone(bars)
	slices.Reverse(reversed)
	a, _ := json.Marshal(Analyze(bars, profile.LongSwing()))
	b, _ := json.Marshal(Analyze(reversed, profile.LongSwing()))
	if !bytes.Equal(a, b) {
		t.Error("bar order must not affect the result")
	}
}

func TestAnalyze_ShortSwingOmitsUnweightedIndicators(t *testing.T) {
	res := Analyze(randomWalk(rand.New(rand.NewSource(11)), 150), profile.ShortSwing())
	for _, name := range []string{model.IndicatorDMI, model.IndicatorSlope} {
		if _, ok := res.Scores[name]; ok {
			t.Errorf("short swing should not score %s", name)
		}
	}
	if len(res.Scores) != 6 {
		t.Errorf("expected 6 scored indicators, got %d", len(res.Scores))
	}
	long := Analyze(randomWalk(rand.New(rand.NewSource(11)), 150), profile.LongSwing())
	if len(long.Scores) != 8 {
		t.Errorf("expected 8 scored indicators, got %d", len(long.Scores))
	}
}

func TestAnalyze_InvalidSwingScoresNoFibo(t *testing.T) {
	closes := make([]float64, 130)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	res := Analyze(barsFromCloses(closes, 0.5), profile.LongSwing())
	if res.Swing.Valid {
		t.Fatalf("ratio %.4f should be below the threshold", res.Swing.Ratio)
	}
	fibo := res.Scores[model.IndicatorFibo]
	if fibo.Buy != 0 || fibo.Sell != 0 || len(fibo.Parts) != 0 {
		t.Errorf("invalid swing should not score fibo, got %+v", fibo)
	}
}

func TestAnalyze_FramesSerializeUndefinedAsNull(t *testing.T) {
	res := Analyze(randomWalk(rand.New(rand.NewSource(5)), 130), profile.LongSwing())
	data, err := json.Marshal(res.Frames[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"long_ma", "rsi", "slope", "bb_mid"} {
		if v, ok := decoded[key]; !ok || v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
	if decoded["dif"] == nil {
		t.Error("macd is defined from the first bar")
	}
}

func TestAnalyzeSeries_SetsSymbol(t *testing.T) {
	res := AnalyzeSeries(model.PriceSeries{Symbol: "3231", Bars: randomWalk(rand.New(rand.NewSource(1)), 125)}, profile.ShortSwing())
	if res.Symbol != "3231" || res.ProfileID != profile.ShortSwingID {
		t.Errorf("symbol/profile = %s/%s", res.Symbol, res.ProfileID)
	}
}

func TestAnalyze_FlatSeriesSitsOnAverage(t *testing.T) {
	for _, price := range []float64{100.1, 33.3} {
		closes := make([]float64, 300)
		for i := range closes {
			closes[i] = price
		}
		res := Analyze(barsFromCloses(closes, 0.5), profile.LongSwing())
		if res.Status != model.StatusOK {
			t.Fatalf("status = %s", res.Status)
		}
		if res.Diagnostics.MABroken || res.Diagnostics.MABias != 0 {
			t.Errorf("%v: broken %v bias %v", price, res.Diagnostics.MABroken, res.Diagnostics.MABias)
		}
		if ma := res.Scores[model.IndicatorMA]; ma.Buy != 0 || ma.Sell != 0 {
			t.Errorf("%v: ma = %v/%v, parts %+v", price, ma.Buy, ma.Sell, ma.Parts)
		}
	}
}
