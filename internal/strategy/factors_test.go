package strategy

import (
	"math"
	"testing"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/swing"
)

// flatFrame is a bar at price without body or shadows, on average volume.
func flatFrame(price float64) model.IndicatorFrame {
	return model.IndicatorFrame{
		Bar:      model.Bar{Open: price, High: price, Low: price, Close: price, Volume: 1000},
		VolMA5:   1000,
		ATR:      1,
		K:        50,
		D:        50,
		RSI:      50,
		PercentB: 0.5,
		BBMid:    100,
		BBUpper:  110,
	}
}

func snapshotOf(prev, last model.IndicatorFrame) *snapshot {
	return &snapshot{
		frames: []model.IndicatorFrame{prev, last},
		prev:   prev,
		last:   last,
		swing:  model.SwingReference{HighIndex: -1, LowIndex: -1},
	}
}

type ruleCase struct {
	name string
	p    *profile.Profile
	s    *snapshot
	buy  float64
	sell float64
	side model.Side // side of part, when set
	part string     // rule that must appear among the parts
}

func checkRules(t *testing.T, indicator string, tests []ruleCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.s.p = tt.p
			tl := newTally(indicator, tt.p.Weight(indicator))
			scorers[indicator](tt.s, tl)
			sub := tl.result()
			if math.Abs(sub.Buy-tt.buy) > 1e-9 || math.Abs(sub.Sell-tt.sell) > 1e-9 {
				t.Errorf("buy/sell = %v/%v, want %v/%v (parts %+v)", sub.Buy, sub.Sell, tt.buy, tt.sell, sub.Parts)
			}
			if tt.part != "" {
				if _, ok := findPart(sub, tt.side, tt.part); !ok {
					t.Errorf("missing %s part %q in %+v", tt.side, tt.part, sub.Parts)
				}
			}
		})
	}
}

var legSwing = model.SwingReference{HighPrice: 200, HighIndex: 10, LowPrice: 100, LowIndex: 2, Range: 100, Ratio: 1, Valid: true}

func fiboSnapshot(prev, last model.IndicatorFrame) *snapshot {
	s := snapshotOf(prev, last)
	s.swing = legSwing
	return s
}

func TestScoreFibo(t *testing.T) {
	long, short := profile.LongSwing(), profile.ShortSwing()

	reversal := flatFrame(169.1)
	reversal.Open, reversal.Low = 165, 165

	shadow := flatFrame(155.9)
	shadow.Open, shadow.High, shadow.Low = 156.9, 156.9, 150

	dry := flatFrame(155.9)
	dry.Volume = 600

	bearish := flatFrame(155.9)
	bearish.Open, bearish.High, bearish.ATR = 160, 160, 2

	withHigh := func(close, high float64) model.IndicatorFrame {
		f := flatFrame(close)
		f.High = high
		return f
	}

	invalid := fiboSnapshot(flatFrame(169.1), flatFrame(169.1))
	invalid.swing.Valid = false

	checkRules(t, model.IndicatorFibo, []ruleCase{
		{"at the swing high", long, fiboSnapshot(flatFrame(200), flatFrame(200)), 10, 0, model.SideBuy, "retracement zone"},
		{"golden band midpoint", long, fiboSnapshot(flatFrame(169.1), flatFrame(169.1)), 22.5, 0, model.SideBuy, "retracement zone"},
		{"half band midpoint", long, fiboSnapshot(flatFrame(155.9), flatFrame(155.9)), 17.5, 0, "", ""},
		{"deep band midpoint", long, fiboSnapshot(flatFrame(144.1), flatFrame(144.1)), 12.5, 0, "", ""},
		{"on the stop level stays in band", long, fiboSnapshot(flatFrame(138.2), flatFrame(138.2)), 10, 0, model.SideBuy, "retracement zone"},
		{"below the stop level", long, fiboSnapshot(flatFrame(130), flatFrame(130)), 0, 35, model.SideSell, "stop-loss breach"},
		{"reversal candle", long, fiboSnapshot(flatFrame(166), reversal), 32.5, 0, model.SideBuy, "reversal candle"},
		{"lower shadow at support", long, fiboSnapshot(flatFrame(155.9), shadow), 25.5, 0, model.SideBuy, "lower shadow at support"},
		{"volume dry-up", long, fiboSnapshot(flatFrame(155.9), dry), 22.5, 0, model.SideBuy, "volume dry-up"},
		{"long bearish body", long, fiboSnapshot(flatFrame(155.9), bearish), 7.5, 0, model.SideBuy, "long bearish body"},
		{"high beyond the 1.618 extension", long, fiboSnapshot(flatFrame(205), withHigh(205, 262)), 10, 35, model.SideSell, "extension target"},
		{"high beyond the 1.272 extension", long, fiboSnapshot(flatFrame(205), withHigh(205, 230)), 10, 28, model.SideSell, "extension target"},
		{"close above the swing high", long, fiboSnapshot(flatFrame(205), flatFrame(205)), 10, 15, model.SideSell, "extension target"},
		{"invalid swing", long, invalid, 0, 0, "", ""},
		{"short swing deep in the box", short, fiboSnapshot(flatFrame(120), flatFrame(120)), 5, 0, model.SideBuy, "retracement zone"},
		{"short swing at the box high", short, fiboSnapshot(flatFrame(200), flatFrame(200)), 0, 3, model.SideSell, "extension target"},
	})
}

// Around the stop level a close is either inside the deepest retracement
// band or a stop-loss breach, never both and never neither, and the label
// follows the same decision.
func TestScoreFibo_StopLevelAgreesWithClassify(t *testing.T) {
	p := profile.LongSwing()
	swings := []model.SwingReference{
		legSwing,
		{HighPrice: 130, HighIndex: 10, LowPrice: 80, Range: 50, Valid: true},
		{HighPrice: 33.3, HighIndex: 10, LowPrice: 20.1, Range: 33.3 - 20.1, Valid: true},
		{HighPrice: 57.3, HighIndex: 10, LowPrice: 44.4, Range: 57.3 - 44.4, Valid: true},
	}
	for _, ref := range swings {
		level := swing.Retracement(ref, p.StopLossDepth)
		prices := []float64{
			level,
			math.Nextafter(level, math.Inf(1)),
			math.Nextafter(level, math.Inf(-1)),
			level + ref.Range*1e-6,
			level - ref.Range*1e-6,
		}
		for _, price := range prices {
			s := snapshotOf(flatFrame(price), flatFrame(price))
			s.p, s.swing = p, ref
			tl := newTally(model.IndicatorFibo, p.Weight(model.IndicatorFibo))
			scoreFibo(s, tl)
			sub := tl.result()

			_, inBand := findPart(sub, model.SideBuy, "retracement zone")
			_, breached := findPart(sub, model.SideSell, "stop-loss breach")
			_, label := Classify(p, 0, 0, model.Diagnostics{Close: price, MASlope: 0.01}, ref)

			if inBand == breached {
				t.Errorf("%v on swing %v/%v: in band %v, breached %v", price, ref.HighPrice, ref.LowPrice, inBand, breached)
			}
			if (label == model.SellStopLoss) != breached {
				t.Errorf("%v on swing %v/%v: label %q, fibo breach %v", price, ref.HighPrice, ref.LowPrice, label, breached)
			}
		}
		if _, label := Classify(p, 0, 0, model.Diagnostics{Close: level, MASlope: 0.01}, ref); label == model.SellStopLoss {
			t.Errorf("swing %v/%v: close on the level labelled stop-loss", ref.HighPrice, ref.LowPrice)
		}
	}
}

func slopeSnapshot(pct, prevSlope, lastSlope float64) *snapshot {
	prev, last := flatFrame(100), flatFrame(100)
	prev.Slope, last.Slope = prevSlope, lastSlope
	s := snapshotOf(prev, last)
	s.diag.SlopePercentile = pct
	return s
}

func TestScoreSlope(t *testing.T) {
	p := profile.LongSwing()
	checkRules(t, model.IndicatorSlope, []ruleCase{
		{"bottom decile rising", p, slopeSnapshot(5, 0.1, 0.2), 17.5, 0, model.SideBuy, "slope rising"},
		{"bottom decile falling", p, slopeSnapshot(5, 0.2, 0.1), 12.5, 0, model.SideBuy, "slope percentile"},
		{"low band edge rising", p, slopeSnapshot(37, 0.1, 0.2), 6, 0, model.SideBuy, "slope rising"},
		{"neutral rank ignores momentum", p, slopeSnapshot(50, 0.1, 0.2), 0, 0, "", ""},
		{"top decile falling", p, slopeSnapshot(95, 0.2, 0.1), 0, 17.5, model.SideSell, "slope falling"},
		{"top decile rising", p, slopeSnapshot(95, 0.1, 0.2), 0, 12.5, model.SideSell, "slope percentile"},
	})
}

func maSnapshot(bias, slope float64, broken bool) *snapshot {
	s := snapshotOf(flatFrame(100), flatFrame(100))
	s.diag.MABias, s.diag.MASlope, s.diag.MABroken = bias, slope, broken
	return s
}

func TestScoreMA(t *testing.T) {
	long, short := profile.LongSwing(), profile.ShortSwing()
	checkRules(t, model.IndicatorMA, []ruleCase{
		{"rising near the average", long, maSnapshot(3, 0.01, false), 7, 0, model.SideBuy, "bias"},
		{"pullback in uptrend", long, maSnapshot(-2, 0.01, false), 4, 0, model.SideBuy, "pullback in uptrend"},
		{"stretched above", long, maSnapshot(12, 0.01, false), 3, 0, model.SideBuy, "average rising"},
		{"overextended and falling", long, maSnapshot(30, -0.01, false), 0, 7, model.SideSell, "bias"},
		{"break zeroes buy and floors sell", long, maSnapshot(-4, 0.01, true), 0, 3, model.SideSell, "close below average"},
		{"break on a falling average", long, maSnapshot(-4, -0.01, true), 0, 3, model.SideSell, "average falling"},
		{"short swing break keeps buy", short, maSnapshot(-7, -0.01, true), 10, 3, model.SideSell, "close below average"},
	})
}

func macdSnapshot(prevHist, hist, close float64, lookback []model.IndicatorFrame) *snapshot {
	prev, last := flatFrame(close), flatFrame(close)
	prev.MACDHist, last.MACDHist = prevHist, hist
	s := snapshotOf(prev, last)
	s.lookback = lookback
	return s
}

func histWindow(close, hist float64) []model.IndicatorFrame {
	out := make([]model.IndicatorFrame, 5)
	for i := range out {
		out[i] = flatFrame(close)
		out[i].MACDHist = hist
	}
	return out
}

func TestDivergence_SkipsWarmUpValues(t *testing.T) {
	window := histWindow(100, -3)
	window[0].MACDHist = math.NaN()
	window[1].Close = math.NaN()
	s := macdSnapshot(-2, -1, 95, window)
	if !s.bottomDivergence(histOf) {
		t.Error("bottom divergence lost to an undefined lookback value")
	}
	if s.topDivergence(histOf) {
		t.Error("unexpected top divergence")
	}

	undefined := histWindow(100, math.NaN())
	if macdSnapshot(-2, -1, 95, undefined).bottomDivergence(histOf) {
		t.Error("divergence against an undefined window")
	}
}

func TestScoreMACD(t *testing.T) {
	long, short := profile.LongSwing(), profile.ShortSwing()
	checkRules(t, model.IndicatorMACD, []ruleCase{
		{"bullish contraction", long, macdSnapshot(-2, -1, 100, nil), 3, 0, model.SideBuy, "histogram contraction"},
		{"zero-line cross up", long, macdSnapshot(-1, 0.5, 100, nil), 2, 0, model.SideBuy, "zero-line cross up"},
		{"bearish contraction", long, macdSnapshot(2, 1, 100, nil), 0, 3, model.SideSell, "histogram contraction"},
		{"zero-line cross down", long, macdSnapshot(1, -0.5, 100, nil), 0, 2, model.SideSell, "zero-line cross down"},
		{"bottom divergence", long, macdSnapshot(-2, -1, 95, histWindow(100, -3)), 5, 0, model.SideBuy, "bottom divergence"},
		{"top divergence", long, macdSnapshot(2, 1, 105, histWindow(100, 3)), 0, 5, model.SideSell, "top divergence"},
		{"short swing cross", short, macdSnapshot(-1, 0.5, 100, nil), 5, 0, model.SideBuy, "zero-line cross up"},
		{"short swing has no divergence", short, macdSnapshot(-2, -1, 95, histWindow(100, -3)), 3, 0, "", ""},
	})
}

func dmiSnapshot(prevPlus, prevMinus, prevADX, plus, minus, adx float64) *snapshot {
	prev, last := flatFrame(100), flatFrame(100)
	prev.PlusDI, prev.MinusDI, prev.ADX = prevPlus, prevMinus, prevADX
	last.PlusDI, last.MinusDI, last.ADX = plus, minus, adx
	return snapshotOf(prev, last)
}

func TestScoreDMI(t *testing.T) {
	p := profile.LongSwing()
	checkRules(t, model.IndicatorDMI, []ruleCase{
		{"fresh cross into a strong rising trend", p, dmiSnapshot(20, 22, 26, 25, 20, 28), 6, 0, model.SideBuy, "fresh +DI cross"},
		{"weak trend building", p, dmiSnapshot(25, 20, 18, 26, 20, 20), 3, 0, model.SideBuy, "trend building"},
		{"ADX on the strong level", p, dmiSnapshot(25, 20, 24, 26, 20, 25), 2, 0, model.SideBuy, "+DI above -DI"},
		{"overextended trend", p, dmiSnapshot(30, 10, 55, 31, 10, 56), 4, 0, model.SideBuy, "overextended trend"},
		{"overextended and fading", p, dmiSnapshot(30, 10, 57, 31, 10, 56), 1, 0, model.SideBuy, "overextended trend"},
		{"strong downtrend building", p, dmiSnapshot(15, 25, 26, 14, 26, 30), 0, 5, model.SideSell, "strong trend building"},
	})
}

type bbBar struct {
	prevMid, mid     float64
	close, high      float64
	pb               float64
	prevWidth, width float64
	volume           float64
}

func bbSnapshot(b bbBar) *snapshot {
	prev, last := flatFrame(b.close), flatFrame(b.close)
	prev.BBMid, last.BBMid = b.prevMid, b.mid
	prev.BandWidth, last.BandWidth = b.prevWidth, b.width
	last.High, last.PercentB, last.Volume = b.high, b.pb, b.volume
	return snapshotOf(prev, last)
}

func TestScoreBB(t *testing.T) {
	long, short := profile.LongSwing(), profile.ShortSwing()
	flat := func(close, high, pb float64) *snapshot {
		return bbSnapshot(bbBar{100, 100, close, high, pb, 0.1, 0.1, 1000})
	}
	checkRules(t, model.IndicatorBB, []ruleCase{
		{"below the lower band", long, flat(88, 88, -0.1), 3, 0, model.SideBuy, "percent b"},
		{"mid band retest", long, bbSnapshot(bbBar{99.5, 100, 100.5, 100.5, 0.55, 0.1, 0.1, 1000}), 2, 0, model.SideBuy, "mid band retest"},
		{"above the upper band", long, flat(112, 112, 1.2), 0, 3, model.SideSell, "percent b"},
		{"false breakout", long, flat(109, 112, 0.95), 0, 2, model.SideSell, "false breakout"},
		{"expansion on volume", long, bbSnapshot(bbBar{100, 100, 112, 112, 1.2, 0.1, 0.2, 2000}), 0, 0, model.SideSell, "band expansion on volume"},
		{"expansion on thin volume", long, bbSnapshot(bbBar{100, 100, 112, 112, 1.2, 0.1, 0.2, 1200}), 0, 3, model.SideSell, "percent b"},
		{"undefined percent b", long, flat(100, 100, math.NaN()), 0, 0, "", ""},
		{"short swing false breakout keeps the higher score", short, flat(109, 112, 0.95), 0, 27.5, model.SideSell, "percent b"},
		{"short swing false breakout floor", short, flat(105, 112, 0.5), 0, 20, model.SideSell, "false breakout"},
		{"short swing lower band", short, flat(95, 95, 0.2), 17.5, 0, model.SideBuy, "percent b"},
	})
}
