package strategy

import (
	"math"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/swing"
)

const (
	buy  = model.SideBuy
	sell = model.SideSell
)

// snapshot is the read-only view every indicator scorer works from.
type snapshot struct {
	p      *profile.Profile
	frames []model.IndicatorFrame
	last   model.IndicatorFrame
	prev   model.IndicatorFrame
	swing  model.SwingReference
	// lookback is the divergence window preceding the last bar.
	lookback []model.IndicatorFrame
	diag     model.Diagnostics
}

type scorer func(s *snapshot, t *tally)

var scorers = map[string]scorer{
	model.IndicatorFibo:  scoreFibo,
	model.IndicatorSlope: scoreSlope,
	model.IndicatorMA:    scoreMA,
	model.IndicatorRSI:   scoreRSI,
	model.IndicatorKD:    scoreKD,
	model.IndicatorBB:    scoreBB,
	model.IndicatorMACD:  scoreMACD,
	model.IndicatorDMI:   scoreDMI,
}

func closeOf(f model.IndicatorFrame) float64 { return f.Close }

// lookbackExtremes returns the extremes of the close and of pick over the
// divergence window.
func (s *snapshot) lookbackExtremes(pick func(model.IndicatorFrame) float64) (closes, values calculator.Extremes, ok bool) {
	n := len(s.lookback)
	closes, okClose := calculator.Window(calculator.Field(s.lookback, closeOf), 0, n)
	values, okValue := calculator.Window(calculator.Field(s.lookback, pick), 0, n)
	return closes, values, okClose && okValue
}

// bottomDivergence: the close undercuts the lookback's lowest close while the
// indicator stays above its lookback minimum.
func (s *snapshot) bottomDivergence(pick func(model.IndicatorFrame) float64) bool {
	closes, values, ok := s.lookbackExtremes(pick)
	return ok && s.last.Close < closes.Low && pick(s.last) > values.Low
}

// topDivergence: the close exceeds the lookback's highest close while the
// indicator stays below its lookback maximum.
func (s *snapshot) topDivergence(pick func(model.IndicatorFrame) float64) bool {
	closes, values, ok := s.lookbackExtremes(pick)
	return ok && s.last.Close > closes.High && pick(s.last) < values.High
}

// scoreFibo scores the close against the swing levels. An invalid swing
// scores nothing.
func scoreFibo(s *snapshot, t *tally) {
	if !s.swing.Valid {
		return
	}
	rule := s.p.Fibo
	last := s.last

	t.add(buy, "retracement zone", rule.BuyTiers.Score(swing.Depth(s.swing, last.Close)))
	if c := rule.Candles; c != nil {
		body := math.Abs(last.Close - last.Open)
		lowerShadow := math.Min(last.Close, last.Open) - last.Low
		if last.Close > last.Open && last.Close > s.prev.Close {
			t.add(buy, "reversal candle", c.ReversalBonus)
		}
		if lowerShadow > body && last.Low <= swing.Retracement(s.swing, c.ShadowLevel) {
			t.add(buy, "lower shadow at support", c.ShadowBonus)
		}
		if last.Volume < last.VolMA5*c.DryVolumeRatio {
			t.add(buy, "volume dry-up", c.DryVolumeBonus)
		}
		if last.Close < last.Open && body > last.ATR*c.BearishATRMult {
			t.add(buy, "long bearish body", -c.BearishPenalty)
		}
	}

	for _, pt := range rule.SellTiers {
		price := last.High
		if pt.Price == "close" {
			price = last.Close
		}
		tier := profile.Tier{Op: pt.Op, Bound: pt.Bound, Score: pt.Score}
		if tier.Match(swing.Extension(s.swing, price)) {
			t.add(sell, "extension target", pt.Score)
			break
		}
	}
	if s.p.StopLossDepth > 0 && swing.Breached(s.swing, s.p.StopLossDepth, last.Close) {
		t.set(sell, "stop-loss breach", t.max)
	}
}

// scoreSlope scores the percentile rank of the regression slope. Momentum
// only counts once the rank itself scores.
func scoreSlope(s *snapshot, t *tally) {
	rule := s.p.Slope
	pct := s.diag.SlopePercentile
	if v := rule.BuyTiers.Score(pct); v > 0 {
		t.add(buy, "slope percentile", v)
		if s.last.Slope > s.prev.Slope {
			t.add(buy, "slope rising", rule.MomentumBonus)
		}
	}
	if v := rule.SellTiers.Score(pct); v > 0 {
		t.add(sell, "slope percentile", v)
		if s.last.Slope < s.prev.Slope {
			t.add(sell, "slope falling", rule.MomentumBonus)
		}
	}
}

// scoreMA scores the bias and direction of the trend average.
func scoreMA(s *snapshot, t *tally) {
	rule := s.p.MA
	bias, slope, broken := s.diag.MABias, s.diag.MASlope, s.diag.MABroken

	if !(broken && rule.BreakZeroesBuy) {
		if slope > 0 {
			t.add(buy, "average rising", rule.BuySlopeBonus)
		}
		t.add(buy, "bias", rule.BuyBiasTiers.Score(bias))
		if bias < 0 && slope > 0 {
			t.add(buy, "pullback in uptrend", rule.PullbackBonus)
		}
	}

	if slope < 0 {
		t.add(sell, "average falling", rule.SellSlopeBonus)
	}
	t.add(sell, "bias", rule.SellBiasTiers.Score(bias))
	if broken && t.sell < rule.BreakFloor {
		t.set(sell, "close below average", rule.BreakFloor)
	}
}

func applyDivergence(t *tally, side model.Side, d profile.Divergence, rule string) {
	if d.ForceMax {
		t.set(side, rule, t.max)
		return
	}
	t.add(side, rule, d.Bonus)
}

func rsiOf(f model.IndicatorFrame) float64 { return f.RSI }

// scoreRSI scores the RSI level, midline crosses and divergences.
func scoreRSI(s *snapshot, t *tally) {
	rule := s.p.RSI
	r, pr := s.last.RSI, s.prev.RSI

	t.add(buy, "rsi level", rule.BuyTiers.Score(r))
	if pr <= rule.Midline && r > rule.Midline {
		t.add(buy, "midline cross up", rule.MidCrossBonus)
	}
	if rule.BuyDivergence.Enabled() && s.bottomDivergence(rsiOf) {
		applyDivergence(t, buy, rule.BuyDivergence, "bottom divergence")
	}

	t.add(sell, "rsi level", rule.SellTiers.Score(r))
	if pr >= rule.Midline && r < rule.Midline {
		t.add(sell, "midline cross down", rule.MidCrossBonus)
	}
	if rule.SellDivergence.Enabled() && s.topDivergence(rsiOf) {
		applyDivergence(t, sell, rule.SellDivergence, "top divergence")
	}
}

func kOf(f model.IndicatorFrame) float64 { return f.K }

// scoreKD scores the stochastic position, crosses and divergence, and
// silences the sell side while %K stays pinned above the passivation level.
func scoreKD(s *snapshot, t *tally) {
	rule := s.p.KD
	k, d := s.last.K, s.last.D
	pk, pd := s.prev.K, s.prev.D

	t.add(buy, "k position", rule.BuyTiers.Score(k))
	if pk < pd && k > d {
		t.add(buy, "golden cross", rule.BuyCrossTiers.Score(k))
	}
	if rule.BuyDivergence.Enabled() && s.bottomDivergence(kOf) {
		applyDivergence(t, buy, rule.BuyDivergence, "bottom divergence")
	}

	t.add(sell, "k position", rule.SellTiers.Score(k))
	if pk > pd && k < d {
		t.add(sell, "death cross", rule.SellCrossTiers.Score(k))
	}
	if s.diag.Passivation {
		t.set(sell, "passivation", 0)
	}
}

// passivated reports whether the last n frames all have %K above level and
// above %D.
func passivated(frames []model.IndicatorFrame, n int, level float64) bool {
	if n <= 0 || len(frames) < n {
		return false
	}
	for _, f := range frames[len(frames)-n:] {
		if !(f.K > level && f.K > f.D) {
			return false
		}
	}
	return true
}

func histOf(f model.IndicatorFrame) float64 { return f.MACDHist }

// scoreMACD scores histogram contraction, zero-line crosses and divergence.
func scoreMACD(s *snapshot, t *tally) {
	rule := s.p.MACD
	h, ph := s.last.MACDHist, s.prev.MACDHist

	var buyParts, sellParts []model.ScorePart
	if h < 0 && h > ph {
		buyParts = append(buyParts, model.ScorePart{Rule: "histogram contraction", Points: rule.ContractionScore})
	}
	if ph < 0 && h > 0 {
		buyParts = append(buyParts, model.ScorePart{Rule: "zero-line cross up", Points: rule.CrossScore})
	}
	if h > 0 && h < ph {
		sellParts = append(sellParts, model.ScorePart{Rule: "histogram contraction", Points: rule.ContractionScore})
	}
	if ph > 0 && h < 0 {
		sellParts = append(sellParts, model.ScorePart{Rule: "zero-line cross down", Points: rule.CrossScore})
	}
	combine(t, buy, buyParts, rule.Combine)
	combine(t, sell, sellParts, rule.Combine)

	if rule.DivergenceBonus != 0 {
		if h < 0 && s.bottomDivergence(histOf) {
			t.add(buy, "bottom divergence", rule.DivergenceBonus)
		}
		if h > 0 && s.topDivergence(histOf) {
			t.add(sell, "top divergence", rule.DivergenceBonus)
		}
	}
}

func combine(t *tally, side model.Side, parts []model.ScorePart, mode string) {
	if len(parts) == 0 {
		return
	}
	if mode == profile.CombineMax {
		best := parts[0]
		for _, p := range parts[1:] {
			if p.Points > best.Points {
				best = p
			}
		}
		parts = []model.ScorePart{best}
	}
	for _, p := range parts {
		t.add(side, p.Rule, p.Points)
	}
}

// scoreDMI scores directional dominance and trend strength.
func scoreDMI(s *snapshot, t *tally) {
	rule := s.p.DMI
	last, prev := s.last, s.prev
	adxRising := last.ADX > prev.ADX

	if last.PlusDI > last.MinusDI {
		t.add(buy, "+DI above -DI", rule.TrendScore)
		if prev.PlusDI <= prev.MinusDI {
			t.add(buy, "fresh +DI cross", rule.FreshCrossBonus)
		}
		switch {
		case last.ADX > rule.StrongADX && adxRising:
			t.add(buy, "strong trend building", rule.StrongRisingBonus)
		case last.ADX < rule.StrongADX && adxRising:
			t.add(buy, "trend building", rule.WeakRisingBonus)
		}
	}
	if rule.ExcessADX > 0 && last.ADX > rule.ExcessADX {
		t.add(buy, "overextended trend", -rule.ExcessPenalty)
	}

	if last.MinusDI > last.PlusDI {
		t.add(sell, "-DI above +DI", rule.TrendScore)
		if last.ADX > rule.StrongADX && adxRising {
			t.add(sell, "strong trend building", rule.StrongRisingBonus)
		}
	}
}

// scoreBB scores Bollinger %B, mid-band retests, false breakouts and band
// expansion on volume.
func scoreBB(s *snapshot, t *tally) {
	rule := s.p.BB
	last, prev := s.last, s.prev
	pb := last.PercentB
	if math.IsNaN(pb) {
		pb = rule.NullPercentB
	}

	t.add(buy, "percent b", rule.BuyTiers.Score(pb))
	if rule.MidRetestDistance > 0 && last.BBMid != 0 && last.BBMid > prev.BBMid {
		if math.Abs(last.Close-last.BBMid)/last.BBMid < rule.MidRetestDistance {
			t.set(buy, "mid band retest", rule.MidRetestScore)
		}
	}

	t.add(sell, "percent b", rule.SellTiers.Score(pb))
	if rule.FalseBreakoutScore > 0 && last.High > last.BBUpper && last.Close < last.BBUpper {
		score := rule.FalseBreakoutScore
		if rule.FalseBreakoutMode == profile.BreakoutMax {
			score = math.Max(t.sell, score)
		}
		t.set(sell, "false breakout", score)
	}
	if rule.ExpansionOverride && t.sell > 0 &&
		last.BandWidth > prev.BandWidth && last.Volume > last.VolMA5*rule.ExpansionVolumeRatio {
		t.set(sell, "band expansion on volume", 0)
	}
}
