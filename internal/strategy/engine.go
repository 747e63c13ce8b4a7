// Package strategy turns a bar series into weighted buy/sell scores and
// signal labels under a scoring profile.
package strategy

import (
	"fmt"
	"math"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/swing"
)

// ErrInsufficientData is reported by AnalysisResult.Err when the series is
// shorter than the profile minimum.
var ErrInsufficientData = model.ErrInsufficientData

// Analyze scores bars under p. It is deterministic, keeps no state between
// calls and never fails: a series shorter than the profile minimum yields an
// insufficient_data result without frames or scores. A nil profile selects
// long-swing.
func Analyze(bars []model.Bar, p *profile.Profile) *model.AnalysisResult {
	if p == nil {
		p = profile.LongSwing()
	}
	clean := calculator.Normalize(bars)
	res := &model.AnalysisResult{
		ProfileID: p.ID,
		BarCount:  len(clean),
		MinBars:   p.MinBars,
	}
	if len(clean) < p.MinBars || len(clean) < 2 {
		res.Status = model.StatusInsufficientData
		res.Reason = fmt.Sprintf("need at least %d bars, got %d", p.MinBars, len(clean))
		return res
	}

	frames := calculator.BuildFrames(clean, calculator.Options{
		ShortMA: calculator.ShortMAPeriod,
		LongMA:  calculator.LongMAPeriod,
		TrendMA: p.MAWindow,
	})
	snap := newSnapshot(frames, p)

	res.Status = model.StatusOK
	res.Frames = frames
	res.Swing = &snap.swing
	res.Scores = make(map[string]model.SubScore)

	var buySum, sellSum float64
	for _, name := range model.Indicators {
		w := p.Weight(name)
		if w <= 0 {
			continue
		}
		t := newTally(name, w)
		scorers[name](snap, t)
		sub := t.result()
		res.Scores[name] = sub
		buySum += sub.Buy
		sellSum += sub.Sell
	}
	res.BuyTotal = int(math.Round(buySum))
	res.SellTotal = int(math.Round(sellSum))

	if p.StopLossDepth > 0 {
		snap.diag.StopLossLevel = swing.Retracement(snap.swing, p.StopLossDepth)
	}
	res.BuySignal, res.SellSignal = Classify(p, res.BuyTotal, res.SellTotal, snap.diag, snap.swing)
	res.Diagnostics = &snap.diag
	return res
}

// AnalyzeSeries scores a delivered price series and tags the result with
// its symbol.
func AnalyzeSeries(series model.PriceSeries, p *profile.Profile) *model.AnalysisResult {
	res := Analyze(series.Bars, p)
	res.Symbol = series.Symbol
	return res
}

func newSnapshot(frames []model.IndicatorFrame, p *profile.Profile) *snapshot {
	n := len(frames)
	s := &snapshot{
		p:      p,
		frames: frames,
		last:   frames[n-1],
		prev:   frames[n-2],
	}
	s.swing = swing.Locate(calculator.Field(frames, closeOf), p.Swing)

	start := max(n-p.Divergence.Bars-p.Divergence.Gap, 0)
	end := max(n-p.Divergence.Gap, start)
	s.lookback = frames[start:end]

	s.diag = model.Diagnostics{
		Close:           s.last.Close,
		SlopePercentile: calculator.SlopePercentile(calculator.Field(frames, func(f model.IndicatorFrame) float64 { return f.Slope })),
		Passivation:     passivated(frames, p.KD.PassivationBars, p.KD.PassivationLevel),
	}
	ma, prevMA := s.last.TrendMA, s.prev.TrendMA
	if !math.IsNaN(ma) && ma != 0 {
		s.diag.MABias = (s.last.Close - ma) / ma * 100
	}
	if !math.IsNaN(ma) && !math.IsNaN(prevMA) && prevMA != 0 {
		s.diag.MASlope = (ma - prevMA) / prevMA
	}
	s.diag.MABroken = belowAverage(frames, p.MA.BreakBars)
	return s
}

// belowAverage reports whether each of the last n closes sits under the
// trend average.
func belowAverage(frames []model.IndicatorFrame, n int) bool {
	if n <= 0 || len(frames) < n {
		return false
	}
	for _, f := range frames[len(frames)-n:] {
		if !(f.Close < f.TrendMA) {
			return false
		}
	}
	return true
}
