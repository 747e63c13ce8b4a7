package strategy

import "SwingSentinel/internal/model"

// tally accumulates one indicator's raw buy and sell points together with
// the rule contributions that produced them.
type tally struct {
	indicator string
	max       float64
	buy       float64
	sell      float64
	parts     []model.ScorePart
}

func newTally(indicator string, limit float64) *tally {
	return &tally{indicator: indicator, max: limit}
}

func (t *tally) side(s model.Side) *float64 {
	if s == model.SideBuy {
		return &t.buy
	}
	return &t.sell
}

// add credits pts to one side.
func (t *tally) add(s model.Side, rule string, pts float64) {
	if pts == 0 {
		return
	}
	*t.side(s) += pts
	t.parts = append(t.parts, model.ScorePart{Side: s, Rule: rule, Points: pts})
}

// set overrides one side with v, recording the change as a contribution.
func (t *tally) set(s model.Side, rule string, v float64) {
	cur := t.side(s)
	if delta := v - *cur; delta != 0 {
		t.parts = append(t.parts, model.ScorePart{Side: s, Rule: rule, Points: delta})
	}
	*cur = v
}

// result clamps both sides to [0, max].
func (t *tally) result() model.SubScore {
	return model.SubScore{
		Indicator: t.indicator,
		Buy:       clamp(t.buy, 0, t.max),
		Sell:      clamp(t.sell, 0, t.max),
		Max:       t.max,
		Parts:     t.parts,
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
