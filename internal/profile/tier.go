package profile

import "fmt"

// Op is the comparison a Tier applies to its input.
type Op string

const (
	OpLT  Op = "lt"
	OpLE  Op = "le"
	OpGT  Op = "gt"
	OpGE  Op = "ge"
	OpAny Op = "any"
)

func (o Op) valid() bool {
	switch o {
	case OpLT, OpLE, OpGT, OpGE, OpAny:
		return true
	}
	return false
}

// Lerp interpolates a score linearly over an input segment. The input is
// clamped to the segment first; a degenerate segment yields ScoreFrom.
type Lerp struct {
	From      float64 `yaml:"from" toml:"from" json:"from"`
	To        float64 `yaml:"to" toml:"to" json:"to"`
	ScoreFrom float64 `yaml:"score_from" toml:"score_from" json:"score_from"`
	ScoreTo   float64 `yaml:"score_to" toml:"score_to" json:"score_to"`
}

// At returns the interpolated score for x.
func (l Lerp) At(x float64) float64 {
	if l.From == l.To {
		return l.ScoreFrom
	}
	lo, hi := min(l.From, l.To), max(l.From, l.To)
	x = max(min(x, hi), lo)
	return l.ScoreFrom + (x-l.From)*(l.ScoreTo-l.ScoreFrom)/(l.To-l.From)
}

// Tier is one row of a scoring table: when the input satisfies Op against
// Bound, it scores Score, or the Lerp value when one is set.
type Tier struct {
	Op    Op      `yaml:"op" toml:"op" json:"op"`
	Bound float64 `yaml:"bound,omitempty" toml:"bound,omitempty" json:"bound,omitempty"`
	Score float64 `yaml:"score,omitempty" toml:"score,omitempty" json:"score,omitempty"`
	Lerp  *Lerp   `yaml:"lerp,omitempty" toml:"lerp,omitempty" json:"lerp,omitempty"`
}

// Match reports whether x satisfies the tier condition.
func (t Tier) Match(x float64) bool {
	switch t.Op {
	case OpLT:
		return x < t.Bound
	case OpLE:
		return x <= t.Bound
	case OpGT:
		return x > t.Bound
	case OpGE:
		return x >= t.Bound
	case OpAny:
		return true
	}
	return false
}

// Value is the score of a matching input.
func (t Tier) Value(x float64) float64 {
	if t.Lerp != nil {
		return t.Lerp.At(x)
	}
	return t.Score
}

// Tiers is an ordered table where the first matching tier wins.
type Tiers []Tier

// Eval returns the score of the first matching tier, or 0 and false.
func (ts Tiers) Eval(x float64) (float64, bool) {
	for _, t := range ts {
		if t.Match(x) {
			return t.Value(x), true
		}
	}
	return 0, false
}

// Score is Eval without the match flag.
func (ts Tiers) Score(x float64) float64 {
	v, _ := ts.Eval(x)
	return v
}

func (ts Tiers) validate(name string) error {
	for i, t := range ts {
		if !t.Op.valid() {
			return fmt.Errorf("%s[%d]: unknown op %q", name, i, t.Op)
		}
	}
	return nil
}

func (ts Tiers) clone() Tiers {
	if ts == nil {
		return nil
	}
	out := make(Tiers, len(ts))
	for i, t := range ts {
		out[i] = t
		if t.Lerp != nil {
			l := *t.Lerp
			out[i].Lerp = &l
		}
	}
	return out
}

func lerp(from, to, scoreFrom, scoreTo float64) *Lerp {
	return &Lerp{From: from, To: to, ScoreFrom: scoreFrom, ScoreTo: scoreTo}
}
