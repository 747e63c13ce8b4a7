// Package profile defines the declarative scoring strategies applied by the
// engine and the registry that maps instruments to them.
package profile

import (
	"fmt"
	"maps"
	"slices"

	"SwingSentinel/internal/model"
)

// Profile is a named strategy: swing parameters, per-indicator weights and
// rule tables, divergence window and signal thresholds.
type Profile struct {
	ID          string `yaml:"id" toml:"id" json:"id"`
	Name        string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`

	// MinBars is the number of normalized bars required before scoring.
	MinBars  int `yaml:"min_bars" toml:"min_bars" json:"min_bars"`
	MAWindow int `yaml:"ma_window" toml:"ma_window" json:"ma_window"`

	Swing SwingRule `yaml:"swing" toml:"swing" json:"swing"`

	// Weights caps each indicator's sub-score. A zero weight disables the
	// indicator entirely.
	Weights map[string]float64 `yaml:"weights" toml:"weights" json:"weights"`

	Fibo  FiboRule  `yaml:"fibo" toml:"fibo" json:"fibo"`
	Slope SlopeRule `yaml:"slope" toml:"slope" json:"slope"`
	MA    MARule    `yaml:"ma" toml:"ma" json:"ma"`
	RSI   RSIRule   `yaml:"rsi" toml:"rsi" json:"rsi"`
	KD    KDRule    `yaml:"kd" toml:"kd" json:"kd"`
	MACD  MACDRule  `yaml:"macd" toml:"macd" json:"macd"`
	DMI   DMIRule   `yaml:"dmi" toml:"dmi" json:"dmi"`
	BB    BBRule    `yaml:"bb" toml:"bb" json:"bb"`

	Divergence DivergenceWindow `yaml:"divergence" toml:"divergence" json:"divergence"`
	Signals    Signals          `yaml:"signals" toml:"signals" json:"signals"`

	// StopLossDepth is the retracement whose breach forces the stop-loss
	// label. Zero disables the override.
	StopLossDepth float64 `yaml:"stop_loss_depth" toml:"stop_loss_depth" json:"stop_loss_depth"`
}

// SwingRule configures the swing locator.
type SwingRule struct {
	Lookback         int       `yaml:"lookback" toml:"lookback" json:"lookback"`
	ExtendedLookback int       `yaml:"extended_lookback,omitempty" toml:"extended_lookback,omitempty" json:"extended_lookback,omitempty"`
	PrecedenceMargin int       `yaml:"precedence_margin,omitempty" toml:"precedence_margin,omitempty" json:"precedence_margin,omitempty"`
	LowBeforeHigh    bool      `yaml:"low_before_high" toml:"low_before_high" json:"low_before_high"`
	Threshold        float64   `yaml:"threshold" toml:"threshold" json:"threshold"`
	Retracements     []float64 `yaml:"retracements" toml:"retracements" json:"retracements"`
	Extensions       []float64 `yaml:"extensions" toml:"extensions" json:"extensions"`
}

// PriceTier scores the extension of a bar price above the swing high.
type PriceTier struct {
	// Price is "high" or "close".
	Price string  `yaml:"price" toml:"price" json:"price"`
	Op    Op      `yaml:"op" toml:"op" json:"op"`
	Bound float64 `yaml:"bound" toml:"bound" json:"bound"`
	Score float64 `yaml:"score" toml:"score" json:"score"`
}

// CandleRule holds the candlestick modifiers of the Fibonacci buy score.
type CandleRule struct {
	ReversalBonus  float64 `yaml:"reversal_bonus" toml:"reversal_bonus" json:"reversal_bonus"`
	ShadowBonus    float64 `yaml:"shadow_bonus" toml:"shadow_bonus" json:"shadow_bonus"`
	ShadowLevel    float64 `yaml:"shadow_level" toml:"shadow_level" json:"shadow_level"`
	DryVolumeRatio float64 `yaml:"dry_volume_ratio" toml:"dry_volume_ratio" json:"dry_volume_ratio"`
	DryVolumeBonus float64 `yaml:"dry_volume_bonus" toml:"dry_volume_bonus" json:"dry_volume_bonus"`
	BearishATRMult float64 `yaml:"bearish_atr_mult" toml:"bearish_atr_mult" json:"bearish_atr_mult"`
	BearishPenalty float64 `yaml:"bearish_penalty" toml:"bearish_penalty" json:"bearish_penalty"`
}

// FiboRule scores the close against the swing levels. BuyTiers take the
// retracement depth (0 at the swing high, 1 at the swing low); SellTiers take
// the extension above the swing high in units of the range.
type FiboRule struct {
	BuyTiers  Tiers       `yaml:"buy_tiers" toml:"buy_tiers" json:"buy_tiers"`
	Candles   *CandleRule `yaml:"candles,omitempty" toml:"candles,omitempty" json:"candles,omitempty"`
	SellTiers []PriceTier `yaml:"sell_tiers" toml:"sell_tiers" json:"sell_tiers"`
}

// SlopeRule scores the percentile rank of the regression slope.
type SlopeRule struct {
	BuyTiers      Tiers   `yaml:"buy_tiers" toml:"buy_tiers" json:"buy_tiers"`
	SellTiers     Tiers   `yaml:"sell_tiers" toml:"sell_tiers" json:"sell_tiers"`
	MomentumBonus float64 `yaml:"momentum_bonus" toml:"momentum_bonus" json:"momentum_bonus"`
}

// MARule scores bias and direction of the trend moving average.
type MARule struct {
	BuySlopeBonus  float64 `yaml:"buy_slope_bonus" toml:"buy_slope_bonus" json:"buy_slope_bonus"`
	BuyBiasTiers   Tiers   `yaml:"buy_bias_tiers" toml:"buy_bias_tiers" json:"buy_bias_tiers"`
	PullbackBonus  float64 `yaml:"pullback_bonus" toml:"pullback_bonus" json:"pullback_bonus"`
	BreakBars      int     `yaml:"break_bars" toml:"break_bars" json:"break_bars"`
	BreakZeroesBuy bool    `yaml:"break_zeroes_buy" toml:"break_zeroes_buy" json:"break_zeroes_buy"`
	SellSlopeBonus float64 `yaml:"sell_slope_bonus" toml:"sell_slope_bonus" json:"sell_slope_bonus"`
	SellBiasTiers  Tiers   `yaml:"sell_bias_tiers" toml:"sell_bias_tiers" json:"sell_bias_tiers"`
	BreakFloor     float64 `yaml:"break_floor" toml:"break_floor" json:"break_floor"`
}

// Divergence describes what a confirmed divergence does to a sub-score.
// ForceMax sets the side to the indicator weight, otherwise Bonus is added.
type Divergence struct {
	Bonus    float64 `yaml:"bonus,omitempty" toml:"bonus,omitempty" json:"bonus,omitempty"`
	ForceMax bool    `yaml:"force_max,omitempty" toml:"force_max,omitempty" json:"force_max,omitempty"`
}

// Enabled reports whether the divergence has any effect.
func (d Divergence) Enabled() bool {
	return d.ForceMax || d.Bonus != 0
}

// RSIRule scores the RSI level, midline crosses and divergences.
type RSIRule struct {
	BuyTiers       Tiers      `yaml:"buy_tiers" toml:"buy_tiers" json:"buy_tiers"`
	SellTiers      Tiers      `yaml:"sell_tiers" toml:"sell_tiers" json:"sell_tiers"`
	Midline        float64    `yaml:"midline" toml:"midline" json:"midline"`
	MidCrossBonus  float64    `yaml:"mid_cross_bonus" toml:"mid_cross_bonus" json:"mid_cross_bonus"`
	BuyDivergence  Divergence `yaml:"buy_divergence" toml:"buy_divergence" json:"buy_divergence"`
	SellDivergence Divergence `yaml:"sell_divergence" toml:"sell_divergence" json:"sell_divergence"`
}

// KDRule scores the stochastic position, crosses and divergence.
type KDRule struct {
	BuyTiers         Tiers      `yaml:"buy_tiers" toml:"buy_tiers" json:"buy_tiers"`
	BuyCrossTiers    Tiers      `yaml:"buy_cross_tiers" toml:"buy_cross_tiers" json:"buy_cross_tiers"`
	SellTiers        Tiers      `yaml:"sell_tiers" toml:"sell_tiers" json:"sell_tiers"`
	SellCrossTiers   Tiers      `yaml:"sell_cross_tiers" toml:"sell_cross_tiers" json:"sell_cross_tiers"`
	BuyDivergence    Divergence `yaml:"buy_divergence" toml:"buy_divergence" json:"buy_divergence"`
	PassivationBars  int        `yaml:"passivation_bars" toml:"passivation_bars" json:"passivation_bars"`
	PassivationLevel float64    `yaml:"passivation_level" toml:"passivation_level" json:"passivation_level"`
}

// Combine modes for MACD contributions.
const (
	CombineSum = "sum"
	CombineMax = "max"
)

// MACDRule scores the MACD histogram.
type MACDRule struct {
	ContractionScore float64 `yaml:"contraction_score" toml:"contraction_score" json:"contraction_score"`
	CrossScore       float64 `yaml:"cross_score" toml:"cross_score" json:"cross_score"`
	Combine          string  `yaml:"combine" toml:"combine" json:"combine"`
	DivergenceBonus  float64 `yaml:"divergence_bonus" toml:"divergence_bonus" json:"divergence_bonus"`
}

// DMIRule scores the directional movement system.
type DMIRule struct {
	TrendScore        float64 `yaml:"trend_score" toml:"trend_score" json:"trend_score"`
	FreshCrossBonus   float64 `yaml:"fresh_cross_bonus" toml:"fresh_cross_bonus" json:"fresh_cross_bonus"`
	StrongADX         float64 `yaml:"strong_adx" toml:"strong_adx" json:"strong_adx"`
	StrongRisingBonus float64 `yaml:"strong_rising_bonus" toml:"strong_rising_bonus" json:"strong_rising_bonus"`
	WeakRisingBonus   float64 `yaml:"weak_rising_bonus" toml:"weak_rising_bonus" json:"weak_rising_bonus"`
	ExcessADX         float64 `yaml:"excess_adx" toml:"excess_adx" json:"excess_adx"`
	ExcessPenalty     float64 `yaml:"excess_penalty" toml:"excess_penalty" json:"excess_penalty"`
}

// False breakout modes for Bollinger sell scoring.
const (
	BreakoutAssign = "assign"
	BreakoutMax    = "max"
)

// BBRule scores Bollinger %B and the band events. NullPercentB substitutes
// an undefined %B.
type BBRule struct {
	BuyTiers             Tiers   `yaml:"buy_tiers" toml:"buy_tiers" json:"buy_tiers"`
	SellTiers            Tiers   `yaml:"sell_tiers" toml:"sell_tiers" json:"sell_tiers"`
	NullPercentB         float64 `yaml:"null_percent_b" toml:"null_percent_b" json:"null_percent_b"`
	MidRetestScore       float64 `yaml:"mid_retest_score" toml:"mid_retest_score" json:"mid_retest_score"`
	MidRetestDistance    float64 `yaml:"mid_retest_distance" toml:"mid_retest_distance" json:"mid_retest_distance"`
	FalseBreakoutScore   float64 `yaml:"false_breakout_score" toml:"false_breakout_score" json:"false_breakout_score"`
	FalseBreakoutMode    string  `yaml:"false_breakout_mode" toml:"false_breakout_mode" json:"false_breakout_mode"`
	ExpansionOverride    bool    `yaml:"expansion_override" toml:"expansion_override" json:"expansion_override"`
	ExpansionVolumeRatio float64 `yaml:"expansion_volume_ratio" toml:"expansion_volume_ratio" json:"expansion_volume_ratio"`
}

// DivergenceWindow is the lookback compared against the last bar: Bars bars
// ending Gap bars before it.
type DivergenceWindow struct {
	Bars int `yaml:"bars" toml:"bars" json:"bars"`
	Gap  int `yaml:"gap" toml:"gap" json:"gap"`
}

// Signals holds the classifier thresholds.
type Signals struct {
	StrongBuy  float64 `yaml:"strong_buy" toml:"strong_buy" json:"strong_buy"`
	Accumulate float64 `yaml:"accumulate" toml:"accumulate" json:"accumulate"`
	Watch      float64 `yaml:"watch" toml:"watch" json:"watch"`
	Liquidate  float64 `yaml:"liquidate" toml:"liquidate" json:"liquidate"`
	Trim       float64 `yaml:"trim" toml:"trim" json:"trim"`
}

// Weight returns the cap of an indicator, 0 when it is not scored.
func (p *Profile) Weight(indicator string) float64 {
	return p.Weights[indicator]
}

// MaxTotal is the sum of all weights.
func (p *Profile) MaxTotal() float64 {
	total := 0.0
	for _, w := range p.Weights {
		total += w
	}
	return total
}

// Clone returns a deep copy that shares no slices, maps or pointers.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Weights = maps.Clone(p.Weights)
	c.Swing.Retracements = slices.Clone(p.Swing.Retracements)
	c.Swing.Extensions = slices.Clone(p.Swing.Extensions)
	c.Fibo.BuyTiers = p.Fibo.BuyTiers.clone()
	c.Fibo.SellTiers = slices.Clone(p.Fibo.SellTiers)
	if p.Fibo.Candles != nil {
		candles := *p.Fibo.Candles
		c.Fibo.Candles = &candles
	}
	c.Slope.BuyTiers = p.Slope.BuyTiers.clone()
	c.Slope.SellTiers = p.Slope.SellTiers.clone()
	c.MA.BuyBiasTiers = p.MA.BuyBiasTiers.clone()
	c.MA.SellBiasTiers = p.MA.SellBiasTiers.clone()
	c.RSI.BuyTiers = p.RSI.BuyTiers.clone()
	c.RSI.SellTiers = p.RSI.SellTiers.clone()
	c.KD.BuyTiers = p.KD.BuyTiers.clone()
	c.KD.BuyCrossTiers = p.KD.BuyCrossTiers.clone()
	c.KD.SellTiers = p.KD.SellTiers.clone()
	c.KD.SellCrossTiers = p.KD.SellCrossTiers.clone()
	c.BB.BuyTiers = p.BB.BuyTiers.clone()
	c.BB.SellTiers = p.BB.SellTiers.clone()
	return &c
}

// Validate checks that the profile is internally consistent.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.MinBars < 2 {
		return fmt.Errorf("profile %s: min_bars must be at least 2", p.ID)
	}
	if p.MAWindow <= 0 {
		return fmt.Errorf("profile %s: ma_window must be positive", p.ID)
	}
	if p.Swing.Lookback <= 0 {
		return fmt.Errorf("profile %s: swing.lookback must be positive", p.ID)
	}
	if p.Swing.Threshold < 0 {
		return fmt.Errorf("profile %s: swing.threshold must not be negative", p.ID)
	}
	for _, r := range p.Swing.Retracements {
		if r <= 0 || r >= 1 {
			return fmt.Errorf("profile %s: retracement %.3f outside (0,1)", p.ID, r)
		}
	}
	for _, e := range p.Swing.Extensions {
		if e <= 0 {
			return fmt.Errorf("profile %s: extension %.3f must be positive", p.ID, e)
		}
	}
	if p.StopLossDepth < 0 || p.StopLossDepth >= 1 {
		return fmt.Errorf("profile %s: stop_loss_depth must be in [0,1)", p.ID)
	}

	scored := 0
	for name, w := range p.Weights {
		if !slices.Contains(model.Indicators, name) {
			return fmt.Errorf("profile %s: unknown indicator %q in weights", p.ID, name)
		}
		if w < 0 {
			return fmt.Errorf("profile %s: weight of %s must not be negative", p.ID, name)
		}
		if w > 0 {
			scored++
		}
	}
	if scored == 0 {
		return fmt.Errorf("profile %s: at least one indicator must carry weight", p.ID)
	}

	if p.Divergence.Bars <= 0 || p.Divergence.Gap < 0 {
		return fmt.Errorf("profile %s: divergence window must have bars > 0 and gap >= 0", p.ID)
	}
	if p.MinBars < p.Divergence.Bars+p.Divergence.Gap {
		return fmt.Errorf("profile %s: min_bars shorter than the divergence window", p.ID)
	}

	s := p.Signals
	if !(s.StrongBuy >= s.Accumulate && s.Accumulate >= s.Watch) {
		return fmt.Errorf("profile %s: buy thresholds must satisfy strong_buy >= accumulate >= watch", p.ID)
	}
	if s.Liquidate < s.Trim {
		return fmt.Errorf("profile %s: sell thresholds must satisfy liquidate >= trim", p.ID)
	}

	switch p.MACD.Combine {
	case CombineSum, CombineMax:
	default:
		return fmt.Errorf("profile %s: macd.combine must be %q or %q", p.ID, CombineSum, CombineMax)
	}
	switch p.BB.FalseBreakoutMode {
	case BreakoutAssign, BreakoutMax:
	default:
		return fmt.Errorf("profile %s: bb.false_breakout_mode must be %q or %q", p.ID, BreakoutAssign, BreakoutMax)
	}
	for i, t := range p.Fibo.SellTiers {
		if t.Price != "high" && t.Price != "close" {
			return fmt.Errorf("profile %s: fibo.sell_tiers[%d]: price must be high or close", p.ID, i)
		}
		if !t.Op.valid() {
			return fmt.Errorf("profile %s: fibo.sell_tiers[%d]: unknown op %q", p.ID, i, t.Op)
		}
	}

	tables := []struct {
		name  string
		tiers Tiers
	}{
		{"fibo.buy_tiers", p.Fibo.BuyTiers},
		{"slope.buy_tiers", p.Slope.BuyTiers},
		{"slope.sell_tiers", p.Slope.SellTiers},
		{"ma.buy_bias_tiers", p.MA.BuyBiasTiers},
		{"ma.sell_bias_tiers", p.MA.SellBiasTiers},
		{"rsi.buy_tiers", p.RSI.BuyTiers},
		{"rsi.sell_tiers", p.RSI.SellTiers},
		{"kd.buy_tiers", p.KD.BuyTiers},
		{"kd.buy_cross_tiers", p.KD.BuyCrossTiers},
		{"kd.sell_tiers", p.KD.SellTiers},
		{"kd.sell_cross_tiers", p.KD.SellCrossTiers},
		{"bb.buy_tiers", p.BB.BuyTiers},
		{"bb.sell_tiers", p.BB.SellTiers},
	}
	for _, tb := range tables {
		if err := tb.tiers.validate(tb.name); err != nil {
			return fmt.Errorf("profile %s: %w", p.ID, err)
		}
	}
	return nil
}
