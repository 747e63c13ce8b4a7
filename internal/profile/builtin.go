package profile

import "SwingSentinel/internal/model"

// Built-in profile identifiers.
const (
	LongSwingID  = "long-swing"
	ShortSwingID = "short-swing"
)

const (
	defaultMinBars = 120
)

var defaultSignals = Signals{StrongBuy: 50, Accumulate: 40, Watch: 20, Liquidate: 55, Trim: 40}

// LongSwing scores an instrument along its impulse leg: Fibonacci
// retracements of the 120-day leg dominate, supported by trend and
// momentum indicators on the 60-day average.
func LongSwing() *Profile {
	return &Profile{
		ID:          LongSwingID,
		Name:        "Long swing",
		Description: "Impulse-leg retracement strategy on the quarterly average",
		MinBars:     defaultMinBars,
		MAWindow:    60,
		Swing: SwingRule{
			Lookback:         120,
			ExtendedLookback: 200,
			PrecedenceMargin: 5,
			LowBeforeHigh:    true,
			Threshold:        0.10,
			Retracements:     []float64{0.236, 0.382, 0.5, 0.618, 0.786},
			Extensions:       []float64{0.272, 0.618},
		},
		Weights: map[string]float64{
			model.IndicatorFibo:  35,
			model.IndicatorSlope: 20,
			model.IndicatorMA:    7,
			model.IndicatorRSI:   10,
			model.IndicatorKD:    10,
			model.IndicatorBB:    5,
			model.IndicatorMACD:  7,
			model.IndicatorDMI:   6,
		},
		Fibo: FiboRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 0.236, Lerp: lerp(0.236, 0, 5, 10)},
				{Op: OpLT, Bound: 0.382, Lerp: lerp(0.382, 0.236, 20, 25)},
				{Op: OpLT, Bound: 0.5, Lerp: lerp(0.5, 0.382, 15, 20)},
				{Op: OpLE, Bound: 0.618, Lerp: lerp(0.618, 0.5, 10, 15)},
			},
			Candles: &CandleRule{
				ReversalBonus:  10,
				ShadowBonus:    8,
				ShadowLevel:    0.382,
				DryVolumeRatio: 0.7,
				DryVolumeBonus: 5,
				BearishATRMult: 1.5,
				BearishPenalty: 10,
			},
			SellTiers: []PriceTier{
				{Price: "high", Op: OpGE, Bound: 0.618, Score: 35},
				{Price: "high", Op: OpGE, Bound: 0.272, Score: 28},
				{Price: "close", Op: OpGT, Bound: 0, Score: 15},
			},
		},
		Slope: SlopeRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 10, Lerp: lerp(0, 10, 15, 10)},
				{Op: OpLT, Bound: 25, Lerp: lerp(10, 25, 10, 5)},
				{Op: OpLT, Bound: 40, Lerp: lerp(25, 40, 5, 0)},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 90, Lerp: lerp(90, 100, 10, 15)},
				{Op: OpGT, Bound: 75, Lerp: lerp(75, 90, 5, 10)},
				{Op: OpGT, Bound: 60, Lerp: lerp(60, 75, 0, 5)},
			},
			MomentumBonus: 5,
		},
		MA: MARule{
			BuySlopeBonus: 3,
			BuyBiasTiers: Tiers{
				{Op: OpLE, Bound: 0, Score: 0},
				{Op: OpLE, Bound: 5, Score: 4},
				{Op: OpLE, Bound: 10, Score: 2},
			},
			PullbackBonus:  1,
			BreakBars:      3,
			BreakZeroesBuy: true,
			SellSlopeBonus: 3,
			SellBiasTiers: Tiers{
				{Op: OpGT, Bound: 25, Score: 4},
				{Op: OpGT, Bound: 15, Score: 2},
			},
			BreakFloor: 3,
		},
		RSI: RSIRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 30, Score: 7},
				{Op: OpLT, Bound: 50, Score: 5},
				{Op: OpLT, Bound: 60, Score: 2},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 80, Score: 7},
				{Op: OpGT, Bound: 70, Score: 5},
				{Op: OpGT, Bound: 60, Score: 2},
			},
			Midline:       50,
			MidCrossBonus: 2,
			BuyDivergence: Divergence{Bonus: 3},
		},
		KD: KDRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 20, Score: 4},
				{Op: OpLT, Bound: 40, Score: 2},
			},
			BuyCrossTiers: Tiers{
				{Op: OpLT, Bound: 20, Score: 6},
				{Op: OpLT, Bound: 50, Score: 3},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 80, Score: 3},
				{Op: OpGT, Bound: 70, Score: 1},
			},
			SellCrossTiers: Tiers{
				{Op: OpGT, Bound: 80, Score: 7},
				{Op: OpGT, Bound: 50, Score: 4},
			},
			BuyDivergence:    Divergence{ForceMax: true},
			PassivationBars:  3,
			PassivationLevel: 80,
		},
		MACD: MACDRule{
			ContractionScore: 3,
			CrossScore:       2,
			Combine:          CombineSum,
			DivergenceBonus:  2,
		},
		DMI: DMIRule{
			TrendScore:        2,
			FreshCrossBonus:   1,
			StrongADX:         25,
			StrongRisingBonus: 3,
			WeakRisingBonus:   1,
			ExcessADX:         50,
			ExcessPenalty:     1,
		},
		BB: BBRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 0, Score: 3},
				{Op: OpLT, Bound: 0.1, Score: 2},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 1.1, Score: 3},
				{Op: OpGT, Bound: 1.0, Score: 1},
			},
			NullPercentB:         0.5,
			MidRetestScore:       2,
			MidRetestDistance:    0.01,
			FalseBreakoutScore:   2,
			FalseBreakoutMode:    BreakoutAssign,
			ExpansionOverride:    true,
			ExpansionVolumeRatio: 1.5,
		},
		Divergence:    DivergenceWindow{Bars: 20, Gap: 2},
		Signals:       defaultSignals,
		StopLossDepth: 0.618,
	}
}

// ShortSwing scores an instrument inside its 20-day box: oscillators and
// Bollinger position dominate, Fibonacci and the monthly average only
// confirm.
func ShortSwing() *Profile {
	return &Profile{
		ID:          ShortSwingID,
		Name:        "Short swing",
		Description: "Box-range oscillator strategy on the monthly average",
		MinBars:     defaultMinBars,
		MAWindow:    20,
		Swing: SwingRule{
			Lookback:     20,
			Threshold:    0.05,
			Retracements: []float64{0.5, 0.786},
			Extensions:   []float64{0.272},
		},
		Weights: map[string]float64{
			model.IndicatorFibo: 5,
			model.IndicatorMA:   10,
			model.IndicatorRSI:  25,
			model.IndicatorKD:   25,
			model.IndicatorBB:   30,
			model.IndicatorMACD: 5,
		},
		Fibo: FiboRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 0.5, Score: 0},
				{Op: OpLT, Bound: 0.786, Score: 3},
				{Op: OpAny, Score: 5},
			},
			SellTiers: []PriceTier{
				{Price: "high", Op: OpGE, Bound: 0.272, Score: 5},
				{Price: "high", Op: OpGE, Bound: 0, Score: 3},
			},
		},
		MA: MARule{
			BuyBiasTiers: Tiers{
				{Op: OpLT, Bound: -6, Score: 10},
				{Op: OpLT, Bound: -3, Score: 6},
				{Op: OpLE, Bound: 0, Score: 3},
			},
			BreakBars: 1,
			SellBiasTiers: Tiers{
				{Op: OpGT, Bound: 8, Score: 10},
				{Op: OpGT, Bound: 4, Score: 6},
			},
			BreakFloor: 3,
		},
		RSI: RSIRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 30, Score: 15},
				{Op: OpLT, Bound: 45, Score: 5},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 75, Score: 25},
				{Op: OpGT, Bound: 60, Score: 10},
			},
			Midline:        50,
			BuyDivergence:  Divergence{ForceMax: true},
			SellDivergence: Divergence{ForceMax: true},
		},
		KD: KDRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 20, Score: 15},
				{Op: OpLT, Bound: 30, Score: 5},
			},
			BuyCrossTiers: Tiers{
				{Op: OpLT, Bound: 50, Score: 10},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 80, Score: 25},
				{Op: OpGT, Bound: 70, Score: 15},
			},
			BuyDivergence: Divergence{ForceMax: true},
		},
		MACD: MACDRule{
			ContractionScore: 3,
			CrossScore:       5,
			Combine:          CombineMax,
		},
		BB: BBRule{
			BuyTiers: Tiers{
				{Op: OpLT, Bound: 0, Score: 30},
				{Op: OpLT, Bound: 0.1, Lerp: lerp(0, 0.1, 30, 25)},
				{Op: OpLT, Bound: 0.3, Lerp: lerp(0.1, 0.3, 25, 10)},
			},
			SellTiers: Tiers{
				{Op: OpGT, Bound: 1.0, Score: 30},
				{Op: OpGT, Bound: 0.9, Lerp: lerp(0.9, 1.0, 25, 30)},
			},
			NullPercentB:       0.5,
			FalseBreakoutScore: 20,
			FalseBreakoutMode:  BreakoutMax,
		},
		Divergence: DivergenceWindow{Bars: 20, Gap: 2},
		Signals:    defaultSignals,
	}
}
