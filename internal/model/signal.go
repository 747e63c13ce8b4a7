package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInsufficientData reports that too few bars were supplied for scoring.
var ErrInsufficientData = errors.New("insufficient data")

// Indicator names used as score keys and profile weight keys.
const (
	IndicatorFibo  = "fibo"
	IndicatorSlope = "slope"
	IndicatorMA    = "ma"
	IndicatorRSI   = "rsi"
	IndicatorKD    = "kd"
	IndicatorBB    = "bb"
	IndicatorMACD  = "macd"
	IndicatorDMI   = "dmi"
)

// Indicators lists every scorable indicator in report order.
var Indicators = []string{
	IndicatorFibo, IndicatorSlope, IndicatorMA, IndicatorRSI,
	IndicatorKD, IndicatorBB, IndicatorMACD, IndicatorDMI,
}

// BuySignal is the categorical label of the buy side.
type BuySignal string

const (
	BuyStrong       BuySignal = "strong buy"
	BuyAccumulate   BuySignal = "accumulate"
	BuyWatch        BuySignal = "neutral watch"
	BuyStandAside   BuySignal = "stand aside"
	BuyCounterTrend BuySignal = "counter-trend — halt buying"
)

// SellSignal is the categorical label of the sell side.
type SellSignal string

const (
	SellLiquidate SellSignal = "liquidate"
	SellTrim      SellSignal = "trim"
	SellHold      SellSignal = "hold"
	SellStopLoss  SellSignal = "breached — forced stop-loss"
)

// AnalysisStatus tells whether scoring ran.
type AnalysisStatus string

const (
	StatusOK               AnalysisStatus = "ok"
	StatusInsufficientData AnalysisStatus = "insufficient_data"
)

// Side identifies the buy or sell half of a sub-score.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// SwingReference is the high/low pair used for Fibonacci levels.
type SwingReference struct {
	HighPrice float64            `json:"high_price"`
	HighIndex int                `json:"high_index"`
	LowPrice  float64            `json:"low_price"`
	LowIndex  int                `json:"low_index"`
	Range     float64            `json:"range"`
	Ratio     float64            `json:"ratio"`
	Valid     bool               `json:"valid"`
	Extended  bool               `json:"extended"`
	Levels    map[string]float64 `json:"levels"`
}

// RetracementKey is the Levels key of a retracement ratio, e.g. "0.618".
func RetracementKey(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}

// ExtensionKey is the Levels key of an extension ratio, e.g. "1.272".
func ExtensionKey(ratio float64) string {
	return strconv.FormatFloat(1+ratio, 'f', -1, 64)
}

// ScorePart is one rule contribution inside a sub-score.
type ScorePart struct {
	Side   Side    `json:"side"`
	Rule   string  `json:"rule"`
	Points float64 `json:"points"`
}

// SubScore is the bounded buy/sell contribution of one indicator.
type SubScore struct {
	Indicator string      `json:"indicator"`
	Buy       float64     `json:"buy"`
	Sell      float64     `json:"sell"`
	Max       float64     `json:"max"`
	Parts     []ScorePart `json:"parts,omitempty"`
}

// Diagnostics carries the intermediate values the labels depend on.
type Diagnostics struct {
	Close           float64 `json:"close"`
	MABias          float64 `json:"ma_bias"`
	MASlope         float64 `json:"ma_slope"`
	MABroken        bool    `json:"ma_broken"`
	SlopePercentile float64 `json:"slope_percentile"`
	Passivation     bool    `json:"passivation"`
	StopLossLevel   float64 `json:"stop_loss_level,omitempty"`
}

// AnalysisResult is the full output of one scoring run.
type AnalysisResult struct {
	Symbol      string              `json:"symbol,omitempty"`
	ProfileID   string              `json:"profile"`
	Status      AnalysisStatus      `json:"status"`
	Reason      string              `json:"reason,omitempty"`
	BarCount    int                 `json:"bar_count"`
	MinBars     int                 `json:"min_bars"`
	Frames      []IndicatorFrame    `json:"frames,omitempty"`
	Swing       *SwingReference     `json:"swing,omitempty"`
	Scores      map[string]SubScore `json:"scores,omitempty"`
	BuyTotal    int                 `json:"buy_total"`
	SellTotal   int                 `json:"sell_total"`
	BuySignal   BuySignal           `json:"buy_signal,omitempty"`
	SellSignal  SellSignal          `json:"sell_signal,omitempty"`
	Diagnostics *Diagnostics        `json:"diagnostics,omitempty"`
}

// Err returns ErrInsufficientData, wrapped with the reason, when scoring
// did not run.
func (r *AnalysisResult) Err() error {
	if r == nil || r.Status != StatusInsufficientData {
		return nil
	}
	if r.Reason == "" {
		return ErrInsufficientData
	}
	return fmt.Errorf("%w: %s", ErrInsufficientData, r.Reason)
}

// Last returns the most recent frame, or false when no frames were built.
func (r *AnalysisResult) Last() (IndicatorFrame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return IndicatorFrame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}
