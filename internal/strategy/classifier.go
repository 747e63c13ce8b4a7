package strategy

import (
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/swing"
)

// Classify maps the totals to signal labels using the profile thresholds,
// then applies the overrides: a falling trend average vetoes any buy label
// from Watch upwards, and a close below the stop-loss retracement forces the
// stop-loss sell label whatever the sell total.
func Classify(p *profile.Profile, buyTotal, sellTotal int, diag model.Diagnostics, ref model.SwingReference) (model.BuySignal, model.SellSignal) {
	th := p.Signals
	b, s := float64(buyTotal), float64(sellTotal)

	var buySignal model.BuySignal
	switch {
	case b > th.StrongBuy:
		buySignal = model.BuyStrong
	case b > th.Accumulate:
		buySignal = model.BuyAccumulate
	case b >= th.Watch:
		buySignal = model.BuyWatch
	default:
		buySignal = model.BuyStandAside
	}

	var sellSignal model.SellSignal
	switch {
	case s > th.Liquidate:
		sellSignal = model.SellLiquidate
	case s > th.Trim:
		sellSignal = model.SellTrim
	default:
		sellSignal = model.SellHold
	}

	if diag.MASlope < 0 && b >= th.Watch {
		buySignal = model.BuyCounterTrend
	}
	if stopLossBreached(p, diag.Close, ref) {
		sellSignal = model.SellStopLoss
	}
	return buySignal, sellSignal
}

func stopLossBreached(p *profile.Profile, price float64, ref model.SwingReference) bool {
	return p.StopLossDepth > 0 && swing.Breached(ref, p.StopLossDepth, price)
}
