// Package service wires collection, profile resolution and scoring into the
// single analysis operation shared by the scheduler, the API and the CLI.
package service

import (
	"context"
	"fmt"
	"time"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/metrics"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/strategy"
)

// Analyzer collects a symbol and scores it under its profile.
type Analyzer struct {
	Collector *collector.Collector
	Profiles  *profile.Registry
	Metrics   *metrics.Metrics
}

// NewAnalyzer creates an Analyzer. m may be nil.
func NewAnalyzer(c *collector.Collector, reg *profile.Registry, m *metrics.Metrics) *Analyzer {
	return &Analyzer{Collector: c, Profiles: reg, Metrics: m}
}

// Analyze fetches symbol within session and scores it. profileID selects a
// profile explicitly; empty uses the symbol's assignment or the default.
// An unknown profile is rejected before any fetch.
func (a *Analyzer) Analyze(ctx context.Context, session, symbol, profileID string) (*model.AnalysisResult, error) {
	p, err := a.Profiles.Resolve(profileID, symbol)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	series, err := a.Collector.CollectSession(ctx, session, symbol)
	if err != nil {
		return nil, err
	}
	res := strategy.AnalyzeSeries(series, p)
	a.observe(res, time.Since(start))
	return res, nil
}

// AnalyzeBars scores caller-supplied bars without fetching.
func (a *Analyzer) AnalyzeBars(symbol, profileID string, bars []model.Bar) (*model.AnalysisResult, error) {
	p, err := a.Profiles.Resolve(profileID, symbol)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no profile for %q", symbol)
	}
	start := time.Now()
	res := strategy.AnalyzeSeries(model.PriceSeries{Symbol: symbol, Bars: bars}, p)
	a.observe(res, time.Since(start))
	return res, nil
}

func (a *Analyzer) observe(res *model.AnalysisResult, elapsed time.Duration) {
	if a.Metrics != nil {
		a.Metrics.ObserveAnalysis(res, elapsed)
	}
}
