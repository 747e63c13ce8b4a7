// Package collector delivers raw daily bars from remote and local providers.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"SwingSentinel/internal/calculator"
	"SwingSentinel/internal/model"
)

// Collector fetches and normalizes the bar series of one symbol.
type Collector struct {
	Fetcher  Fetcher
	Sessions *Sessions
	Days     int // history cap, 0 keeps everything
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, days int) *Collector {
	return &Collector{Fetcher: fetcher, Sessions: NewSessions(), Days: days}
}

// Collect fetches symbol and returns its normalized series.
func (c *Collector) Collect(ctx context.Context, symbol string) (model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.PriceSeries{}, errors.New("collect: empty symbol")
	}
	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Days)
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrSuperseded) {
			return model.PriceSeries{}, fmt.Errorf("collect %s: %w", symbol, ErrSuperseded)
		}
		return model.PriceSeries{}, fmt.Errorf("collect %s: %w", symbol, err)
	}
	clean := calculator.Normalize(bars)
	if len(clean) == 0 {
		return model.PriceSeries{}, fmt.Errorf("collect %s: %w", symbol, ErrNoData)
	}
	log.Printf("[INFO] collected %s: %d bars via %s in %s", symbol, len(clean), c.Fetcher.Name(), time.Since(start).Round(time.Millisecond))
	return model.PriceSeries{
		Symbol:    symbol,
		Bars:      clean,
		Source:    c.Fetcher.Name(),
		FetchedAt: time.Now(),
	}, nil
}

// CollectSession is Collect scoped to session: it supersedes the session's
// in-flight request and fails with ErrSuperseded when a newer request
// replaced this one before it finished.
func (c *Collector) CollectSession(ctx context.Context, session, symbol string) (model.PriceSeries, error) {
	if session == "" {
		return c.Collect(ctx, symbol)
	}
	ctx, token := c.Sessions.Begin(ctx, session)
	defer c.Sessions.Done(session, token)

	series, err := c.Collect(ctx, symbol)
	if !c.Sessions.Current(session, token) {
		return model.PriceSeries{}, fmt.Errorf("collect %s: %w", symbol, ErrSuperseded)
	}
	return series, err
}
