package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"SwingSentinel/internal/backoff"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/store"
)

// FetchObserver is notified of every provider attempt.
type FetchObserver interface {
	ObserveFetch(provider string, err error)
}

// ResilientFetcher tries an ordered provider list, cycling through it up to
// MaxRetries times with a growing pause between cycles. Successful fetches
// are written back to Store.
type ResilientFetcher struct {
	Providers     []Fetcher
	Store         store.Store
	Observer      FetchObserver
	MaxRetries    int
	ProviderPause time.Duration
	RetryStep     time.Duration
}

// NewResilientFetcher uses 3 cycles, a 500ms pause between providers and a
// 1s step between cycles.
func NewResilientFetcher(providers []Fetcher, s store.Store) *ResilientFetcher {
	if s == nil {
		s = store.NewNoopStore()
	}
	return &ResilientFetcher{
		Providers:     providers,
		Store:         s,
		MaxRetries:    3,
		ProviderPause: 500 * time.Millisecond,
		RetryStep:     time.Second,
	}
}

func (f *ResilientFetcher) Name() string { return "resilient" }

func (f *ResilientFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	if len(f.Providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrAllProvidersFailed)
	}
	retries := max(f.MaxRetries, 1)

	var errs []error
	for attempt := 1; attempt <= retries; attempt++ {
		for i, p := range f.Providers {
			if i > 0 {
				if err := backoff.Sleep(ctx, f.ProviderPause); err != nil {
					return nil, err
				}
			}
			bars, err := p.FetchDailyBars(ctx, symbol, days)
			if err == nil && len(bars) == 0 {
				err = ErrNoData
			}
			if f.Observer != nil {
				f.Observer.ObserveFetch(p.Name(), err)
			}
			if err == nil {
				f.writeBack(ctx, p, symbol, bars)
				return bars, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Printf("[WARN] fetch %s via %s failed (attempt %d/%d): %v", symbol, p.Name(), attempt, retries, err)
			errs = append(errs, fmt.Errorf("%s attempt %d: %w", p.Name(), attempt, err))
		}
		if attempt < retries {
			if err := backoff.Sleep(ctx, backoff.Linear(f.RetryStep, attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
}

func (f *ResilientFetcher) writeBack(ctx context.Context, p Fetcher, symbol string, bars []model.Bar) {
	if f.Store == nil {
		return
	}
	if _, cached := p.(*CacheFetcher); cached {
		return
	}
	if err := f.Store.SaveBars(ctx, symbol, bars); err != nil {
		log.Printf("[WARN] cache %s bars: %v", symbol, err)
	}
}
