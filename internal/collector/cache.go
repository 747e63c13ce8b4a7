package collector

import (
	"context"
	"fmt"
	"strings"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/store"
)

// CacheFetcher serves bars previously written to the store. It is the
// offline fallback at the end of the provider list.
type CacheFetcher struct {
	Store store.Store
}

func NewCacheFetcher(s store.Store) *CacheFetcher { return &CacheFetcher{Store: s} }

func (f *CacheFetcher) Name() string { return "cache" }

func (f *CacheFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	bars, err := f.Store.LoadBars(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("cache %s: %w", symbol, ErrNoData)
	}
	return tail(bars, days), nil
}
