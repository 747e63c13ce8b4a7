package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"time"

	"SwingSentinel/internal/model"
)

var (
	// ErrNoData reports a provider answer without a single usable bar.
	ErrNoData = errors.New("no data returned")
	// ErrAllProvidersFailed is joined with every provider error once all
	// retry cycles are exhausted.
	ErrAllProvidersFailed = errors.New("all providers failed")
	// ErrSuperseded is the cancellation cause of a request replaced by a newer
	// request of the same session.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns up to days daily bars of symbol; days <= 0
	// requests the full history.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	Name() string
}

// newHTTPClient builds a client with an optional proxy.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// tail orders bars oldest first and keeps the last n; n <= 0 keeps
// everything. Exports are not guaranteed to be ascending.
func tail(bars []model.Bar, n int) []model.Bar {
	byDate := func(a, b model.Bar) int { return a.Time.Compare(b.Time) }
	if !slices.IsSortedFunc(bars, byDate) {
		bars = slices.Clone(bars)
		slices.SortStableFunc(bars, byDate)
	}
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
