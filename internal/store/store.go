// Package store caches raw daily bars so analysis can run offline.
// Analysis results are never persisted.
package store

import (
	"context"

	"SwingSentinel/internal/model"
)

// Store persists raw bars per symbol.
type Store interface {
	// SaveBars upserts bars keyed by (symbol, trading day).
	SaveBars(ctx context.Context, symbol string, bars []model.Bar) error
	// LoadBars returns every cached bar of symbol in ascending time order.
	LoadBars(ctx context.Context, symbol string) ([]model.Bar, error)
	// Symbols lists the cached symbols alphabetically.
	Symbols(ctx context.Context) ([]string, error)
	Close() error
}
