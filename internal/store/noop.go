package store

import (
	"context"

	"SwingSentinel/internal/model"
)

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveBars(_ context.Context, _ string, _ []model.Bar) error { return nil }
func (n *NoopStore) LoadBars(_ context.Context, _ string) ([]model.Bar, error) { return nil, nil }
func (n *NoopStore) Symbols(_ context.Context) ([]string, error)               { return nil, nil }
func (n *NoopStore) Close() error                                              { return nil }
