package collector

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"SwingSentinel/internal/model"
)

var nan = math.NaN()

// MockFetcher returns controllable fixed data for development and testing.
// Without Bars it generates a deterministic random walk seeded by the
// symbol.
type MockFetcher struct {
	Price float64
	Bars  []model.Bar
	Err   error
	Calls int

	mu sync.Mutex
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return tail(m.Bars, days), nil
	}
	if days <= 0 {
		days = 250
	}
	return GenerateBars(symbol, m.Price, days), nil
}

// GenerateBars builds count daily bars ending yesterday. The same symbol and
// base price always yield the same series.
func GenerateBars(symbol string, basePrice float64, count int) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	h := fnv.New64a()
	h.Write([]byte(symbol))
	r := rand.New(rand.NewSource(int64(h.Sum64())))

	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.Bar, count)
	p := basePrice
	for i := 0; i < count; i++ {
		open := p
		p = math.Max(basePrice*0.1, p*(1+(r.Float64()-0.49)*0.04))
		bars[i] = model.Bar{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   open,
			High:   math.Max(open, p) * (1 + r.Float64()*0.01),
			Low:    math.Min(open, p) * (1 - r.Float64()*0.01),
			Close:  p,
			Volume: float64(500000 + r.Intn(1000000)),
		}
	}
	return bars
}
