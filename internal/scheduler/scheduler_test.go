package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/service"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingSender) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

// flakyFetcher fails one symbol and mocks the rest.
type flakyFetcher struct {
	collector.MockFetcher
	fail string
}

func (f *flakyFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	if symbol == f.fail {
		return nil, errors.New("provider down")
	}
	return f.MockFetcher.FetchDailyBars(ctx, symbol, days)
}

func newTestScheduler(f collector.Fetcher, watchlist []string) (*Scheduler, *recordingSender) {
	an := service.NewAnalyzer(collector.NewCollector(f, 0), profile.NewRegistry(), nil)
	sender := &recordingSender{}
	return NewScheduler(context.Background(), an, sender, watchlist), sender
}

func TestRunNow_IndependentSymbols(t *testing.T) {
	s, _ := newTestScheduler(&flakyFetcher{MockFetcher: collector.MockFetcher{Price: 200}, fail: "2330"}, []string{"6669", "2330", "3231"})

	results, err := s.RunNow(context.Background())
	if err == nil || !strings.Contains(err.Error(), "2330") {
		t.Errorf("err = %v, want the failing symbol", err)
	}
	if len(results) != 3 || results[1] != nil {
		t.Fatalf("results = %v", results)
	}
	if results[0].Symbol != "6669" || results[0].ProfileID != profile.LongSwingID {
		t.Errorf("6669 = %s/%s", results[0].Symbol, results[0].ProfileID)
	}
	if results[2].Symbol != "3231" || results[2].ProfileID != profile.ShortSwingID {
		t.Errorf("3231 = %s/%s", results[2].Symbol, results[2].ProfileID)
	}
	if _, at, ok := s.Latest(" 6669"); !ok || time.Since(at) > time.Minute {
		t.Errorf("latest result not remembered: %v %v", at, ok)
	}
	if _, _, ok := s.Latest("2330"); ok {
		t.Error("failed symbol should have no result")
	}
}

func TestDailyTask_SendsReports(t *testing.T) {
	s, sender := newTestScheduler(&collector.MockFetcher{Price: 50}, []string{"6669", "3231"})
	s.dailyTask()
	if len(sender.texts) != 2 {
		t.Fatalf("sent %d reports, want 2", len(sender.texts))
	}
	joined := strings.Join(sender.texts, "\n")
	if !strings.Contains(joined, "<b>6669</b>") || !strings.Contains(joined, "<b>3231</b>") {
		t.Errorf("reports = %s", joined)
	}
}

func TestRegister_RejectsBadCron(t *testing.T) {
	s, _ := newTestScheduler(&collector.MockFetcher{}, nil)
	if err := s.Register("0 0 14 * * 1-5"); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}
	if err := s.Register("whenever"); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(&collector.MockFetcher{Price: 80}, []string{"6669", "3231"})

	tests := []struct {
		command string
		want    string
	}{
		{"/analyze 3231", "short-swing"},
		{"/analyze 3231 long-swing", "long-swing"},
		{"/analyze 3231 nope", "unknown profile"},
		{"/analyze", "Usage"},
		{"/profiles", "long-swing</b> (default)"},
		{"/watchlist", "6669, 3231"},
		{"hello", "Commands"},
		{"", "Commands"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(tt.command); !strings.Contains(got, tt.want) {
			t.Errorf("HandleCommand(%q) = %q, want it to contain %q", tt.command, got, tt.want)
		}
	}
}
