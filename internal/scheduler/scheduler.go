package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/service"
)

// Scheduler manages the daily watchlist scan and Telegram commands.
type Scheduler struct {
	Cron        *cron.Cron
	Analyzer    *service.Analyzer
	Notifier    notifier.Sender
	Watchlist   []string
	Concurrency int
	Ctx         context.Context

	mu      sync.RWMutex
	latest  map[string]scanned
	running sync.Mutex
}

type scanned struct {
	res *model.AnalysisResult
	at  time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an *service.Analyzer, sender notifier.Sender, watchlist []string) *Scheduler {
	if sender == nil {
		sender = notifier.LogSender{}
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Analyzer:    an,
		Notifier:    sender,
		Watchlist:   watchlist,
		Concurrency: 4,
		Ctx:         ctx,
		latest:      make(map[string]scanned),
	}
}

// Register schedules the daily scan.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) dailyTask() {
	if !s.running.TryLock() {
		log.Println("[WARN] daily scan still running, skipping")
		return
	}
	defer s.running.Unlock()

	log.Println("[INFO] running daily scan")
	results, err := s.RunNow(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] daily scan: %v", err)
	}
	for _, res := range results {
		if res != nil {
			s.trySend(notifier.FormatAnalysisReport(res))
		}
	}
}

// RunNow analyzes every watchlist symbol concurrently. Each symbol runs in
// its own session, so one slow or failing symbol never cancels another.
// Results keep watchlist order; failed symbols leave a nil entry and
// contribute to the joined error.
func (s *Scheduler) RunNow(ctx context.Context) ([]*model.AnalysisResult, error) {
	results := make([]*model.AnalysisResult, len(s.Watchlist))
	errs := make([]error, len(s.Watchlist))

	var g errgroup.Group
	g.SetLimit(max(s.Concurrency, 1))
	for i, symbol := range s.Watchlist {
		g.Go(func() error {
			res, err := s.Analyzer.Analyze(ctx, "scheduler:"+symbol, symbol, "")
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", symbol, err)
				return nil
			}
			results[i] = res
			s.remember(res)
			if res.Status != model.StatusOK {
				log.Printf("[WARN] %s: %s", symbol, res.Reason)
				return nil
			}
			log.Printf("[INFO] %s [%s] buy %d (%s) sell %d (%s)", symbol, res.ProfileID, res.BuyTotal, res.BuySignal, res.SellTotal, res.SellSignal)
			return nil
		})
	}
	g.Wait()
	return results, errors.Join(errs...)
}

func (s *Scheduler) remember(res *model.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[res.Symbol] = scanned{res: res, at: time.Now()}
}

// Latest returns the most recent result of symbol from a scan or a chat
// command, with the time it was produced.
func (s *Scheduler) Latest(symbol string) (*model.AnalysisResult, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.latest[strings.ToUpper(strings.TrimSpace(symbol))]
	return e.res, e.at, ok
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	switch fields[0] {
	case "/analyze":
		if len(fields) < 2 {
			return "Usage: /analyze SYMBOL [PROFILE]"
		}
		profileID := ""
		if len(fields) > 2 {
			profileID = fields[2]
		}
		res, err := s.Analyzer.Analyze(s.Ctx, "telegram:"+strings.ToUpper(fields[1]), fields[1], profileID)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", fields[1], err)
		}
		s.remember(res)
		return notifier.FormatAnalysisReport(res)
	case "/profiles":
		reg := s.Analyzer.Profiles
		return notifier.FormatProfiles(reg.List(), reg.Default().ID)
	case "/watchlist":
		return "Watchlist: " + strings.Join(s.Watchlist, ", ")
	case "/scan":
		go s.dailyTask()
		return "Scan started"
	default:
		return help()
	}
}

func help() string {
	return "Commands:\n• /analyze SYMBOL [PROFILE]\n• /profiles\n• /watchlist\n• /scan"
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
