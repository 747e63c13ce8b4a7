package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"SwingSentinel/internal/api"
	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/config"
	"SwingSentinel/internal/metrics"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/notifier"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/scheduler"
	"SwingSentinel/internal/service"
	"SwingSentinel/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	barsFile := flag.String("bars", "", "score a local .csv, .json or .parquet bar file and exit")
	symbol := flag.String("symbol", "", "fetch and score one symbol and exit")
	profileID := flag.String("profile", "", "profile id (default: the symbol's assignment)")
	asJSON := flag.Bool("json", false, "print the full result as JSON instead of a table")
	export := flag.String("export", "", "with -symbol, also save the fetched bars to a .csv, .json or .parquet file")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("[WARN] load .env: %v", err)
	}
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	reg, err := loadProfiles(cfg)
	if err != nil {
		log.Fatalf("[FATAL] load profiles: %v", err)
	}

	if *barsFile != "" {
		if err := runOffline(reg, *barsFile, *profileID, *asJSON); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		return
	}

	st := openStore(cfg)
	defer st.Close()

	m := metrics.NewMetrics(nil)
	an := service.NewAnalyzer(newCollector(cfg, st, m), reg, m)

	if *symbol != "" {
		res, err := analyzeSymbol(context.Background(), an, *symbol, *profileID, *export)
		if err != nil {
			log.Fatalf("[FATAL] analyze %s: %v", *symbol, err)
		}
		if err := printResult(res, *asJSON); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		return
	}

	runDaemon(cfg, an, st, m)
}

func loadProfiles(cfg *config.Config) (*profile.Registry, error) {
	reg := profile.NewRegistry()
	if path := cfg.Profiles.File; path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := reg.LoadFile(path); err != nil {
				return nil, err
			}
			log.Printf("[INFO] profiles loaded from %s", path)
		} else {
			log.Printf("[WARN] profiles file %s not found, using built-in profiles", path)
		}
	}
	if cfg.Profiles.Default != "" {
		if err := reg.SetDefault(cfg.Profiles.Default); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func openStore(cfg *config.Config) store.Store {
	if cfg.Database.SQLitePath == "" {
		return store.NewNoopStore()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Printf("[WARN] create database dir: %v", err)
	}
	s, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
		return store.NewNoopStore()
	}
	return s
}

// newCollector chains local files, the REST source, the Yahoo gateways and
// finally the bar cache.
func newCollector(cfg *config.Config, st store.Store, m *metrics.Metrics) *collector.Collector {
	var providers []collector.Fetcher
	if cfg.DataSource.DataDir != "" {
		providers = append(providers, collector.NewFileFetcher(cfg.DataSource.DataDir))
	}
	if cfg.DataSource.BaseURL != "" {
		providers = append(providers, collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.Fetch.Timeout))
	}
	providers = append(providers, collector.NewYahooFetchers(cfg.DataSource.YahooGateways, cfg.Proxy, cfg.Fetch.Timeout)...)
	providers = append(providers, collector.NewCacheFetcher(st))

	rf := collector.NewResilientFetcher(providers, st)
	rf.Observer = m
	rf.MaxRetries = cfg.Fetch.MaxRetries
	rf.ProviderPause = cfg.Fetch.ProviderPause
	rf.RetryStep = cfg.Fetch.RetryStep

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	log.Printf("[INFO] data providers: %v", names)
	return collector.NewCollector(rf, cfg.DataSource.Days)
}

func runOffline(reg *profile.Registry, path, profileID string, asJSON bool) error {
	bars, err := collector.ReadBarsFile(path)
	if err != nil {
		return err
	}
	sym := profile.NormalizeInstrument(filepath.Base(path))
	res, err := service.NewAnalyzer(nil, reg, nil).AnalyzeBars(sym, profileID, bars)
	if err != nil {
		return err
	}
	return printResult(res, asJSON)
}

// analyzeSymbol fetches and scores one symbol. With export set the fetched
// bars are saved first, so the run can be replayed with -bars.
func analyzeSymbol(ctx context.Context, an *service.Analyzer, symbol, profileID, export string) (*model.AnalysisResult, error) {
	if export == "" {
		return an.Analyze(ctx, "cli", symbol, profileID)
	}
	if _, err := an.Profiles.Resolve(profileID, symbol); err != nil {
		return nil, err
	}
	series, err := an.Collector.CollectSession(ctx, "cli", symbol)
	if err != nil {
		return nil, err
	}
	if err := collector.WriteBarsFile(export, series.Bars); err != nil {
		return nil, err
	}
	log.Printf("[INFO] %d bars of %s saved to %s", len(series.Bars), series.Symbol, export)
	return an.AnalyzeBars(series.Symbol, profileID, series.Bars)
}

func printResult(res *model.AnalysisResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Println(notifier.RenderTable(res))
	return nil
}

func runDaemon(cfg *config.Config, an *service.Analyzer, st store.Store, m *metrics.Metrics) {
	log.Println("[INFO] SwingSentinel starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sender notifier.Sender = notifier.LogSender{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] telegram not configured, reports go to the log")
	}

	sched := scheduler.NewScheduler(ctx, an, sender, cfg.Watchlist)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Addr == "" {
		metricsHandler = m.Handler()
	} else {
		go serveMetrics(ctx, cfg.Metrics.Addr, m.Handler())
	}
	srv := api.NewServer(an, metricsHandler)
	srv.UseCache(sched, cfg.HTTP.CacheTTL)
	srv.UseStore(st)
	apiDone := make(chan struct{})
	go func() {
		defer close(apiDone)
		if err := srv.Run(ctx, cfg.HTTP.Addr); err != nil {
			log.Printf("[ERROR] %v", err)
			cancel()
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scanning watchlist now")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Printf("[ERROR] initial scan: %v", err)
			}
		}()
	}

	log.Println("[INFO] SwingSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case <-ctx.Done():
	}
	cancel()
	<-apiDone
	log.Println("[INFO] SwingSentinel stopped")
}

func serveMetrics(ctx context.Context, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[ERROR] metrics server: %v", err)
	}
}
