package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"SwingSentinel/internal/collector"
	"SwingSentinel/internal/model"
	"SwingSentinel/internal/profile"
	"SwingSentinel/internal/service"
)

func TestAnalyzeSymbol_Export(t *testing.T) {
	an := service.NewAnalyzer(collector.NewCollector(&collector.MockFetcher{Price: 150}, 0), profile.NewRegistry(), nil)
	dir := t.TempDir()

	for _, name := range []string{"6669.csv", "6669.json", "6669.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			res, err := analyzeSymbol(context.Background(), an, "6669", "", path)
			if err != nil {
				t.Fatal(err)
			}
			bars, err := collector.ReadBarsFile(path)
			if err != nil {
				t.Fatalf("read export: %v", err)
			}
			if len(bars) == 0 || len(bars) != res.BarCount {
				t.Errorf("exported %d bars, analyzed %d", len(bars), res.BarCount)
			}
			replay, err := an.AnalyzeBars("6669", "", bars)
			if err != nil {
				t.Fatal(err)
			}
			if replay.BuyTotal != res.BuyTotal || replay.SellTotal != res.SellTotal {
				t.Errorf("replay %d/%d, want %d/%d", replay.BuyTotal, replay.SellTotal, res.BuyTotal, res.SellTotal)
			}
		})
	}
}

func TestAnalyzeSymbol_UnknownProfileWritesNothing(t *testing.T) {
	an := service.NewAnalyzer(collector.NewCollector(&collector.MockFetcher{Price: 150}, 0), profile.NewRegistry(), nil)
	path := filepath.Join(t.TempDir(), "6669.csv")

	_, err := analyzeSymbol(context.Background(), an, "6669", "nope", path)
	if !errors.Is(err, profile.ErrUnknownProfile) {
		t.Errorf("err = %v, want ErrUnknownProfile", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("export written despite the error: %v", err)
	}
}

func TestAnalyzeSymbol_WithoutExport(t *testing.T) {
	an := service.NewAnalyzer(collector.NewCollector(&collector.MockFetcher{Price: 150}, 0), profile.NewRegistry(), nil)
	res, err := analyzeSymbol(context.Background(), an, "3231", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.ProfileID != profile.ShortSwingID || res.Status != model.StatusOK {
		t.Errorf("result = %s %s", res.ProfileID, res.Status)
	}
}
