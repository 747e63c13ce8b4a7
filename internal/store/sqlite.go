package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"SwingSentinel/internal/model"
)

const dayLayout = "2006-01-02"

// SQLiteStore persists bars to a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
	mu sync.Mutex
}

type barRow struct {
	Symbol string  `db:"symbol"`
	Date   string  `db:"date"`
	Open   float64 `db:"open"`
	High   float64 `db:"high"`
	Low    float64 `db:"low"`
	Close  float64 `db:"close"`
	Volume float64 `db:"volume"`
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol     TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			open       REAL    NOT NULL,
			high       REAL    NOT NULL,
			low        REAL    NOT NULL,
			close      REAL    NOT NULL,
			volume     REAL    NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_symbol ON daily_bars(symbol)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO daily_bars
		(symbol, date, open, high, low, close, volume, updated_at)
		VALUES (:symbol, :date, :open, :high, :low, :close, :volume, :updated_at)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, b := range bars {
		row := map[string]any{
			"symbol":     symbol,
			"date":       b.Time.UTC().Format(dayLayout),
			"open":       b.Open,
			"high":       b.High,
			"low":        b.Low,
			"close":      b.Close,
			"volume":     b.Volume,
			"updated_at": now,
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("upsert %s %s: %w", symbol, row["date"], err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadBars(ctx context.Context, symbol string) ([]model.Bar, error) {
	var rows []barRow
	err := s.db.SelectContext(ctx, &rows, `SELECT symbol, date, open, high, low, close, volume
		FROM daily_bars WHERE symbol = ? ORDER BY date ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("load bars %s: %w", symbol, err)
	}

	bars := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		t, err := time.Parse(dayLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", r.Date, err)
		}
		bars = append(bars, model.Bar{
			Time:   t,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	return bars, nil
}

func (s *SQLiteStore) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	if err := s.db.SelectContext(ctx, &symbols, `SELECT DISTINCT symbol FROM daily_bars ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return symbols, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
