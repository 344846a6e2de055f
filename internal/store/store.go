// Package store is a best-effort local cache: candles fetched for a
// symbol@timeframe and a log of rendered chart artifacts. Failures
// here are logged by callers, never fatal; the cache exists to soften
// rate limits, not to guarantee anything.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonghae5/stock-cli/internal/market"
)

// Manifest summarizes what the cache holds for one symbol@timeframe.
type Manifest struct {
	Symbol     string `json:"symbol"`
	Timeframe  string `json:"timeframe"`
	MinTime    int64  `json:"min_time"`
	MaxTime    int64  `json:"max_time"`
	Rows       int64  `json:"rows"`
	LastSyncAt int64  `json:"last_sync_at"`
}

type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

func Open(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("cache root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(root, "cache.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			open_time INTEGER NOT NULL,
			open REAL NOT NULL,
			high REAL NOT NULL,
			low REAL NOT NULL,
			close REAL NOT NULL,
			volume REAL NOT NULL,
			trades INTEGER NOT NULL,
			PRIMARY KEY (symbol, timeframe, open_time)
		)`,
		`CREATE TABLE IF NOT EXISTS chart_artifacts (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			spec TEXT NOT NULL,
			html_path TEXT NOT NULL,
			png_path TEXT,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func cacheKey(symbol, tf string) (string, string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tf = strings.ToLower(strings.TrimSpace(tf))
	if symbol == "" || tf == "" {
		return "", "", fmt.Errorf("symbol/timeframe cannot be empty")
	}
	return symbol, tf, nil
}

// SaveCandles upserts a series. Gap buckets are not persisted; they
// are a property of one aggregation window, not of the market data.
func (s *Store) SaveCandles(ctx context.Context, symbol, tf string, cs market.Candles) error {
	symbol, tf, err := cacheKey(symbol, tf)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store closed")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO candles
		(symbol, timeframe, open_time, open, high, low, close, volume, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, timeframe, open_time) DO UPDATE SET
		open=excluded.open, high=excluded.high, low=excluded.low,
		close=excluded.close, volume=excluded.volume, trades=excluded.trades`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, c := range cs {
		if c.IsGap() {
			continue
		}
		if _, err := stmt.ExecContext(ctx, symbol, tf, c.OpenTime,
			c.Open, c.High, c.Low, c.Close, c.Volume, c.Trades); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadCandles returns up to limit most recent cached candles,
// ascending by open time.
func (s *Store) LoadCandles(ctx context.Context, symbol, tf string, limit int) (market.Candles, error) {
	symbol, tf, err := cacheKey(symbol, tf)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 200
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("store closed")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT open_time, open, high, low, close, volume, trades
		FROM (
			SELECT * FROM candles WHERE symbol = ? AND timeframe = ?
			ORDER BY open_time DESC LIMIT ?
		) ORDER BY open_time ASC`, symbol, tf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out market.Candles
	for rows.Next() {
		var c market.Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Trades); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ManifestFor reports the cached range for a series.
func (s *Store) ManifestFor(ctx context.Context, symbol, tf string) (Manifest, error) {
	symbol, tf, err := cacheKey(symbol, tf)
	if err != nil {
		return Manifest{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return Manifest{}, fmt.Errorf("store closed")
	}
	m := Manifest{Symbol: symbol, Timeframe: tf, LastSyncAt: time.Now().UnixMilli()}
	row := s.db.QueryRowContext(ctx, `SELECT COALESCE(MIN(open_time),0), COALESCE(MAX(open_time),0), COUNT(*)
		FROM candles WHERE symbol = ? AND timeframe = ?`, symbol, tf)
	if err := row.Scan(&m.MinTime, &m.MaxTime, &m.Rows); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// RecordArtifact logs a rendered chart so past outputs stay findable.
func (s *Store) RecordArtifact(ctx context.Context, id, symbol, spec, htmlPath, pngPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store closed")
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO chart_artifacts
		(id, symbol, spec, html_path, png_path, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, symbol, spec, htmlPath, pngPath, time.Now().UnixMilli())
	return err
}
