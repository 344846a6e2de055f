// Package app wires config, market sources, the aggregation engine,
// the chart renderer and the cache store into the run targets:
// graph, price, price_stock and cache.
package app

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jonghae5/stock-cli/internal/config"
	"github.com/jonghae5/stock-cli/internal/gateway/binance"
	"github.com/jonghae5/stock-cli/internal/gateway/upbit"
	"github.com/jonghae5/stock-cli/internal/gateway/yahoo"
	"github.com/jonghae5/stock-cli/internal/logger"
	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/store"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// CandleFetcher resolves one timeframe spec into a primary candle
// series. Implementations own the mapping from spec interval to
// whatever granularity their venue serves natively.
type CandleFetcher interface {
	Name() string
	Fetch(ctx context.Context, symbol string, spec timeframe.Spec) (market.Candles, error)
}

// TickerSource serves spot quotes for crypto markets.
type TickerSource interface {
	Ticker(ctx context.Context, symbols ...string) ([]market.Quote, error)
}

// TickSource serves recent raw trades, oldest first.
type TickSource interface {
	Ticks(ctx context.Context, symbol string, count int) ([]market.Tick, error)
}

// StockQuoter serves one equity quote per call.
type StockQuoter interface {
	Quote(ctx context.Context, symbol string) (market.StockQuote, error)
}

type App struct {
	mu  sync.RWMutex
	cfg *config.Config // guarded by mu; Reload swaps it from the fsnotify goroutine
	out io.Writer

	fetcher CandleFetcher
	ticker  TickerSource
	trades  TickSource
	stocks  StockQuoter
	cache   *store.Store
}

func New(cfg *config.Config) *App {
	a := &App{cfg: cfg, out: os.Stdout}

	up := upbit.New(cfg.Source.BaseURL, cfg.Source.Timeout())
	a.ticker = up
	a.stocks = yahoo.New("", cfg.Source.Timeout())

	a.fetcher, a.trades = a.buildFetcher(cfg.Source.Provider)
	return a
}

// buildFetcher builds the candle fetcher for a provider name, plus the
// raw-trade feed when the venue has one; anything but "binance" falls
// back to upbit. Pure lookup, no fields are touched.
func (a *App) buildFetcher(provider string) (CandleFetcher, TickSource) {
	cfg := a.config()
	switch strings.ToLower(provider) {
	case "binance":
		// go-binance carries no public trades endpoint here, so the
		// ticks graph path stays upbit-only
		return &binanceFetcher{src: binance.New("", cfg.Source.Timeout())}, nil
	default:
		up := upbit.New(cfg.Source.BaseURL, cfg.Source.Timeout())
		return &upbitFetcher{src: up}, up
	}
}

// config returns the current config snapshot. Loops that print more
// than once take one snapshot per pass so a concurrent Reload cannot
// change the view mid-table.
func (a *App) config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// SetOutput redirects table and path printing, used by tests.
func (a *App) SetOutput(w io.Writer) { a.out = w }

// OpenCache opens the candle cache under the configured cache dir.
// The cache is best-effort: callers run without one when this fails.
func (a *App) OpenCache() error {
	st, err := store.Open(a.config().App.CacheDir)
	if err != nil {
		return err
	}
	a.cache = st
	return nil
}

func (a *App) Close() error {
	if a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

// Reload swaps in a fresh config for the watch loops. Sources built
// at New time keep their endpoints; only display knobs take effect.
// Called from viper's fsnotify goroutine while a watch loop is
// reading, hence the lock.
func (a *App) Reload(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	logger.SetLevel(cfg.App.LogLevel)
}
