package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jonghae5/stock-cli/internal/aggregate"
	"github.com/jonghae5/stock-cli/internal/chart"
	"github.com/jonghae5/stock-cli/internal/logger"
	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// GraphOptions narrows one graph invocation; zero values fall back to
// the loaded config.
type GraphOptions struct {
	Symbol    string
	Timeframe string
	OutputDir string
	Source    string // overrides source.provider for this invocation
	PNG       bool

	// Ticks builds the primary series from raw trades instead of
	// exchange candles. Only short windows fit inside the trade
	// history the venue keeps.
	Ticks bool
}

// Graph fetches a primary candle series for the symbol, derives the
// coarser secondary series and the SMA overlay, renders the page and
// records the artifact in the cache.
func (a *App) Graph(ctx context.Context, opt GraphOptions) error {
	cfg := a.config()
	if opt.Symbol == "" {
		opt.Symbol = "KRW-BTC"
	}
	if opt.Timeframe == "" {
		opt.Timeframe = cfg.Timeframe
	}
	if opt.OutputDir == "" {
		opt.OutputDir = cfg.App.OutputDir
	}

	spec, err := timeframe.Parse(opt.Timeframe)
	if err != nil {
		return err
	}

	fetcher := a.fetcher
	if opt.Source != "" {
		fetcher, _ = a.buildFetcher(opt.Source)
	}

	var primary market.Candles
	if opt.Ticks {
		logger.Infof("graph %s %s from raw trades", opt.Symbol, spec)
		primary, err = a.fetchFromTicks(ctx, opt.Symbol, spec)
	} else {
		logger.Infof("graph %s %s via %s", opt.Symbol, spec, fetcher.Name())
		primary, err = fetcher.Fetch(ctx, opt.Symbol, spec)
	}
	if err != nil {
		return err
	}
	if len(primary) == 0 {
		return fmt.Errorf("no candles for %s over %s", opt.Symbol, spec)
	}
	if gaps := primary.Gaps(); gaps > 0 {
		logger.Debugf("%s: %d of %d buckets empty", opt.Symbol, gaps, len(primary))
	}

	if a.cache != nil {
		if err := a.cache.SaveCandles(ctx, opt.Symbol, spec.String(), primary); err != nil {
			logger.Warnf("cache save failed: %v", err)
		}
	}

	secondary := aggregate.ResampleCoarser(primary, spec)
	window := cfg.Chart.SMAWindow
	if spec.SecondaryCount < window {
		window = spec.SecondaryCount
	}
	overlay := aggregate.SMA(primary, window)

	// a failed screenshot still leaves the HTML artifact on disk, so
	// record and report whatever Save managed to write before handing
	// the error up
	art, saveErr := chart.Save(ctx, chart.Input{
		Symbol:    opt.Symbol,
		Spec:      spec,
		Primary:   primary,
		Secondary: secondary,
		Overlay:   overlay,
		SMAWindow: window,
		WidthPx:   cfg.Chart.Width,
		HeightPx:  cfg.Chart.Height,
	}, opt.OutputDir, opt.PNG)

	if art.HTMLPath != "" {
		if a.cache != nil {
			if err := a.cache.RecordArtifact(ctx, art.ID, opt.Symbol, spec.String(), art.HTMLPath, art.PNGPath); err != nil {
				logger.Warnf("artifact record failed: %v", err)
			}
		}
		fmt.Fprintf(a.out, "chart saved: %s\n", art.HTMLPath)
		if art.PNGPath != "" {
			fmt.Fprintf(a.out, "snapshot saved: %s\n", art.PNGPath)
		}
	}
	return saveErr
}

// Upbit keeps at most this many recent trades per request.
const maxTradeHistory = 500

func (a *App) fetchFromTicks(ctx context.Context, symbol string, spec timeframe.Spec) (market.Candles, error) {
	if a.trades == nil {
		return nil, fmt.Errorf("raw trades are not available from %s", a.fetcher.Name())
	}
	ticks, err := a.trades.Ticks(ctx, symbol, maxTradeHistory)
	if err != nil {
		return nil, err
	}
	return aggregate.FromTicks(ticks, spec.Interval, spec.PrimaryCount, time.Now())
}
