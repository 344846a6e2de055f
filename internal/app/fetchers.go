package app

import (
	"context"

	"github.com/jonghae5/stock-cli/internal/aggregate"
	"github.com/jonghae5/stock-cli/internal/gateway/binance"
	"github.com/jonghae5/stock-cli/internal/gateway/upbit"
	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// upbitFetcher maps a spec onto Upbit's fixed candle endpoints. When
// the interval is not a native minute unit it pulls a finer series and
// re-aggregates, so "45m" works even though Upbit never serves it.
type upbitFetcher struct {
	src *upbit.Source
}

func (f *upbitFetcher) Name() string { return f.src.Name() }

func (f *upbitFetcher) Fetch(ctx context.Context, symbol string, spec timeframe.Spec) (market.Candles, error) {
	if spec.Unit == "d" {
		fine, err := f.src.DayCandles(ctx, symbol, spec.PrimaryCount*spec.N)
		if err != nil {
			return nil, err
		}
		return aggregate.FromCandles(fine, spec.Interval, spec.PrimaryCount)
	}

	minutes := spec.Minutes()
	if upbit.NativeMinuteUnit(minutes) {
		fine, err := f.src.MinuteCandles(ctx, symbol, minutes, spec.PrimaryCount)
		if err != nil {
			return nil, err
		}
		// degenerate pass: same interval, but it snaps the series onto
		// the epoch grid and surfaces exchange-side holes as gaps
		return aggregate.FromCandles(fine, spec.Interval, spec.PrimaryCount)
	}

	finer := upbit.FinerMinuteUnit(minutes)
	need := spec.PrimaryCount * (minutes / finer)
	fine, err := f.src.MinuteCandles(ctx, symbol, finer, need)
	if err != nil {
		return nil, err
	}
	return aggregate.FromCandles(fine, spec.Interval, spec.PrimaryCount)
}

// binanceFetcher serves the same role against Binance spot klines.
// Symbols arrive in Upbit notation and are normalized on the way out.
type binanceFetcher struct {
	src *binance.Source
}

func (f *binanceFetcher) Name() string { return f.src.Name() }

func (f *binanceFetcher) Fetch(ctx context.Context, symbol string, spec timeframe.Spec) (market.Candles, error) {
	if binance.NativeInterval(spec.Interval) {
		fine, err := f.src.Candles(ctx, symbol, spec.Interval, spec.PrimaryCount)
		if err != nil {
			return nil, err
		}
		return aggregate.FromCandles(fine, spec.Interval, spec.PrimaryCount)
	}

	finer := binance.FinerNativeInterval(spec.Interval)
	need := spec.PrimaryCount * int(spec.Interval/finer)
	fine, err := f.src.Candles(ctx, symbol, finer, need)
	if err != nil {
		return nil, err
	}
	return aggregate.FromCandles(fine, spec.Interval, spec.PrimaryCount)
}
