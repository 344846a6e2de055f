package aggregate

import (
	"math"
	"time"

	talib "github.com/markcheno/go-talib"

	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// ResampleCoarser derives the secondary overlay series from the
// primary one: buckets are folded at interval * spec.CoarseFactor()
// and at most spec.SecondaryCount of them are kept. The fold is a pure
// function of its input: the same primary series always yields a
// byte-identical result. A primary series shorter than SecondaryCount
// produces a partial series, never an error.
func ResampleCoarser(primary market.Candles, spec timeframe.Spec) market.Candles {
	factor := spec.CoarseFactor()
	coarse := spec.Interval * time.Duration(factor)
	step := coarse.Milliseconds()
	out := make(market.Candles, 0, len(primary)/factor+1)
	for _, c := range primary {
		b := BucketStart(c.OpenTime, coarse)
		n := len(out)
		if n == 0 || out[n-1].OpenTime != b {
			// keep the grid contiguous across empty coarse slots
			if n > 0 {
				for next := out[n-1].OpenTime + step; next < b; next += step {
					out = append(out, market.Candle{OpenTime: next})
				}
			}
			slot := market.Candle{OpenTime: b}
			if !c.IsGap() {
				slot.Open = c.Open
				slot.High = c.High
				slot.Low = c.Low
				slot.Close = c.Close
				slot.Volume = c.Volume
				slot.Trades = c.Trades
			}
			out = append(out, slot)
			continue
		}
		if c.IsGap() {
			continue
		}
		slot := &out[n-1]
		if slot.IsGap() {
			slot.Open = c.Open
			slot.High = c.High
			slot.Low = c.Low
		} else {
			if c.High > slot.High {
				slot.High = c.High
			}
			if c.Low < slot.Low {
				slot.Low = c.Low
			}
		}
		slot.Close = c.Close
		slot.Volume += c.Volume
		slot.Trades += c.Trades
	}
	return Tail(out, spec.SecondaryCount)
}

// SMA computes a simple moving average of non-gap closes for the
// chart overlay. Gap buckets are bridged with the previous close so
// the indicator input stays contiguous; leading entries without a full
// window come back as NaN and are skipped at draw time. The window is
// clamped to the series length, so a short series yields a partial but
// valid overlay.
func SMA(cs market.Candles, window int) []float64 {
	if len(cs) == 0 || window < 1 {
		return nil
	}
	if window > len(cs) {
		window = len(cs)
	}
	closes := make([]float64, len(cs))
	prev := math.NaN()
	for i, c := range cs {
		if c.IsGap() {
			closes[i] = prev
			continue
		}
		closes[i] = c.Close
		prev = c.Close
	}
	if window == 1 {
		return closes
	}
	sma := talib.Sma(closes, window)
	// talib zero-fills the warmup region; mark it NaN so the renderer
	// skips those points instead of drawing a floor at zero
	for i := 0; i < window-1 && i < len(sma); i++ {
		sma[i] = math.NaN()
	}
	return sma
}
