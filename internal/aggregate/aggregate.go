// Package aggregate turns raw ticks or finer candles into bounded,
// gap-aware OHLC series on an epoch-aligned interval grid.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonghae5/stock-cli/internal/market"
)

var (
	ErrBadInterval = errors.New("interval must be positive")
	ErrBadCount    = errors.New("count must be positive")
	// ErrMalformedInput marks source rows missing a usable timestamp
	// or price; the caller should surface it as a source failure.
	ErrMalformedInput = errors.New("malformed source data")
)

// BucketStart aligns ts down to a multiple of interval relative to the
// Unix epoch, so bucket boundaries are identical across runs and
// sources (15m buckets land on :00/:15/:30/:45).
func BucketStart(ts int64, interval time.Duration) int64 {
	step := interval.Milliseconds()
	if step <= 0 {
		return ts
	}
	rem := ts % step
	if rem < 0 {
		rem += step
	}
	return ts - rem
}

// FromTicks folds a source-ordered tick stream into at most count
// candles ending at the bucket containing now. Buckets between the
// first observed tick and now with no ticks are emitted as gap candles
// (Trades == 0, OHLC untouched); fewer available buckets than count is
// not an error, the series just comes back short. Within a bucket the
// first tick in arrival order opens, the last closes; ties on
// timestamp keep arrival order.
func FromTicks(ticks []market.Tick, interval time.Duration, count int, now time.Time) (market.Candles, error) {
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	if count < 1 {
		return nil, ErrBadCount
	}
	for _, t := range ticks {
		if t.Timestamp <= 0 || t.Price <= 0 {
			return nil, fmt.Errorf("%w: tick %+v", ErrMalformedInput, t)
		}
	}
	step := interval.Milliseconds()
	end := BucketStart(now.UnixMilli(), interval)
	start := end - int64(count-1)*step
	if len(ticks) > 0 {
		if first := BucketStart(ticks[0].Timestamp, interval); first > start {
			start = first
		}
	} else {
		// no ticks at all: a single gap bucket at now, nothing more
		start = end
	}
	if start > end {
		return market.Candles{}, nil
	}

	n := int((end-start)/step) + 1
	out := make(market.Candles, n)
	for i := range out {
		out[i].OpenTime = start + int64(i)*step
	}
	for _, t := range ticks {
		b := BucketStart(t.Timestamp, interval)
		if b < start || b > end {
			continue
		}
		c := &out[(b-start)/step]
		if c.Trades == 0 {
			c.Open = t.Price
			c.High = t.Price
			c.Low = t.Price
		} else {
			if t.Price > c.High {
				c.High = t.Price
			}
			if t.Price < c.Low {
				c.Low = t.Price
			}
		}
		c.Close = t.Price
		c.Volume += t.Volume
		c.Trades++
	}
	return out, nil
}

// FromCandles re-buckets finer pre-aggregated candles onto the aligned
// grid and keeps the most recent count buckets. With interval equal to
// the input spacing this degenerates to a validation and truncation
// pass. Input must be ascending by OpenTime; rows without a timestamp
// are malformed source data.
func FromCandles(fine market.Candles, interval time.Duration, count int) (market.Candles, error) {
	if interval <= 0 {
		return nil, ErrBadInterval
	}
	if count < 1 {
		return nil, ErrBadCount
	}
	step := interval.Milliseconds()
	out := make(market.Candles, 0, len(fine))
	for _, c := range fine {
		if c.OpenTime <= 0 {
			return nil, fmt.Errorf("%w: candle without timestamp", ErrMalformedInput)
		}
		if c.IsGap() {
			continue
		}
		b := BucketStart(c.OpenTime, interval)
		if n := len(out); n > 0 && out[n-1].OpenTime == b {
			merged := &out[n-1]
			if c.High > merged.High {
				merged.High = c.High
			}
			if c.Low < merged.Low {
				merged.Low = c.Low
			}
			merged.Close = c.Close
			merged.Volume += c.Volume
			merged.Trades += c.Trades
			continue
		} else if n > 0 && out[n-1].OpenTime > b {
			return nil, fmt.Errorf("%w: candles not ascending at %d", ErrMalformedInput, c.OpenTime)
		}
		merged := c
		merged.OpenTime = b
		if merged.Trades == 0 {
			merged.Trades = 1
		}
		// grid continuity: emit gap buckets for skipped slots
		if n := len(out); n > 0 {
			for next := out[n-1].OpenTime + step; next < b; next += step {
				out = append(out, market.Candle{OpenTime: next})
			}
		}
		out = append(out, merged)
	}
	return Tail(out, count), nil
}

// Tail keeps the most recent limit entries.
func Tail(cs market.Candles, limit int) market.Candles {
	if limit <= 0 || len(cs) <= limit {
		return cs
	}
	return cs[len(cs)-limit:]
}
