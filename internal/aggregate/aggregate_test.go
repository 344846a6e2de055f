package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonghae5/stock-cli/internal/market"
	"github.com/jonghae5/stock-cli/internal/timeframe"
)

// 2024-01-01T00:00:00Z, a 15m bucket boundary
const baseMs = int64(1704067200000)

func tick(offset time.Duration, price float64) market.Tick {
	return market.Tick{Timestamp: baseMs + offset.Milliseconds(), Price: price, Volume: 1}
}

func TestBucketStart(t *testing.T) {
	iv := 15 * time.Minute
	cases := []struct {
		offset time.Duration
		want   time.Duration
	}{
		{0, 0},
		{time.Second, 0},
		{14*time.Minute + 59*time.Second, 0},
		{15 * time.Minute, 15 * time.Minute},
		{22 * time.Minute, 15 * time.Minute},
		{44 * time.Minute, 30 * time.Minute},
	}
	for _, tc := range cases {
		got := BucketStart(baseMs+tc.offset.Milliseconds(), iv)
		assert.Equal(t, baseMs+tc.want.Milliseconds(), got)
	}
	// boundaries come from the epoch, not from the data
	assert.Equal(t, int64(0), BucketStart(14*60*1000, iv))
}

func TestFromTicksOHLCArrivalOrder(t *testing.T) {
	ticks := []market.Tick{
		tick(time.Minute, 10),
		tick(2*time.Minute, 15),
		tick(3*time.Minute, 8),
		tick(4*time.Minute, 12),
	}
	now := time.UnixMilli(baseMs).Add(5 * time.Minute)
	series, err := FromTicks(ticks, 15*time.Minute, 60, now)
	require.NoError(t, err)
	require.Len(t, series, 1)

	c := series[0]
	assert.Equal(t, baseMs, c.OpenTime)
	assert.Equal(t, 10.0, c.Open)
	assert.Equal(t, 15.0, c.High)
	assert.Equal(t, 8.0, c.Low)
	assert.Equal(t, 12.0, c.Close)
	assert.Equal(t, int64(4), c.Trades)
	assert.Equal(t, 4.0, c.Volume)
}

func TestFromTicksTimestampTieKeepsArrivalOrder(t *testing.T) {
	ticks := []market.Tick{
		tick(0, 100),
		tick(0, 101), // same ms, later arrival closes
	}
	series, err := FromTicks(ticks, time.Minute, 10, time.UnixMilli(baseMs).Add(30*time.Second))
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 100.0, series[0].Open)
	assert.Equal(t, 101.0, series[0].Close)
}

func TestFromTicksEmitsGapBuckets(t *testing.T) {
	// ticks in buckets 0 and 2, nothing in bucket 1
	ticks := []market.Tick{
		tick(time.Minute, 10),
		tick(31*time.Minute, 20),
	}
	now := time.UnixMilli(baseMs).Add(40 * time.Minute)
	series, err := FromTicks(ticks, 15*time.Minute, 60, now)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.False(t, series[0].IsGap())
	assert.True(t, series[1].IsGap())
	assert.False(t, series[2].IsGap())
	// gap candles never carry fabricated OHLC
	assert.Zero(t, series[1].Open)
	assert.Zero(t, series[1].Close)
	assert.Equal(t, int64(0), series[1].Trades)
}

func TestFromTicksSeriesShape(t *testing.T) {
	var ticks []market.Tick
	for i := 0; i < 200; i++ {
		ticks = append(ticks, tick(time.Duration(i)*time.Minute, 100+float64(i%7)))
	}
	now := time.UnixMilli(baseMs).Add(200 * time.Minute)
	series, err := FromTicks(ticks, 15*time.Minute, 8, now)
	require.NoError(t, err)
	require.Len(t, series, 8)

	step := (15 * time.Minute).Milliseconds()
	for i := 1; i < len(series); i++ {
		assert.Equal(t, step, series[i].OpenTime-series[i-1].OpenTime,
			"uniform spacing, strictly increasing")
	}
	_, last := series.Span()
	assert.Equal(t, BucketStart(now.UnixMilli(), 15*time.Minute), last)
}

func TestFromTicksShortSeriesIsNotAnError(t *testing.T) {
	// 40 buckets of data, 60 requested
	var ticks []market.Tick
	for i := 0; i < 40; i++ {
		ticks = append(ticks, tick(time.Duration(i)*15*time.Minute, 50))
	}
	now := time.UnixMilli(baseMs).Add(40*15*time.Minute - time.Minute)
	series, err := FromTicks(ticks, 15*time.Minute, 60, now)
	require.NoError(t, err)
	assert.Len(t, series, 40)
}

func TestFromTicksNoTicks(t *testing.T) {
	now := time.UnixMilli(baseMs).Add(7 * time.Minute)
	series, err := FromTicks(nil, 15*time.Minute, 60, now)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, series[0].IsGap())
}

func TestFromTicksMalformed(t *testing.T) {
	_, err := FromTicks([]market.Tick{{Timestamp: 0, Price: 10}}, time.Minute, 5, time.Now())
	assert.ErrorIs(t, err, ErrMalformedInput)
	_, err = FromTicks([]market.Tick{{Timestamp: baseMs, Price: 0}}, time.Minute, 5, time.Now())
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestFromTicksDeterministic(t *testing.T) {
	var ticks []market.Tick
	for i := 0; i < 60; i++ {
		ticks = append(ticks, tick(time.Duration(i)*time.Minute, 100+math.Sin(float64(i))))
	}
	now := time.UnixMilli(baseMs).Add(time.Hour)
	a, err := FromTicks(ticks, 5*time.Minute, 12, now)
	require.NoError(t, err)
	b, err := FromTicks(ticks, 5*time.Minute, 12, now)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func fineSeries(n int, spacing time.Duration) market.Candles {
	out := make(market.Candles, 0, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		out = append(out, market.Candle{
			OpenTime: baseMs + int64(i)*spacing.Milliseconds(),
			Open:     p, High: p + 2, Low: p - 2, Close: p + 1,
			Volume: 10, Trades: 5,
		})
	}
	return out
}

func TestFromCandlesDegenerateTruncation(t *testing.T) {
	fine := fineSeries(100, 15*time.Minute)
	got, err := FromCandles(fine, 15*time.Minute, 60)
	require.NoError(t, err)
	require.Len(t, got, 60)
	assert.Equal(t, fine[40].OpenTime, got[0].OpenTime)
	assert.Equal(t, fine[99], got[59])
}

func TestFromCandlesReBuckets(t *testing.T) {
	fine := fineSeries(4, 15*time.Minute)
	got, err := FromCandles(fine, time.Hour, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, baseMs, c.OpenTime)
	assert.Equal(t, fine[0].Open, c.Open)
	assert.Equal(t, fine[3].Close, c.Close)
	assert.Equal(t, fine[3].High, c.High)  // 105
	assert.Equal(t, fine[0].Low, c.Low)    // 98
	assert.Equal(t, 40.0, c.Volume)
	assert.Equal(t, int64(20), c.Trades)
}

func TestFromCandlesFillsSkippedBuckets(t *testing.T) {
	fine := fineSeries(1, 15*time.Minute)
	far := market.Candle{
		OpenTime: baseMs + (45 * time.Minute).Milliseconds(),
		Open:     7, High: 9, Low: 6, Close: 8, Trades: 1,
	}
	got, err := FromCandles(append(fine, far), 15*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.True(t, got[1].IsGap())
	assert.True(t, got[2].IsGap())
	assert.False(t, got[3].IsGap())
}

func TestFromCandlesRejectsUnordered(t *testing.T) {
	fine := fineSeries(2, 15*time.Minute)
	fine[0], fine[1] = fine[1], fine[0]
	_, err := FromCandles(fine, 15*time.Minute, 10)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestResampleCoarser(t *testing.T) {
	spec, err := timeframe.Parse("15m:60:20")
	require.NoError(t, err)
	primary := fineSeries(60, 15*time.Minute)

	secondary := ResampleCoarser(primary, spec)
	require.LessOrEqual(t, len(secondary), 20)
	step := (45 * time.Minute).Milliseconds() // factor 3
	for i := 1; i < len(secondary); i++ {
		assert.Equal(t, step, secondary[i].OpenTime-secondary[i-1].OpenTime)
	}
	// determinism: identical input, identical output
	again := ResampleCoarser(primary, spec)
	assert.Equal(t, secondary, again)
}

func TestResampleCoarserPartialWhenShort(t *testing.T) {
	spec, err := timeframe.Parse("15m:60:60")
	require.NoError(t, err)
	primary := fineSeries(10, 15*time.Minute) // far fewer than 60
	secondary := ResampleCoarser(primary, spec)
	assert.NotEmpty(t, secondary)
	assert.LessOrEqual(t, len(secondary), 10)
}

func TestSMA(t *testing.T) {
	cs := fineSeries(10, 15*time.Minute)
	sma := SMA(cs, 3)
	require.Len(t, sma, 10)
	assert.True(t, math.IsNaN(sma[0]))
	assert.True(t, math.IsNaN(sma[1]))
	// closes are 101..110
	assert.InDelta(t, 102.0, sma[2], 1e-9)
	assert.InDelta(t, 109.0, sma[9], 1e-9)
}

func TestSMAWindowClamped(t *testing.T) {
	cs := fineSeries(4, 15*time.Minute)
	sma := SMA(cs, 60)
	require.Len(t, sma, 4)
	assert.False(t, math.IsNaN(sma[3]))
}
