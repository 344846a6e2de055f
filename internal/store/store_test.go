package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonghae5/stock-cli/internal/market"
)

const baseMs = int64(1704067200000)

func series(n int) market.Candles {
	out := make(market.Candles, 0, n)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		out = append(out, market.Candle{
			OpenTime: baseMs + int64(i)*(15*time.Minute).Milliseconds(),
			Open:     p, High: p + 1, Low: p - 1, Close: p,
			Volume: 2, Trades: 3,
		})
	}
	return out
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCandles(ctx, "KRW-BTC", "15m", series(10)))
	got, err := s.LoadCandles(ctx, "krw-btc", "15M", 100)
	require.NoError(t, err)
	assert.Equal(t, series(10), got)
}

func TestLoadMostRecentAscending(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCandles(ctx, "KRW-BTC", "15m", series(10)))
	got, err := s.LoadCandles(ctx, "KRW-BTC", "15m", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, series(10)[7].OpenTime, got[0].OpenTime)
	assert.Less(t, got[0].OpenTime, got[2].OpenTime)
}

func TestUpsertOverwrites(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	cs := series(1)
	require.NoError(t, s.SaveCandles(ctx, "KRW-BTC", "15m", cs))
	cs[0].Close = 999
	require.NoError(t, s.SaveCandles(ctx, "KRW-BTC", "15m", cs))

	got, err := s.LoadCandles(ctx, "KRW-BTC", "15m", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 999.0, got[0].Close)
}

func TestGapCandlesNotPersisted(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	cs := series(2)
	cs = append(cs, market.Candle{OpenTime: baseMs + 999}) // gap
	require.NoError(t, s.SaveCandles(ctx, "KRW-BTC", "15m", cs))

	m, err := s.ManifestFor(ctx, "KRW-BTC", "15m")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.Rows)
}

func TestManifestEmpty(t *testing.T) {
	s := openTemp(t)
	m, err := s.ManifestFor(context.Background(), "KRW-ETH", "1h")
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Rows)
	assert.Equal(t, int64(0), m.MinTime)
}

func TestRecordArtifact(t *testing.T) {
	s := openTemp(t)
	err := s.RecordArtifact(context.Background(), "abcd1234", "KRW-BTC", "15m:60:60", "/tmp/x.html", "")
	require.NoError(t, err)
}

func TestRejectsEmptyKey(t *testing.T) {
	s := openTemp(t)
	err := s.SaveCandles(context.Background(), "", "15m", series(1))
	assert.Error(t, err)
}
