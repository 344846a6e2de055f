// Package binance is the alternate crypto candle source, backed by the
// go-binance SDK spot klines endpoint.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"

	"github.com/jonghae5/stock-cli/internal/market"
)

const maxKlineLimit = 1000

type Source struct {
	client *gobinance.Client
}

func New(baseURL string, timeout time.Duration) *Source {
	client := gobinance.NewClient("", "")
	if base := strings.TrimSpace(baseURL); base != "" {
		client.BaseURL = base
	}
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return &Source{client: client}
}

func (s *Source) Name() string { return "binance" }

// NormalizeSymbol maps quote-base market codes ("KRW-BTC") onto the
// concatenated base-quote form Binance expects ("BTCKRW"). Symbols
// already in exchange form pass through unchanged.
func NormalizeSymbol(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if quote, base, ok := strings.Cut(sym, "-"); ok {
		return base + quote
	}
	return sym
}

// Candles fetches up to count klines at the given interval, ascending.
// Interval must be one of the widths Binance serves natively.
func (s *Source) Candles(ctx context.Context, symbol string, interval time.Duration, count int) (market.Candles, error) {
	iv, ok := nativeInterval(interval)
	if !ok {
		return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("no native binance interval for %s", interval))
	}
	if count <= 0 {
		count = 100
	}
	if count > maxKlineLimit {
		count = maxKlineLimit
	}
	sym := NormalizeSymbol(symbol)
	kls, err := s.client.NewKlinesService().
		Symbol(sym).
		Interval(iv).
		Limit(count).
		Do(ctx)
	if err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	out := make(market.Candles, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		if kl.OpenTime == 0 {
			return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("kline without open time"))
		}
		c := market.Candle{
			OpenTime: kl.OpenTime,
			Open:     parsePrice(kl.Open),
			High:     parsePrice(kl.High),
			Low:      parsePrice(kl.Low),
			Close:    parsePrice(kl.Close),
			Volume:   parsePrice(kl.Volume),
			Trades:   kl.TradeNum,
		}
		if c.Close == 0 {
			return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("kline without close price"))
		}
		if c.Trades == 0 {
			c.Trades = 1
		}
		out = append(out, c)
	}
	return out, nil
}

// NativeInterval reports whether Binance serves interval directly.
func NativeInterval(d time.Duration) bool {
	_, ok := nativeInterval(d)
	return ok
}

// FinerNativeInterval returns the largest native interval below d that
// divides it evenly, so re-aggregation needs the fewest klines. Falls
// back to one minute when nothing coarser divides d.
func FinerNativeInterval(d time.Duration) time.Duration {
	for i := len(nativeIntervals) - 1; i >= 0; i-- {
		iv := nativeIntervals[i]
		if iv < d && d%iv == 0 {
			return iv
		}
	}
	return time.Minute
}

var nativeIntervals = []time.Duration{
	time.Minute, 3 * time.Minute, 5 * time.Minute, 15 * time.Minute, 30 * time.Minute,
	time.Hour, 2 * time.Hour, 4 * time.Hour, 6 * time.Hour, 8 * time.Hour, 12 * time.Hour,
	24 * time.Hour, 72 * time.Hour,
}

func nativeInterval(d time.Duration) (string, bool) {
	switch d {
	case time.Minute, 3 * time.Minute, 5 * time.Minute, 15 * time.Minute, 30 * time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + "m", true
	case time.Hour, 2 * time.Hour, 4 * time.Hour, 6 * time.Hour, 8 * time.Hour, 12 * time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h", true
	case 24 * time.Hour, 72 * time.Hour:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d", true
	default:
		return "", false
	}
}

func parsePrice(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
