// Package yahoo fetches daily equity candles from the Yahoo Finance
// chart API. No API key is required for the public endpoint.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jonghae5/stock-cli/internal/market"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

type Source struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Source{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *Source) Name() string { return "yahoo" }

// DailyCandles fetches rng worth of daily bars (e.g. "5d"), ascending.
// Null slots in the payload (halted sessions) are skipped.
func (s *Source) DailyCandles(ctx context.Context, symbol, rng string) (market.Candles, error) {
	if rng == "" {
		rng = "5d"
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	u.Path = "/v8/finance/chart/" + symbol
	q := u.Query()
	q.Set("range", rng)
	q.Set("interval", "1d")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	req.Header.Set("User-Agent", "stock-cli")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("yahoo returned status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	candles, err := parseChart(body)
	if err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	return candles, nil
}

// Quote condenses the latest daily bar into the row the price_stock
// command prints. The change rate is (close-open)/open of the most
// recent session, mirroring the dashboard this replaces.
func (s *Source) Quote(ctx context.Context, symbol string) (market.StockQuote, error) {
	candles, err := s.DailyCandles(ctx, symbol, "5d")
	if err != nil {
		return market.StockQuote{}, err
	}
	last, ok := candles.Last()
	if !ok {
		return market.StockQuote{}, market.Unavailable(s.Name(), symbol, fmt.Errorf("no sessions returned"))
	}
	change := 0.0
	if last.Open != 0 {
		change = (last.Close - last.Open) / last.Open
	}
	return market.StockQuote{
		Symbol:     symbol,
		Open:       last.Open,
		Close:      last.Close,
		ChangeRate: change,
		Volume:     last.Volume,
		High:       last.High,
		Low:        last.Low,
	}, nil
}

func parseChart(body []byte) (market.Candles, error) {
	if msg := gjson.GetBytes(body, "chart.error.description"); msg.Exists() && msg.String() != "" {
		return nil, fmt.Errorf("yahoo: %s", msg.String())
	}
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("chart payload missing result")
	}
	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	if len(timestamps) == 0 || !quote.Exists() {
		return nil, fmt.Errorf("chart payload missing timestamps or quote block")
	}
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	if len(opens) != len(timestamps) || len(closes) != len(timestamps) {
		return nil, fmt.Errorf("chart payload length mismatch")
	}

	out := make(market.Candles, 0, len(timestamps))
	for i, ts := range timestamps {
		if closes[i].Type == gjson.Null || opens[i].Type == gjson.Null {
			continue // halted or not-yet-closed slot
		}
		c := market.Candle{
			OpenTime: ts.Int() * 1000,
			Open:     opens[i].Float(),
			Close:    closes[i].Float(),
			Trades:   1,
		}
		if i < len(highs) {
			c.High = highs[i].Float()
		}
		if i < len(lows) {
			c.Low = lows[i].Float()
		}
		if i < len(volumes) {
			c.Volume = volumes[i].Float()
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("chart payload had no usable sessions")
	}
	return out, nil
}
