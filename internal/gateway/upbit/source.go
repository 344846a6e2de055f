// Package upbit is a thin client for the Upbit public REST API,
// covering the three endpoints the CLI needs: spot tickers, candles
// and raw trade ticks.
package upbit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonghae5/stock-cli/internal/market"
)

const (
	DefaultBaseURL = "https://api.upbit.com"

	// hard caps documented by the API
	maxCandleCount = 200
	maxTickCount   = 500
)

// nativeMinuteUnits are the minute-candle widths Upbit serves
// directly; anything else has to be re-aggregated client side.
var nativeMinuteUnits = map[int]bool{
	1: true, 3: true, 5: true, 10: true, 15: true, 30: true, 60: true, 240: true,
}

func NativeMinuteUnit(minutes int) bool {
	return nativeMinuteUnits[minutes]
}

// FinerMinuteUnit picks the largest native unit that divides minutes,
// for fetching input the aggregator can fold into the requested width.
func FinerMinuteUnit(minutes int) int {
	best := 1
	for unit := range nativeMinuteUnits {
		if unit < minutes && minutes%unit == 0 && unit > best {
			best = unit
		}
	}
	return best
}

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

func (s *Source) Name() string { return "upbit" }

type tickerRow struct {
	Market           string  `json:"market"`
	TradePrice       float64 `json:"trade_price"`
	SignedChangeRate float64 `json:"signed_change_rate"`
	TradeVolume      float64 `json:"trade_volume"`
	HighPrice        float64 `json:"high_price"`
	LowPrice         float64 `json:"low_price"`
}

// Ticker fetches spot snapshots for one or more markets in a single
// request. Result order follows the API response.
func (s *Source) Ticker(ctx context.Context, symbols ...string) ([]market.Quote, error) {
	if len(symbols) == 0 {
		return nil, market.Unavailable(s.Name(), "", fmt.Errorf("no symbols requested"))
	}
	joined := strings.Join(symbols, ",")
	var rows []tickerRow
	if err := s.get(ctx, "/v1/ticker", url.Values{"markets": {joined}}, &rows); err != nil {
		return nil, market.Unavailable(s.Name(), joined, err)
	}
	if len(rows) == 0 {
		return nil, market.Unavailable(s.Name(), joined, fmt.Errorf("empty ticker response"))
	}
	out := make([]market.Quote, 0, len(rows))
	for _, r := range rows {
		if r.Market == "" {
			return nil, market.Unavailable(s.Name(), joined, fmt.Errorf("ticker row without market field"))
		}
		out = append(out, market.Quote{
			Symbol:     r.Market,
			TradePrice: r.TradePrice,
			ChangeRate: r.SignedChangeRate,
			Volume:     r.TradeVolume,
			High:       r.HighPrice,
			Low:        r.LowPrice,
		})
	}
	return out, nil
}

type candleRow struct {
	Market         string  `json:"market"`
	CandleDateTime string  `json:"candle_date_time_utc"`
	OpeningPrice   float64 `json:"opening_price"`
	HighPrice      float64 `json:"high_price"`
	LowPrice       float64 `json:"low_price"`
	TradePrice     float64 `json:"trade_price"`
	Timestamp      int64   `json:"timestamp"`
	AccVolume      float64 `json:"candle_acc_trade_volume"`
}

// MinuteCandles fetches up to count pre-aggregated minute candles at a
// native unit width, returned ascending by open time (the API serves
// newest first). count is clamped to the API maximum; callers treat a
// short series as data, not as failure.
func (s *Source) MinuteCandles(ctx context.Context, symbol string, unit, count int) (market.Candles, error) {
	if !nativeMinuteUnits[unit] {
		return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("unsupported minute unit %d", unit))
	}
	return s.candles(ctx, "/v1/candles/minutes/"+strconv.Itoa(unit), symbol, count)
}

// DayCandles fetches daily candles, ascending.
func (s *Source) DayCandles(ctx context.Context, symbol string, count int) (market.Candles, error) {
	return s.candles(ctx, "/v1/candles/days", symbol, count)
}

func (s *Source) candles(ctx context.Context, path, symbol string, count int) (market.Candles, error) {
	if count > maxCandleCount {
		count = maxCandleCount
	}
	q := url.Values{}
	q.Set("market", symbol)
	q.Set("count", strconv.Itoa(count))
	var rows []candleRow
	if err := s.get(ctx, path, q, &rows); err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	out := make(market.Candles, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- { // newest-first on the wire
		r := rows[i]
		if r.CandleDateTime == "" || r.TradePrice == 0 {
			return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("candle row missing timestamp or price"))
		}
		open, err := time.Parse("2006-01-02T15:04:05", r.CandleDateTime)
		if err != nil {
			return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("parse candle time %q: %w", r.CandleDateTime, err))
		}
		out = append(out, market.Candle{
			OpenTime: open.UTC().UnixMilli(),
			Open:     r.OpeningPrice,
			High:     r.HighPrice,
			Low:      r.LowPrice,
			Close:    r.TradePrice,
			Volume:   r.AccVolume,
			Trades:   1,
		})
	}
	return out, nil
}

type tradeRow struct {
	TradePrice  float64 `json:"trade_price"`
	TradeVolume float64 `json:"trade_volume"`
	Timestamp   int64   `json:"timestamp"`
}

// Ticks fetches the most recent raw trades, oldest first. Arrival
// order within equal timestamps is the API's, preserved through the
// reversal (the feed is newest-first).
func (s *Source) Ticks(ctx context.Context, symbol string, count int) ([]market.Tick, error) {
	if count > maxTickCount {
		count = maxTickCount
	}
	q := url.Values{}
	q.Set("market", symbol)
	q.Set("count", strconv.Itoa(count))
	var rows []tradeRow
	if err := s.get(ctx, "/v1/trades/ticks", q, &rows); err != nil {
		return nil, market.Unavailable(s.Name(), symbol, err)
	}
	out := make([]market.Tick, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if r.Timestamp == 0 || r.TradePrice == 0 {
			return nil, market.Unavailable(s.Name(), symbol, fmt.Errorf("trade row missing timestamp or price"))
		}
		out = append(out, market.Tick{
			Timestamp: r.Timestamp,
			Price:     r.TradePrice,
			Volume:    r.TradeVolume,
		})
	}
	return out, nil
}

func (s *Source) get(ctx context.Context, path string, q url.Values, dst any) error {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return err
	}
	u.Path = path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("upbit returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
