package market

import "time"

// Tick is a single raw trade observation as delivered by a source.
// Ticks are ordered by the source but equal timestamps and duplicates
// are possible; arrival order is preserved everywhere downstream.
type Tick struct {
	Timestamp int64   `json:"timestamp"` // Unix ms
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume,omitempty"`
}

func (t Tick) Time() time.Time {
	return time.UnixMilli(t.Timestamp).UTC()
}

// Candle is one OHLC bucket. OpenTime is the bucket start on the
// epoch-aligned interval grid. Trades == 0 marks a gap bucket: the
// OHLC fields carry no meaning there and must not be read.
type Candle struct {
	OpenTime int64   `json:"open_time"` // Unix ms, bucket start
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
	Trades   int64   `json:"trades"`
}

// IsGap reports whether the bucket saw no ticks at all.
func (c Candle) IsGap() bool {
	return c.Trades == 0
}

func (c Candle) OpenTimeUTC() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}

func (c Candle) TimeString() string {
	if c.OpenTime <= 0 {
		return "-"
	}
	return c.OpenTimeUTC().Format("01-02 15:04") + "Z"
}

type Candles []Candle

// Closes returns the close prices in series order. Gap buckets
// contribute their zero value; indicator callers bridge those first.
func (cs Candles) Closes() []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Last returns the most recent non-gap candle, if any.
func (cs Candles) Last() (Candle, bool) {
	for i := len(cs) - 1; i >= 0; i-- {
		if !cs[i].IsGap() {
			return cs[i], true
		}
	}
	return Candle{}, false
}

// Span returns first and last OpenTime, zero values for an empty series.
func (cs Candles) Span() (first, last int64) {
	if len(cs) == 0 {
		return 0, 0
	}
	return cs[0].OpenTime, cs[len(cs)-1].OpenTime
}

// Gaps counts gap buckets in the series.
func (cs Candles) Gaps() int {
	n := 0
	for _, c := range cs {
		if c.IsGap() {
			n++
		}
	}
	return n
}
