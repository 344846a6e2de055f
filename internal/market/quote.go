package market

// Quote is a spot snapshot for one crypto market, the shape the price
// table prints: last trade, signed 24h change, volume and day range.
type Quote struct {
	Symbol     string  `json:"symbol"`
	TradePrice float64 `json:"trade_price"`
	ChangeRate float64 `json:"change_rate"` // signed, fraction (0.012 = +1.2%)
	Volume     float64 `json:"volume"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
}

// StockQuote is the equity equivalent, built from the latest daily
// candle: open of the session, last close, and the intraday range.
type StockQuote struct {
	Symbol     string  `json:"symbol"`
	Open       float64 `json:"open"`
	Close      float64 `json:"close"`
	ChangeRate float64 `json:"change_rate"` // (close-open)/open, fraction
	Volume     float64 `json:"volume"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
}
