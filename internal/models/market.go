package models

// Quote is the best-effort metadata bag returned by the market-data
// collaborator for one symbol. Any field may be empty or zero; callers probe
// the price fields in a fixed order.
type Quote struct {
	Symbol             string  `json:"symbol"`
	ShortName          string  `json:"short_name"`
	LongName           string  `json:"long_name"`
	Currency           string  `json:"currency"`
	CurrentPrice       float64 `json:"current_price"`
	RegularMarketPrice float64 `json:"regular_market_price"`
	NAVPrice           float64 `json:"nav_price"`
	PreviousClose      float64 `json:"previous_close"`
}

// DisplayName resolves the human-readable instrument name, preferring the
// short name, then the long name, then nothing.
func (q *Quote) DisplayName() string {
	if q.ShortName != "" {
		return q.ShortName
	}
	return q.LongName
}

// PriceFields returns the alternative "current price" fields in probe order.
func (q *Quote) PriceFields() []float64 {
	return []float64{q.CurrentPrice, q.RegularMarketPrice, q.NAVPrice, q.PreviousClose}
}
