package models

import "encoding/json"

// ScannedPosition is one element of the JSON array returned by the image
// extraction prompt. Fields other than the ticker may be null; null handling
// is the caller's responsibility.
type ScannedPosition struct {
	Ticker           string   `json:"ticker"`
	Quantity         *float64 `json:"quantity"`
	AvgBuyPrice      *float64 `json:"avg_buy_price"`
	OriginalCurrency *string  `json:"original_currency"`
}

// UnmarshalJSON accepts "currency" as an alias for "original_currency",
// which some models use despite the prompt.
func (p *ScannedPosition) UnmarshalJSON(data []byte) error {
	type alias ScannedPosition
	var raw struct {
		alias
		Currency *string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ScannedPosition(raw.alias)
	if p.OriginalCurrency == nil {
		p.OriginalCurrency = raw.Currency
	}
	return nil
}

// ToPosition converts a scanned position into a raw Position, with zero
// values standing in for null fields.
func (p ScannedPosition) ToPosition() Position {
	pos := Position{Ticker: p.Ticker}
	if p.Quantity != nil {
		pos.Quantity = *p.Quantity
	}
	if p.AvgBuyPrice != nil {
		pos.AvgBuyPrice = *p.AvgBuyPrice
	}
	if p.OriginalCurrency != nil {
		pos.OriginalCurrency = *p.OriginalCurrency
	}
	return pos
}

// ScanResult is the tagged outcome of an image extraction: either a parsed
// position list, or a malformed reply whose raw text is preserved for
// diagnosis. The raw model text is never silently dropped.
type ScanResult struct {
	Positions []ScannedPosition `json:"positions"`
	Raw       string            `json:"raw"`
	Malformed bool              `json:"malformed"`
	Model     string            `json:"model,omitempty"` // model that produced the reply
	Fallback  bool              `json:"fallback,omitempty"`
}
