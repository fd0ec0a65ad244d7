// Package models defines data structures for Optifolio
package models

import "strings"

// Position is a raw portfolio holding as entered by the user or extracted
// from a screenshot. Immutable once handed to enrichment for a run.
type Position struct {
	Ticker           string  `json:"ticker"`
	Quantity         float64 `json:"quantity"`
	AvgBuyPrice      float64 `json:"avg_buy_price"`
	OriginalCurrency string  `json:"original_currency"`
}

// EnrichedPosition is a Position with live market data and P/L computed in
// the base currency. FetchOK=false marks a stale record where the cost basis
// substitutes for the live price.
type EnrichedPosition struct {
	Position

	CompanyName      string  `json:"company_name"`
	CurrentPrice     float64 `json:"current_price"`      // native currency
	CurrentPriceBase float64 `json:"current_price_base"` // converted via FXRate
	AvgBuyPriceBase  float64 `json:"avg_buy_price_base"`
	CurrentValueBase float64 `json:"current_value_base"`
	CostBasisBase    float64 `json:"cost_basis_base"`
	PLAbs            float64 `json:"pl_abs"`
	PLPct            float64 `json:"pl_pct"`
	FXRate           float64 `json:"fx_rate"`
	FetchOK          bool    `json:"fetch_ok"`
}

// NewEnrichedPosition computes all derived fields for a position given its
// resolved display name, native price, and conversion rate. When fetchOK is
// false the caller passes the cost basis as price so downstream arithmetic
// stays well-defined.
func NewEnrichedPosition(p Position, companyName string, currentPrice float64, fetchOK bool, fxRate float64) EnrichedPosition {
	e := EnrichedPosition{
		Position:     p,
		CompanyName:  companyName,
		CurrentPrice: currentPrice,
		FXRate:       fxRate,
		FetchOK:      fetchOK,
	}
	e.Position.OriginalCurrency = strings.ToUpper(p.OriginalCurrency)

	e.CurrentPriceBase = currentPrice * fxRate
	e.AvgBuyPriceBase = p.AvgBuyPrice * fxRate
	e.CurrentValueBase = e.CurrentPriceBase * p.Quantity
	e.CostBasisBase = e.AvgBuyPriceBase * p.Quantity
	e.PLAbs = e.CurrentValueBase - e.CostBasisBase

	// Guard the percentage against a zero or negative cost basis.
	if p.AvgBuyPrice > 0 {
		e.PLPct = ((currentPrice - p.AvgBuyPrice) / p.AvgBuyPrice) * 100.0
	}

	return e
}

// PortfolioTotals aggregates enriched positions for the situation report.
type PortfolioTotals struct {
	Value     float64 `json:"value"`
	PL        float64 `json:"pl"`
	Positions int     `json:"positions"`
}

// Totals sums current value and unrealised P/L across enriched positions.
func Totals(enriched []EnrichedPosition) PortfolioTotals {
	t := PortfolioTotals{Positions: len(enriched)}
	for _, e := range enriched {
		t.Value += e.CurrentValueBase
		t.PL += e.PLAbs
	}
	return t
}

// Preferences captures the user's soft constraints for the recommendation.
type Preferences struct {
	Industries  string `json:"industries"`
	Countries   string `json:"countries"`
	AssetTypes  string `json:"asset_types"`
	RiskProfile string `json:"risk_profile"`
}
