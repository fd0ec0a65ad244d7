package models

import (
	"math"
	"testing"
)

func TestNewEnrichedPosition_SameCurrency(t *testing.T) {
	p := Position{Ticker: "AAA", Quantity: 10, AvgBuyPrice: 100, OriginalCurrency: "USD"}
	e := NewEnrichedPosition(p, "Alpha Inc", 110, true, 1.0)

	if e.FXRate != 1.0 {
		t.Errorf("expected fx_rate 1.0, got %v", e.FXRate)
	}
	if e.CostBasisBase != 1000 {
		t.Errorf("expected cost basis 1000, got %v", e.CostBasisBase)
	}
	if e.CurrentValueBase != 1100 {
		t.Errorf("expected current value 1100, got %v", e.CurrentValueBase)
	}
	if e.PLAbs != 100 {
		t.Errorf("expected pl_abs 100, got %v", e.PLAbs)
	}
	if math.Abs(e.PLPct-10.0) > 1e-9 {
		t.Errorf("expected pl_pct 10.0, got %v", e.PLPct)
	}
}

func TestNewEnrichedPosition_ConvertedCurrency(t *testing.T) {
	p := Position{Ticker: "AAA", Quantity: 10, AvgBuyPrice: 100, OriginalCurrency: "usd"}
	e := NewEnrichedPosition(p, "Alpha Inc", 110, true, 0.9)

	if e.AvgBuyPriceBase != 90 {
		t.Errorf("expected avg_buy_price_base 90, got %v", e.AvgBuyPriceBase)
	}
	if e.CostBasisBase != 900 {
		t.Errorf("expected cost_basis_base 900, got %v", e.CostBasisBase)
	}
	if e.CurrentPriceBase != 110*0.9 {
		t.Errorf("expected current_price_base %v, got %v", 110*0.9, e.CurrentPriceBase)
	}
	if e.OriginalCurrency != "USD" {
		t.Errorf("currency code should be upper-cased, got %s", e.OriginalCurrency)
	}
	// Percentage P/L is currency-independent
	if math.Abs(e.PLPct-10.0) > 1e-9 {
		t.Errorf("expected pl_pct 10.0, got %v", e.PLPct)
	}
}

func TestNewEnrichedPosition_DerivedFieldsByConstruction(t *testing.T) {
	cases := []struct {
		qty, avg, price, fx float64
	}{
		{3, 12.5, 14.1, 1.0},
		{0, 50, 42, 0.85},
		{7.5, 0.004, 0.0041, 11.2},
	}
	for _, c := range cases {
		p := Position{Ticker: "X", Quantity: c.qty, AvgBuyPrice: c.avg, OriginalCurrency: "EUR"}
		e := NewEnrichedPosition(p, "X", c.price, true, c.fx)
		if e.CurrentValueBase != e.CurrentPriceBase*c.qty {
			t.Errorf("current_value_base must equal current_price_base*quantity for %+v", c)
		}
		if e.CostBasisBase != e.AvgBuyPriceBase*c.qty {
			t.Errorf("cost_basis_base must equal avg_buy_price_base*quantity for %+v", c)
		}
	}
}

func TestNewEnrichedPosition_ZeroCostBasisHasZeroPLPct(t *testing.T) {
	for _, avg := range []float64{0, -5} {
		p := Position{Ticker: "AAA", Quantity: 10, AvgBuyPrice: avg, OriginalCurrency: "USD"}
		e := NewEnrichedPosition(p, "Alpha", 50, true, 1.0)
		if e.PLPct != 0 {
			t.Errorf("pl_pct must be 0 when avg_buy_price=%v, got %v", avg, e.PLPct)
		}
	}
}

func TestTotals(t *testing.T) {
	enriched := []EnrichedPosition{
		NewEnrichedPosition(Position{Ticker: "A", Quantity: 10, AvgBuyPrice: 100, OriginalCurrency: "USD"}, "A", 110, true, 1.0),
		NewEnrichedPosition(Position{Ticker: "B", Quantity: 2, AvgBuyPrice: 50, OriginalCurrency: "USD"}, "B", 40, true, 1.0),
	}
	totals := Totals(enriched)

	if totals.Positions != 2 {
		t.Errorf("expected 2 positions, got %d", totals.Positions)
	}
	if totals.Value != 1100+80 {
		t.Errorf("expected total value 1180, got %v", totals.Value)
	}
	if totals.PL != 100-20 {
		t.Errorf("expected total pl 80, got %v", totals.PL)
	}
}
