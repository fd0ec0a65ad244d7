package advisor

import (
	"strings"
	"testing"

	"github.com/mmilger/optifolio/internal/models"
)

func sampleEnriched() []models.EnrichedPosition {
	return []models.EnrichedPosition{
		models.NewEnrichedPosition(
			models.Position{Ticker: "AAA", Quantity: 10, AvgBuyPrice: 100, OriginalCurrency: "USD"},
			"Alpha Inc", 110, true, 1.0,
		),
		models.NewEnrichedPosition(
			models.Position{Ticker: "BBB.ST", Quantity: 4, AvgBuyPrice: 250, OriginalCurrency: "SEK"},
			"Beta AB", 250, false, 1.0,
		),
	}
}

func TestBuildSituationReport_Deterministic(t *testing.T) {
	svc := newTestService(newMockGenAI())
	prefs := models.Preferences{RiskProfile: "Aggressive", Industries: "Tech"}

	first := svc.BuildSituationReport(sampleEnriched(), prefs, 5000, "USD")
	second := svc.BuildSituationReport(sampleEnriched(), prefs, 5000, "USD")
	if first != second {
		t.Error("identical inputs must render an identical report")
	}
}

func TestBuildSituationReport_Content(t *testing.T) {
	svc := newTestService(newMockGenAI())
	report := svc.BuildSituationReport(sampleEnriched(), models.Preferences{Industries: "Mining"}, 5000, "usd")

	for _, want := range []string{
		"PORTFOLIO SNAPSHOT",
		"Risk Profile      : Moderate", // default
		"Target Industries : Mining",
		"Base Currency     : USD",
		"CURRENT HOLDINGS (2 position(s)):",
		"Alpha Inc (AAA)",
		"value=1,100.00 USD",
		"P/L=+10.00% (+100.00 USD)",
		"Beta AB (BBB.ST)",
		"[STALE - no live price]",
		"Total Portfolio Value : 2,100.00 USD",
		"Additional cash budget: 5,000.00 USD",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestBuildSituationReport_EmptyPortfolio(t *testing.T) {
	svc := newTestService(newMockGenAI())
	report := svc.BuildSituationReport(nil, models.Preferences{}, 0, "SEK")

	if !strings.Contains(report, "(No current holdings - fresh start)") {
		t.Errorf("missing fresh-start marker:\n%s", report)
	}
	if !strings.Contains(report, "Additional cash budget: none (rebalance within existing holdings only)") {
		t.Errorf("missing zero-budget line:\n%s", report)
	}
	if !strings.Contains(report, "CURRENT HOLDINGS (0 position(s)):") {
		t.Errorf("missing position count:\n%s", report)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.994, "999.99"},
		{1000, "1,000.00"},
		{1234567.5, "1,234,567.50"},
		{-42000.129, "-42,000.13"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	if got := formatSigned(80); got != "+80.00" {
		t.Errorf("formatSigned(80) = %q", got)
	}
	if got := formatSigned(-80); got != "-80.00" {
		t.Errorf("formatSigned(-80) = %q", got)
	}
}
