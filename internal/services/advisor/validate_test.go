package advisor

import (
	"strings"
	"testing"
)

const cleanRecommendation = `MY RECOMMENDATION
-----------------
SELL 10 x Alpha Inc (AAA) @ 110.00 = 1100.00 - concentration too high
BUY 4 x Beta AB (BBB.ST) @ 250.00 = 1000.00 - adds mining exposure
HOLD Gamma Corp (GGG)

CASH FLOW SUMMARY
Total sell proceeds: 1100.00
Total buy cost: 1000.00
Net remaining: 100.00

Overall the portfolio shifts toward materials while keeping cash positive.`

func TestValidateRecommendation_CleanPasses(t *testing.T) {
	if warnings := ValidateRecommendation(cleanRecommendation, 0); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestValidateRecommendation_FractionalShares(t *testing.T) {
	text := "SELL 10.5 x Alpha Inc (AAA) @ 100.00 = 1050.00 - trim\nNet remaining: 1050.00"
	warnings := ValidateRecommendation(text, 0)
	if !containsWarning(warnings, "not a whole number") {
		t.Errorf("expected whole-number warning, got %v", warnings)
	}
}

func TestValidateRecommendation_LineArithmetic(t *testing.T) {
	text := "BUY 3 x Alpha Inc (AAA) @ 100.00 = 350.00 - off by fifty\nNet remaining: 0.00"
	warnings := ValidateRecommendation(text, 1000)
	if !containsWarning(warnings, "line states") {
		t.Errorf("expected arithmetic warning, got %v", warnings)
	}
}

func TestValidateRecommendation_WashRebuy(t *testing.T) {
	text := `SELL 10 x Alpha Inc (AAA) @ 100.00 = 1000.00 - trim
BUY 10 x Alpha Inc (AAA) @ 100.00 = 1000.00 - rebuy
Net remaining: 0.00`
	warnings := ValidateRecommendation(text, 0)
	if !containsWarning(warnings, "rebuys") {
		t.Errorf("expected wash-rebuy warning, got %v", warnings)
	}
}

func TestValidateRecommendation_SectionOrder(t *testing.T) {
	text := `BUY 4 x Beta AB (BBB.ST) @ 250.00 = 1000.00 - early buy
SELL 10 x Alpha Inc (AAA) @ 110.00 = 1100.00 - late sell
Net remaining: 100.00`
	warnings := ValidateRecommendation(text, 0)
	if !containsWarning(warnings, "section order") {
		t.Errorf("expected section-order warning, got %v", warnings)
	}
}

func TestValidateRecommendation_BudgetViolation(t *testing.T) {
	text := `SELL 1 x Alpha Inc (AAA) @ 100.00 = 100.00 - small trim
BUY 10 x Beta AB (BBB.ST) @ 250.00 = 2500.00 - way over
Net remaining: -2400.00`
	warnings := ValidateRecommendation(text, 100)
	if !containsWarning(warnings, "cash-flow constraint violated") {
		t.Errorf("expected budget warning, got %v", warnings)
	}
	if !containsWarning(warnings, "negative") {
		t.Errorf("expected negative net-remaining warning, got %v", warnings)
	}
}

func TestValidateRecommendation_MissingSummary(t *testing.T) {
	text := "SELL 10 x Alpha Inc (AAA) @ 110.00 = 1100.00 - trim"
	warnings := ValidateRecommendation(text, 0)
	if !containsWarning(warnings, "net-remaining") {
		t.Errorf("expected missing-summary warning, got %v", warnings)
	}
}

func TestValidateRecommendation_HoldOnlyTextIsClean(t *testing.T) {
	text := "HOLD Alpha Inc (AAA)\nHOLD Beta AB (BBB.ST)\n\nNothing to do this cycle."
	if warnings := ValidateRecommendation(text, 0); len(warnings) != 0 {
		t.Errorf("hold-only text needs no cash summary, got %v", warnings)
	}
}

func containsWarning(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestParseActions_ParenthesizedName(t *testing.T) {
	text := `SELL 2 x Alphabet (Class A) (GOOGL) @ 100.00 = 200.00 - trim
BUY 1 x Berkshire Hathaway (Class B) (BRK-B) @ 200.00 = 200.00 - value
Net remaining: 0.00`
	actions := parseActions(text)
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d: %v", len(actions), actions)
	}
	if actions[0].Ticker != "GOOGL" {
		t.Errorf("expected ticker GOOGL, got %q", actions[0].Ticker)
	}
	if actions[1].Ticker != "BRK-B" {
		t.Errorf("expected ticker BRK-B, got %q", actions[1].Ticker)
	}
	if warnings := ValidateRecommendation(text, 0); containsWarning(warnings, "rebuys") {
		t.Errorf("distinct tickers should not flag a rebuy, got %v", warnings)
	}
}

func TestValidateRecommendation_WashRebuyParenthesizedName(t *testing.T) {
	text := `SELL 5 x Alphabet (Class A) (GOOGL) @ 100.00 = 500.00 - trim
BUY 5 x Alphabet (Class A) (GOOGL) @ 100.00 = 500.00 - rebuy
Net remaining: 0.00`
	warnings := ValidateRecommendation(text, 0)
	if !containsWarning(warnings, "rebuys") {
		t.Errorf("expected wash-rebuy warning, got %v", warnings)
	}
}
