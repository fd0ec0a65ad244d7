package advisor

import (
	"fmt"
	"strings"

	"github.com/mmilger/optifolio/internal/models"
)

// BuildSituationReport renders the deterministic portfolio snapshot handed to
// the model as its sole factual grounding. Identical inputs always produce an
// identical report.
func (s *Service) BuildSituationReport(enriched []models.EnrichedPosition, prefs models.Preferences, budget float64, baseCurrency string) string {
	return BuildReport(enriched, prefs, budget, baseCurrency)
}

// BuildReport is the report renderer itself. It needs no model access, so it
// is usable even when no AI client is configured.
func BuildReport(enriched []models.EnrichedPosition, prefs models.Preferences, budget float64, baseCurrency string) string {
	base := strings.ToUpper(baseCurrency)
	totals := models.Totals(enriched)

	var holdings strings.Builder
	if len(enriched) == 0 {
		holdings.WriteString("  (No current holdings - fresh start)")
	} else {
		for i, p := range enriched {
			if i > 0 {
				holdings.WriteString("\n")
			}
			name := p.CompanyName
			if name == "" {
				name = p.Ticker
			}
			stale := ""
			if !p.FetchOK {
				stale = " [STALE - no live price]"
			}
			fmt.Fprintf(&holdings,
				"  * %s (%s)  qty=%.4f  avg_cost=%.4f %s  price=%.4f %s  value=%s %s  P/L=%+.2f%% (%s %s)%s",
				name, p.Ticker,
				p.Quantity,
				p.AvgBuyPrice, p.OriginalCurrency,
				p.CurrentPriceBase, base,
				formatAmount(p.CurrentValueBase), base,
				p.PLPct, formatSigned(p.PLAbs), base,
				stale,
			)
		}
	}

	budgetLine := "  Additional cash budget: none (rebalance within existing holdings only)"
	if budget > 0 {
		budgetLine = fmt.Sprintf("  Additional cash budget: %s %s (available for new purchases)", formatAmount(budget), base)
	}

	return fmt.Sprintf(`PORTFOLIO SNAPSHOT
==================
Risk Profile      : %s
Target Industries : %s
Target Countries  : %s
Target Asset Types: %s
Base Currency     : %s

CURRENT HOLDINGS (%d position(s)):
%s

SUMMARY:
  Total Portfolio Value : %s %s
  Total Unrealised P/L  : %s %s

BUDGET:
%s`,
		orDefault(prefs.RiskProfile, "Moderate"),
		orDefault(prefs.Industries, "No preference"),
		orDefault(prefs.Countries, "No preference"),
		orDefault(prefs.AssetTypes, "No preference"),
		base,
		totals.Positions,
		holdings.String(),
		formatAmount(totals.Value), base,
		formatSigned(totals.PL), base,
		budgetLine,
	)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// formatAmount renders a monetary amount with thousands separators and two
// decimals, e.g. 1234567.5 -> "1,234,567.50".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var sb strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}

	out := sb.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// formatSigned is formatAmount with an explicit leading sign.
func formatSigned(v float64) string {
	if v >= 0 {
		return "+" + formatAmount(v)
	}
	return formatAmount(v)
}
