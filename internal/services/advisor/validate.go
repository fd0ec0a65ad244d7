package advisor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// actionLine matches one SELL/BUY line of the recommendation contract:
// "SELL 12 x Full Company Name (TICKER) @ 101.50 = 1218.00 - reason".
// The name match is greedy so the ticker is the last parenthesized token
// before the @ sign, even when the name itself contains parentheses.
var actionLine = regexp.MustCompile(`(?im)^\s*(SELL|BUY)\s+([\d.]+)\s*x\s+.+\(([^()]+)\)\s*@\s*([\d,]+(?:\.\d+)?)\s*=\s*([\d,]+(?:\.\d+)?)`)

var holdLine = regexp.MustCompile(`(?im)^\s*HOLD\s+`)

var netRemainingLine = regexp.MustCompile(`(?im)^\s*Net remaining\s*:?\s*(-?[\d,]+(?:\.\d+)?)`)

// tradeAction is one parsed SELL or BUY line.
type tradeAction struct {
	Verb   string
	Shares float64
	Ticker string
	Price  float64
	Total  float64
	Offset int // byte offset of the line within the text, for ordering checks
}

// parseActions extracts all SELL/BUY lines from a recommendation.
func parseActions(text string) []tradeAction {
	matches := actionLine.FindAllStringSubmatchIndex(text, -1)
	actions := make([]tradeAction, 0, len(matches))
	for _, m := range matches {
		sub := func(i int) string { return text[m[2*i]:m[2*i+1]] }
		shares, err1 := strconv.ParseFloat(sub(2), 64)
		price, err2 := parseAmount(sub(4))
		total, err3 := parseAmount(sub(5))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		actions = append(actions, tradeAction{
			Verb:   strings.ToUpper(sub(1)),
			Shares: shares,
			Ticker: strings.TrimSpace(sub(3)),
			Price:  price,
			Total:  total,
			Offset: m[0],
		})
	}
	return actions
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// ValidateRecommendation checks the AI's free-form response against the
// numeric constraints embedded in the prompt and returns one warning per
// violation. An empty slice means no violations were detected. This is a
// quality gate, not a runtime guard: callers log the warnings and return the
// text unchanged.
func ValidateRecommendation(text string, budget float64) []string {
	var warnings []string
	actions := parseActions(text)

	var sellProceeds, buyCost float64
	sellTickers := make(map[string]bool)
	lastSell, firstBuy := -1, math.MaxInt

	for _, a := range actions {
		if a.Shares != math.Trunc(a.Shares) {
			warnings = append(warnings, fmt.Sprintf("%s %s: share count %.4f is not a whole number", a.Verb, a.Ticker, a.Shares))
		}
		if expected := a.Shares * a.Price; !amountsClose(expected, a.Total) {
			warnings = append(warnings, fmt.Sprintf("%s %s: %.0f x %.2f = %.2f but line states %.2f", a.Verb, a.Ticker, a.Shares, a.Price, expected, a.Total))
		}

		switch a.Verb {
		case "SELL":
			sellProceeds += a.Total
			sellTickers[a.Ticker] = true
			if a.Offset > lastSell {
				lastSell = a.Offset
			}
		case "BUY":
			buyCost += a.Total
			if a.Offset < firstBuy {
				firstBuy = a.Offset
			}
			if sellTickers[a.Ticker] {
				warnings = append(warnings, fmt.Sprintf("BUY %s rebuys a ticker sold in the same recommendation", a.Ticker))
			}
		}
	}

	if lastSell >= 0 && firstBuy < lastSell {
		warnings = append(warnings, "section order violated: a BUY line appears before the last SELL line")
	}

	if hold := holdLine.FindStringIndex(text); hold != nil && len(actions) > 0 {
		last := actions[len(actions)-1]
		if hold[0] < last.Offset {
			warnings = append(warnings, "section order violated: a HOLD line appears before a SELL/BUY line")
		}
	}

	if buyCost > sellProceeds+budget && !amountsClose(buyCost, sellProceeds+budget) {
		warnings = append(warnings, fmt.Sprintf("cash-flow constraint violated: buys %.2f exceed sells %.2f + budget %.2f", buyCost, sellProceeds, budget))
	}

	if len(actions) > 0 {
		if m := netRemainingLine.FindStringSubmatch(text); m == nil {
			warnings = append(warnings, "cash-flow summary missing a net-remaining figure")
		} else if net, err := parseAmount(m[1]); err == nil && net < 0 {
			warnings = append(warnings, fmt.Sprintf("net remaining cash is negative: %.2f", net))
		}
	}

	return warnings
}

// amountsClose tolerates rounding noise in model arithmetic: half a unit or
// 1%, whichever is larger.
func amountsClose(a, b float64) bool {
	diff := math.Abs(a - b)
	return diff <= 0.5 || diff <= 0.01*math.Max(math.Abs(a), math.Abs(b))
}
