package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

// Recommend builds the situation report and system instruction, dispatches
// across the model pool, and returns the recommendation text. Pool
// exhaustion is a displayable outcome returned as text; only a fatal
// provider error comes back as an error.
func (s *Service) Recommend(ctx context.Context, req interfaces.RecommendRequest) (string, error) {
	report := s.BuildSituationReport(req.Enriched, req.Preferences, req.Budget, req.BaseCurrency)
	instruction := buildSystemInstruction(req.Preferences, req.BaseCurrency, req.SuggestNew, len(req.Enriched))

	result, err := s.dispatch(ctx, req.PreferredModel, func(ctx context.Context, model string) (string, error) {
		return s.genai.Generate(ctx, model, models.GenerateRequest{
			Prompt:            report,
			SystemInstruction: instruction,
		})
	})
	if err != nil {
		var exhausted *models.ExhaustedError
		if errors.As(err, &exhausted) {
			s.logger.Warn().Int("models", len(exhausted.Attempts)).Msg("Recommendation pool exhausted")
			return exhausted.Report(), nil
		}
		return "", err
	}

	// Post-hoc quality gate: the model's text is free-form, so constraint
	// violations are logged rather than blocking the response.
	for _, warning := range ValidateRecommendation(result.Text, req.Budget) {
		s.logger.Warn().Str("model", result.Model).Str("issue", warning).Msg("Recommendation constraint violation")
	}

	text := result.Text
	if result.Fallback {
		text += fmt.Sprintf("\n\n---\nFallback model used: %s", result.Model)
	}
	return text, nil
}

// buildSystemInstruction embeds the hard numeric constraints the response
// must satisfy: action vocabulary, sell/buy pairing, share and cash
// discipline, the aggregate cash-flow bound, and the fixed section order.
func buildSystemInstruction(prefs models.Preferences, baseCurrency string, suggestNew bool, numPositions int) string {
	base := strings.ToUpper(baseCurrency)

	var sb strings.Builder
	sb.WriteString("You are a financial analyst. ")
	fmt.Fprintf(&sb, "The investor's risk profile is %s. ", orDefault(prefs.RiskProfile, "Moderate"))
	if strings.TrimSpace(prefs.Countries) != "" {
		fmt.Fprintf(&sb, "Prefer instruments listed or headquartered in: %s. ", prefs.Countries)
	}
	if strings.TrimSpace(prefs.AssetTypes) != "" {
		fmt.Fprintf(&sb, "Preferred asset types: %s. ", prefs.AssetTypes)
	}

	sb.WriteString(
		"Use ONLY the signals SELL, BUY, and HOLD - never 'add', 'reduce', or any other word. " +
			"Be balanced: default to HOLD unless there is a concrete, specific reason to act. " +
			"Every SELL must be paired with a BUY of a DIFFERENT instrument funded by its proceeds; never sell and rebuy the same ticker. " +
			"Every SELL and BUY line must state a whole number of shares, the unit price, and the total cash amount, formatted exactly as:\n" +
			"SELL 12 x Full Company Name (TICKER) @ 101.50 = 1218.00 - one-line reason\n" +
			"BUY 5 x Full Company Name (TICKER) @ 240.00 = 1200.00 - one-line reason\n" +
			"HOLD lines carry no numbers and no reason: HOLD Full Company Name (TICKER)\n" +
			"Total BUY cost must not exceed total SELL proceeds plus the stated cash budget. ",
	)

	if numPositions == 0 {
		sb.WriteString(
			"The portfolio is empty - propose 3-5 starter instruments that fit the target industries " +
				"and can be purchased within the stated budget, as BUY lines with the same share/price/cost discipline. ",
		)
	} else if suggestNew {
		sb.WriteString(
			"Also propose 2-3 NEW instruments not currently held that fit the target industries " +
				"and can be purchased within the stated budget, as BUY lines with the same share/price/cost discipline. ",
		)
	}

	sb.WriteString(
		"End your response with exactly this block, sections in this exact order: " +
			"all SELL lines first, then all BUY lines, then all HOLD lines, then a cash-flow summary, then one concise rationale paragraph. " +
			"Use the full company name exactly as in the holdings data.\n\n" +
			"MY RECOMMENDATION\n" +
			"-----------------\n" +
			"SELL ...\n" +
			"BUY ...\n" +
			"HOLD ...\n\n" +
			"CASH FLOW SUMMARY\n" +
			"Total sell proceeds: <amount>\n" +
			"Total buy cost: <amount>\n" +
			"Net remaining: <amount>\n\n" +
			"[One concise paragraph: overall strategic rationale and key risk]\n\n" +
			"Net remaining must never be negative. No introductions, no disclaimers, no fluff. " +
			"Target industries are a soft preference. ",
	)
	fmt.Fprintf(&sb, "All prices in %s.", base)

	return sb.String()
}
