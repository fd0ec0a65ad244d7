package advisor

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mmilger/optifolio/internal/models"
)

// scanPrompt instructs the model to extract holdings from a screenshot as a
// bare JSON array with provider-compatible ticker suffixes.
const scanPrompt = `Extract every stock / ETF / fund position visible in this portfolio screenshot. ` +
	`Return ONLY a valid JSON array - no markdown, no explanation. ` +
	`Each element must have exactly these keys:
  "ticker"            : string - the full ticker including exchange suffix (see rules below)
  "quantity"          : number - shares / units held
  "avg_buy_price"     : number - average purchase price
  "original_currency" : string - 3-letter currency code (e.g. "USD", "SEK")
Use null for any field you cannot determine with confidence.

CRITICAL - ticker exchange suffix rules:
First, identify the market/exchange from the screenshot context (currency, broker name, flag, country label).
Then append the correct suffix:
  Sweden (SEK, Nasdaq Stockholm) -> .ST   e.g. LUG -> LUG.ST, ERIC-B -> ERIC-B.ST
  Norway (NOK, Oslo Bors)        -> .OL   e.g. EQNR -> EQNR.OL
  Denmark (DKK, Nasdaq CPH)      -> .CO   e.g. NOVO-B -> NOVO-B.CO
  Finland (EUR, Nasdaq Helsinki) -> .HE
  Germany (XETRA)                -> .DE   e.g. SAP -> SAP.DE
  UK (LSE, GBP)                  -> .L    e.g. SHEL -> SHEL.L
  France (Euronext Paris)        -> .PA
  Netherlands (Euronext AMS)     -> .AS
  Canada (TSX)                   -> .TO
  Australia (ASX)                -> .AX
  Hong Kong (HKEX)               -> .HK
  Japan (TSE)                    -> .T
  USA (NYSE / Nasdaq)            -> no suffix  e.g. AAPL, MSFT, TSLA
If the screenshot mixes markets, infer per-position from its currency or any visible exchange label.
If truly uncertain, use no suffix but prefer making an educated guess over returning a bare symbol.`

// codeFence matches an optional markdown fence wrapping the JSON reply.
var codeFence = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ScanImage sends the extraction prompt plus image through the fallback
// policy and parses the JSON array reply. A reply that is not valid JSON
// yields a Malformed result with the raw text preserved; it is never
// silently discarded.
func (s *Service) ScanImage(ctx context.Context, image models.ImageData, preferredModel string) (*models.ScanResult, error) {
	result, err := s.dispatch(ctx, preferredModel, func(ctx context.Context, model string) (string, error) {
		return s.genai.Generate(ctx, model, models.GenerateRequest{
			Prompt: scanPrompt,
			Image:  &image,
		})
	})
	if err != nil {
		return nil, err
	}

	scan := parseScanReply(result.Text)
	scan.Model = result.Model
	scan.Fallback = result.Fallback

	s.logger.Info().
		Str("model", result.Model).
		Int("positions", len(scan.Positions)).
		Bool("malformed", scan.Malformed).
		Msg("Portfolio image scanned")

	return scan, nil
}

// parseScanReply strips an optional code fence, decodes the JSON array, and
// drops elements without a ticker. All other fields pass through even when
// null.
func parseScanReply(raw string) *models.ScanResult {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var positions []models.ScannedPosition
	if err := json.Unmarshal([]byte(text), &positions); err != nil {
		return &models.ScanResult{Raw: raw, Malformed: true}
	}

	valid := make([]models.ScannedPosition, 0, len(positions))
	for _, p := range positions {
		if strings.TrimSpace(p.Ticker) == "" {
			continue
		}
		valid = append(valid, p)
	}

	return &models.ScanResult{Positions: valid, Raw: raw}
}
