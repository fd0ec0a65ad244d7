// Package enrich combines FX resolution, price lookup, and name resolution
// into per-position computed records.
package enrich

import (
	"context"
	"strings"
	"sync"

	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

// Service implements EnrichmentService. The name cache lives for the
// process and resolves each distinct ticker at most once per session.
type Service struct {
	market interfaces.MarketDataClient
	rates  interfaces.RatesService
	logger *common.Logger

	mu    sync.Mutex
	names map[string]string // ticker -> display name
}

// NewService creates a new enrichment service.
func NewService(market interfaces.MarketDataClient, rates interfaces.RatesService, logger *common.Logger) *Service {
	return &Service{
		market: market,
		rates:  rates,
		logger: logger,
		names:  make(map[string]string),
	}
}

// Enrich resolves live data for every position and computes base-currency
// P/L. Output preserves input order. A position whose price cannot be
// fetched degrades to a stale record (FetchOK=false, cost basis substituted
// as price) rather than aborting the batch.
func (s *Service) Enrich(ctx context.Context, positions []models.Position, baseCurrency string) []models.EnrichedPosition {
	base := strings.ToUpper(baseCurrency)

	// Resolve each distinct currency pair exactly once, no matter how many
	// positions share it.
	fxRates := make(map[string]float64)
	for _, pos := range positions {
		orig := strings.ToUpper(pos.OriginalCurrency)
		if orig == base {
			continue
		}
		if _, done := fxRates[orig]; done {
			continue
		}
		fxRates[orig] = s.rates.Rate(ctx, orig, base)
	}

	enriched := make([]models.EnrichedPosition, 0, len(positions))
	for _, pos := range positions {
		orig := strings.ToUpper(pos.OriginalCurrency)

		price, fetchOK := s.latestPrice(ctx, pos.Ticker)
		if !fetchOK {
			// Cost basis stands in so downstream arithmetic stays defined.
			price = pos.AvgBuyPrice
			s.logger.Warn().Str("ticker", pos.Ticker).Msg("No live price, marking position stale")
		}

		fxRate := 1.0
		if orig != base {
			if rate, ok := fxRates[orig]; ok {
				fxRate = rate
			}
		}

		enriched = append(enriched, models.NewEnrichedPosition(
			pos,
			s.displayName(ctx, pos.Ticker),
			price,
			fetchOK,
			fxRate,
		))
	}

	s.logger.Info().
		Int("positions", len(enriched)).
		Int("fx_pairs", len(fxRates)).
		Str("base", base).
		Msg("Portfolio enriched")

	return enriched
}

// latestPrice resolves an instrument's latest tradable price: recent close
// first, then the alternative quote fields in a fixed order. ok=false is a
// distinct, expected outcome rather than a fault.
func (s *Service) latestPrice(ctx context.Context, ticker string) (float64, bool) {
	closes, err := s.market.GetRecentCloses(ctx, ticker, 2)
	if err == nil && len(closes) > 0 {
		return closes[len(closes)-1], true
	}
	if err != nil {
		s.logger.Debug().Err(err).Str("ticker", ticker).Msg("Close lookup failed, probing quote fields")
	}

	quote, err := s.market.GetQuote(ctx, ticker)
	if err != nil || quote == nil {
		return 0, false
	}
	for _, price := range quote.PriceFields() {
		if price > 0 {
			return price, true
		}
	}
	return 0, false
}

// displayName resolves the company display name once per distinct ticker per
// session, falling back to the ticker string itself.
func (s *Service) displayName(ctx context.Context, ticker string) string {
	s.mu.Lock()
	name, ok := s.names[ticker]
	s.mu.Unlock()
	if ok {
		return name
	}

	name = ticker
	if quote, err := s.market.GetQuote(ctx, ticker); err == nil && quote != nil {
		if resolved := quote.DisplayName(); resolved != "" {
			name = resolved
		}
	}

	s.mu.Lock()
	s.names[ticker] = name
	s.mu.Unlock()
	return name
}

// Ensure Service implements EnrichmentService
var _ interfaces.EnrichmentService = (*Service)(nil)
