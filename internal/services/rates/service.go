// Package rates resolves cross-currency conversion factors with a
// session-lifetime cache and graceful degradation.
package rates

import (
	"context"
	"strings"
	"sync"

	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
)

// Service implements RatesService. The cache holds the last successfully
// observed rate per forward pair for the life of the process and is read as
// the last resort when both lookup directions fail.
type Service struct {
	market interfaces.MarketDataClient
	logger *common.Logger

	mu    sync.Mutex
	cache map[string]float64 // forward pair key, e.g. "USDSEK"
}

// NewService creates a new rates service.
func NewService(market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		market: market,
		logger: logger,
		cache:  make(map[string]float64),
	}
}

// Rate returns how many `to` units equal one `from` unit. It never fails
// outward: on total lookup failure it returns the cached rate for the pair,
// or 1.0 if the pair was never resolved. A plausible stale or neutral rate
// is preferred over blocking enrichment.
func (s *Service) Rate(ctx context.Context, from, to string) float64 {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return 1.0
	}

	key := from + to

	if rate, ok := s.lookupClose(ctx, key); ok {
		s.store(key, rate)
		return rate
	}

	// Inverse pair, inverted. Cached under the forward key.
	if inverse, ok := s.lookupClose(ctx, to+from); ok && inverse != 0 {
		rate := 1.0 / inverse
		s.store(key, rate)
		return rate
	}

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		s.logger.Warn().Str("pair", key).Float64("rate", cached).Msg("FX lookup failed, using cached rate")
		return cached
	}

	s.logger.Warn().Str("pair", key).Msg("FX lookup failed with no cached rate, using 1.0")
	return 1.0
}

// lookupClose fetches the latest close for an FX pair symbol.
func (s *Service) lookupClose(ctx context.Context, pair string) (float64, bool) {
	closes, err := s.market.GetRecentCloses(ctx, pair+"=X", 2)
	if err != nil {
		s.logger.Debug().Err(err).Str("pair", pair).Msg("FX close lookup failed")
		return 0, false
	}
	if len(closes) == 0 {
		return 0, false
	}
	return closes[len(closes)-1], true
}

func (s *Service) store(key string, rate float64) {
	s.mu.Lock()
	s.cache[key] = rate
	s.mu.Unlock()
}

// CachedRate returns the cached rate for a pair, if present. Used by tests.
func (s *Service) CachedRate(from, to string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rate, ok := s.cache[strings.ToUpper(from)+strings.ToUpper(to)]
	return rate, ok
}

// Ensure Service implements RatesService
var _ interfaces.RatesService = (*Service)(nil)
