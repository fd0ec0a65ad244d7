package interfaces

import (
	"context"

	"github.com/mmilger/optifolio/internal/models"
)

// RatesService resolves cross-currency conversion factors. Rate never fails
// outward: it degrades to a cached or neutral rate rather than aborting the
// caller.
type RatesService interface {
	Rate(ctx context.Context, from, to string) float64
}

// EnrichmentService combines FX resolution, price lookup, and name resolution
// into per-position computed records.
type EnrichmentService interface {
	// Enrich resolves live data for every position, preserving input order.
	// A single bad position degrades to a stale record; it never aborts the
	// batch.
	Enrich(ctx context.Context, positions []models.Position, baseCurrency string) []models.EnrichedPosition
}

// RecommendRequest carries the inputs of one recommendation run.
type RecommendRequest struct {
	Enriched       []models.EnrichedPosition
	Preferences    models.Preferences
	Budget         float64
	BaseCurrency   string
	SuggestNew     bool
	PreferredModel string
}

// ChatRequest carries one follow-up exchange about an earlier recommendation.
type ChatRequest struct {
	SituationReport       string
	InitialRecommendation string
	History               []models.ConversationTurn
	Message               string
	PreferredModel        string
}

// AdvisorService is the AI-orchestration layer: situation reports,
// recommendations, screenshot extraction, and follow-up chat, all dispatched
// through the shared model-fallback policy.
type AdvisorService interface {
	// BuildSituationReport renders the deterministic text snapshot handed to
	// the model as its sole factual grounding.
	BuildSituationReport(enriched []models.EnrichedPosition, prefs models.Preferences, budget float64, baseCurrency string) string

	// Recommend returns the model's recommendation text. Pool exhaustion is a
	// displayable outcome returned as text; only fatal provider errors are
	// returned as errors.
	Recommend(ctx context.Context, req RecommendRequest) (string, error)

	// ScanImage extracts positions from a portfolio screenshot.
	ScanImage(ctx context.Context, image models.ImageData, preferredModel string) (*models.ScanResult, error)

	// Chat continues the conversation about an earlier recommendation.
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
