// Package interfaces defines client and service contracts for Optifolio
package interfaces

import (
	"context"

	"github.com/mmilger/optifolio/internal/models"
)

// MarketDataClient provides best-effort access to the market-data provider.
// Empty or partial data is an expected outcome, not an error.
type MarketDataClient interface {
	// GetRecentCloses retrieves daily closing prices for a symbol covering
	// roughly the last `days` calendar days, oldest first. FX pairs use the
	// "FROMTO=X" symbol convention.
	GetRecentCloses(ctx context.Context, symbol string, days int) ([]float64, error)

	// GetQuote retrieves the instrument metadata bag (display names and
	// alternative price fields).
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// GenAIClient provides access to the generative-AI provider. Failures are
// returned as *models.ProviderError with the transient/fatal classification
// decided at this boundary.
type GenAIClient interface {
	// Generate runs one generation request against the named model.
	Generate(ctx context.Context, model string, req models.GenerateRequest) (string, error)

	// ListModels returns the model names available to the configured API key
	// that support content generation. Doubles as the credential probe.
	ListModels(ctx context.Context) ([]string, error)
}
