// Package advisor is the AI-orchestration layer: situation reports,
// recommendation generation, screenshot extraction, and follow-up chat, all
// routed through a shared model-fallback policy.
package advisor

import (
	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
)

// Service implements AdvisorService.
type Service struct {
	genai  interfaces.GenAIClient
	pool   []string
	logger *common.Logger
}

// NewService creates a new advisor service. modelPool is the ordered
// fallback pool; the preferred model of each request is tried first.
func NewService(genai interfaces.GenAIClient, modelPool []string, logger *common.Logger) *Service {
	return &Service{
		genai:  genai,
		pool:   modelPool,
		logger: logger,
	}
}

// Ensure Service implements AdvisorService
var _ interfaces.AdvisorService = (*Service)(nil)
