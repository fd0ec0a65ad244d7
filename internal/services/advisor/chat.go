package advisor

import (
	"context"
	"errors"

	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

// chatUnavailable is the single user-facing failure string for chat pool
// exhaustion; unlike recommendations, follow-ups get no per-model breakdown.
const chatUnavailable = "The assistant is unavailable right now (all models are rate-limited or missing). Please try again in a moment."

// Chat continues the conversation about an earlier recommendation. The model
// context is seeded with the situation report as a user turn and the initial
// recommendation as a model turn, then the caller-held history in order, then
// the new message. The manager keeps no state of its own: the caller must
// append both the message and the reply to its history after each turn.
func (s *Service) Chat(ctx context.Context, req interfaces.ChatRequest) (string, error) {
	history := make([]models.ConversationTurn, 0, len(req.History)+2)
	history = append(history,
		models.ConversationTurn{Role: models.RoleUser, Text: req.SituationReport},
		models.ConversationTurn{Role: models.RoleModel, Text: req.InitialRecommendation},
	)
	history = append(history, req.History...)

	result, err := s.dispatch(ctx, req.PreferredModel, func(ctx context.Context, model string) (string, error) {
		return s.genai.Generate(ctx, model, models.GenerateRequest{
			Prompt:  req.Message,
			History: history,
		})
	})
	if err != nil {
		var exhausted *models.ExhaustedError
		if errors.As(err, &exhausted) {
			s.logger.Warn().Int("models", len(exhausted.Attempts)).Msg("Chat pool exhausted")
			return chatUnavailable, nil
		}
		return "", err
	}

	return result.Text, nil
}
