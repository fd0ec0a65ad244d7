package advisor

import (
	"context"
	"errors"

	"github.com/mmilger/optifolio/internal/models"
)

// dispatchResult is a successful dispatch outcome. Fallback marks a result
// produced by a model other than the first candidate tried.
type dispatchResult struct {
	Text     string
	Model    string
	Fallback bool
}

// candidates returns the model order for one dispatch: the preferred model
// first, then every other pool member in fixed pool order, each at most once.
func (s *Service) candidates(preferred string) []string {
	if preferred == "" && len(s.pool) > 0 {
		preferred = s.pool[0]
	}

	order := make([]string, 0, len(s.pool)+1)
	if preferred != "" {
		order = append(order, preferred)
	}
	for _, model := range s.pool {
		if model != preferred {
			order = append(order, model)
		}
	}
	return order
}

// dispatch runs op against each candidate model until one succeeds. A
// transient error (rate limit, unknown model) skips to the next candidate; a
// fatal error aborts immediately. When every candidate fails transiently the
// returned error is a *models.ExhaustedError carrying one coded attempt per
// model in try order.
func (s *Service) dispatch(ctx context.Context, preferred string, op func(ctx context.Context, model string) (string, error)) (*dispatchResult, error) {
	order := s.candidates(preferred)
	attempts := make([]models.ModelAttempt, 0, len(order))

	for i, model := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := op(ctx, model)
		if err == nil {
			if i > 0 {
				s.logger.Info().Str("model", model).Int("attempt", i+1).Msg("Fallback model succeeded")
			}
			return &dispatchResult{Text: text, Model: model, Fallback: i > 0}, nil
		}

		var provErr *models.ProviderError
		if errors.As(err, &provErr) && provErr.Transient() {
			s.logger.Warn().
				Str("model", model).
				Int("status", provErr.StatusCode).
				Msg("Transient model failure, trying next candidate")
			attempts = append(attempts, models.ModelAttempt{Model: model, Err: provErr})
			continue
		}

		// Fatal: no further candidates are tried.
		return nil, err
	}

	return nil, &models.ExhaustedError{Attempts: attempts}
}
