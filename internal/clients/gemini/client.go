// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

const DefaultModel = "gemini-2.5-flash"

// Client implements the GenAIClient interface
type Client struct {
	client *genai.Client
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate runs one generation request against the named model. All provider
// failures come back as *models.ProviderError with the transient/fatal
// classification decided here.
func (c *Client) Generate(ctx context.Context, model string, req models.GenerateRequest) (string, error) {
	c.logger.Debug().
		Str("model", model).
		Bool("image", req.Image != nil).
		Int("history", len(req.History)).
		Msg("Generating content")

	var config *genai.GenerateContentConfig
	if req.SystemInstruction != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}},
		}
	}

	var result *genai.GenerateContentResponse
	var err error

	if len(req.History) > 0 {
		result, err = c.generateChat(ctx, model, config, req)
	} else {
		result, err = c.client.Models.GenerateContent(ctx, model, requestContents(req), config)
	}
	if err != nil {
		return "", c.classifyError(model, err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return "", &models.ProviderError{
			Model:   model,
			Kind:    models.ErrorKindFatal,
			Message: err.Error(),
		}
	}

	return text, nil
}

// generateChat replays the request history through a chat session and sends
// the prompt as the final turn.
func (c *Client) generateChat(ctx context.Context, model string, config *genai.GenerateContentConfig, req models.GenerateRequest) (*genai.GenerateContentResponse, error) {
	history := make([]*genai.Content, 0, len(req.History))
	for _, turn := range req.History {
		role := genai.RoleUser
		if turn.Role == models.RoleModel {
			role = genai.RoleModel
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Text}},
		})
	}

	chat, err := c.client.Chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}

	return chat.Send(ctx, &genai.Part{Text: req.Prompt})
}

// requestContents builds the content list for a single-shot request,
// attaching inline image bytes when present.
func requestContents(req models.GenerateRequest) []*genai.Content {
	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Image.MIMEType,
				Data:     req.Image.Data,
			},
		})
	}
	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
}

// classifyError maps an SDK failure to a ProviderError. Rate limiting (429)
// and unknown models (404) are transient for the failing model; everything
// else aborts the dispatch.
func (c *Client) classifyError(model string, err error) *models.ProviderError {
	code := 0
	message := err.Error()

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.Code
	} else if errors.As(err, &apiErrPtr) {
		code = apiErrPtr.Code
	}

	kind := models.ErrorKindFatal
	if code == http.StatusTooManyRequests || code == http.StatusNotFound {
		kind = models.ErrorKindTransient
	}

	c.logger.Warn().
		Str("model", model).
		Int("status", code).
		Str("kind", string(kind)).
		Msg("Gemini request failed")

	return &models.ProviderError{
		Model:            model,
		StatusCode:       code,
		Kind:             kind,
		RetryHintSeconds: models.ParseRetryHint(message),
		Message:          message,
	}
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// ListModels returns the models available to the configured API key that
// support content generation. Doubles as the credential-validation probe.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for model, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, c.classifyError("", err)
		}
		if !supportsGeneration(model) {
			continue
		}
		names = append(names, strings.TrimPrefix(model.Name, "models/"))
	}
	return names, nil
}

func supportsGeneration(m *genai.Model) bool {
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

// Ensure Client implements GenAIClient
var _ interfaces.GenAIClient = (*Client)(nil)
