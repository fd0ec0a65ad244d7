package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/mmilger/optifolio/internal/app"
	"github.com/mmilger/optifolio/internal/common"
	"github.com/mmilger/optifolio/internal/interfaces"
	"github.com/mmilger/optifolio/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	names, err := s.app.ListModels(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrGeminiNotConfigured) {
			WriteError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		WriteError(w, http.StatusBadGateway, "Failed to list models: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"models": names})
}

type validateKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleValidateKey(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req validateKeyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := s.app.ValidateAPIKey(r.Context(), req.APIKey); err != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}

type enrichRequest struct {
	Positions []models.Position `json:"positions"`
}

func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req enrichRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	enriched := s.app.EnrichPortfolio(r.Context(), req.Positions)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"base_currency": s.app.Config.BaseCurrency,
		"positions":     enriched,
		"totals":        models.Totals(enriched),
	})
}

type reportRequest struct {
	Positions   []models.Position  `json:"positions"`
	Preferences models.Preferences `json:"preferences"`
	Budget      float64            `json:"budget"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req reportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	report := s.app.BuildSituationReport(r.Context(), req.Positions, req.Preferences, req.Budget)
	WriteJSON(w, http.StatusOK, map[string]string{"report": report})
}

type recommendRequest struct {
	Positions   []models.Position  `json:"positions"`
	Preferences models.Preferences `json:"preferences"`
	Budget      float64            `json:"budget"`
	SuggestNew  bool               `json:"suggest_new"`
	Model       string             `json:"model"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req recommendRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	text, err := s.app.GetRecommendation(r.Context(), req.Positions, req.Preferences, req.Budget, req.SuggestNew, req.Model)
	if err != nil {
		writeAdvisorError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"recommendation": text,
		"base_currency":  s.app.Config.BaseCurrency,
	})
}

type scanRequest struct {
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type"`
	Model       string `json:"model"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req scanRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if s.app.AdvisorService == nil {
		WriteError(w, http.StatusServiceUnavailable, app.ErrGeminiNotConfigured.Error())
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "image_base64 is not valid base64: "+err.Error())
		return
	}
	if len(data) == 0 {
		WriteError(w, http.StatusBadRequest, "image_base64 is required")
		return
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		WriteError(w, http.StatusBadRequest, "payload is not an image (detected "+mimeType+")")
		return
	}

	result, err := s.app.AdvisorService.ScanImage(r.Context(), models.ImageData{MIMEType: mimeType, Data: data}, req.Model)
	if err != nil {
		writeAdvisorError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

type chatRequest struct {
	SituationReport       string                    `json:"situation_report"`
	InitialRecommendation string                    `json:"initial_recommendation"`
	History               []models.ConversationTurn `json:"history"`
	Message               string                    `json:"message"`
	Model                 string                    `json:"model"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req chatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.app.ChatAboutRecommendation(r.Context(), interfaces.ChatRequest{
		SituationReport:       req.SituationReport,
		InitialRecommendation: req.InitialRecommendation,
		History:               req.History,
		Message:               req.Message,
		PreferredModel:        req.Model,
	})
	if err != nil {
		writeAdvisorError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// writeAdvisorError maps AI-layer failures onto HTTP status codes. Pool
// exhaustion never reaches here (the advisor returns it as text), so what is
// left is configuration and fatal provider errors.
func writeAdvisorError(w http.ResponseWriter, err error) {
	if errors.Is(err, app.ErrGeminiNotConfigured) {
		WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	var exhausted *models.ExhaustedError
	if errors.As(err, &exhausted) {
		WriteError(w, http.StatusServiceUnavailable, exhausted.Report())
		return
	}

	var provErr *models.ProviderError
	if errors.As(err, &provErr) {
		WriteError(w, http.StatusBadGateway, provErr.Error())
		return
	}

	WriteError(w, http.StatusInternalServerError, err.Error())
}
