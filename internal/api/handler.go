package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/analyzer"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=mocks/mock_analyzer.go -package=mocks . CallAnalyzer

// CallAnalyzer produces a review for a single call.
type CallAnalyzer interface {
	Analyze(ctx context.Context, conversationID string, transcript []models.TranscriptMessage) (models.AnalysisResult, error)
}

var ErrConversationIDMissing = errors.New("conversation_id missing")

// Payload-level error texts. Both are returned with status 200.
const (
	msgConversationIDMissing = "conversation_id missing"
	msgNoContent             = "Model returned no content"
)

type Handler struct {
	analyzer CallAnalyzer
	logger   *zerolog.Logger
}

func NewHandler(callAnalyzer CallAnalyzer, logger *zerolog.Logger) *Handler {
	return &Handler{
		analyzer: callAnalyzer,
		logger:   logger,
	}
}

// POST /api/analyze
// Body: AnalysisRequest
// Returns: AnalysisResult, or {"error": ...}
func (h *Handler) Analyze(req *restful.Request, resp *restful.Response) {
	body, err := io.ReadAll(req.Request.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	event := h.logger.Info().Str("request_id", middleware.RequestID(req))
	if json.Valid(body) {
		event = event.RawJSON("body", body)
	} else {
		event = event.Bytes("body", body)
	}
	event.Msg("Received analysis request")

	analysisRequest, err := DecodeRequest(body)
	if errors.Is(err, ErrConversationIDMissing) {
		h.logger.Warn().Msg("Analysis request without conversation_id")
		resp.WriteHeaderAndEntity(http.StatusOK, models.ErrorResponse{Error: msgConversationIDMissing})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("conversation_id", analysisRequest.ConversationID).
		Str("agent_id", analysisRequest.AgentID).
		Int("messages", len(analysisRequest.Transcript)).
		Msg("Start analysis")

	result, err := h.analyzer.Analyze(req.Request.Context(), analysisRequest.ConversationID, analysisRequest.Transcript)
	if err != nil {
		status, payload := ErrorPayload(err)
		h.logger.Error().
			Err(err).
			Str("conversation_id", analysisRequest.ConversationID).
			Int("status", status).
			Msg("Analysis failed")
		resp.WriteHeaderAndEntity(status, payload)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// Health handler GET /api/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// DecodeRequest parses an analysis request and checks the conversation id.
// A missing transcript decodes as an empty one.
func DecodeRequest(body []byte) (models.AnalysisRequest, error) {
	var analysisRequest models.AnalysisRequest
	if err := json.Unmarshal(body, &analysisRequest); err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("invalid request body: %w", err)
	}
	if analysisRequest.ConversationID == "" {
		return models.AnalysisRequest{}, ErrConversationIDMissing
	}

	analysisRequest.Normalize()
	return analysisRequest, nil
}

// ErrorPayload maps an analyzer error onto a status code and error body.
func ErrorPayload(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, analyzer.ErrNoContent):
		return http.StatusOK, models.ErrorResponse{Error: msgNoContent}
	case errors.Is(err, ErrConversationIDMissing):
		return http.StatusOK, models.ErrorResponse{Error: msgConversationIDMissing}
	default:
		return http.StatusBadGateway, models.ErrorResponse{Error: err.Error()}
	}
}
