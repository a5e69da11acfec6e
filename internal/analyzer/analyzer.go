package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/call-review-agent/internal/config"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoContent is reported to callers as a payload-level error.
	ErrNoContent = errors.New("model returned no content")
	// ErrMalformedResponse means the review completion was not valid JSON.
	ErrMalformedResponse = errors.New("model returned malformed JSON")
	// ErrCompletion means the review completion call itself failed.
	ErrCompletion = errors.New("review completion failed")
)

// Analyzer turns a call transcript into a structured sales agent review.
type Analyzer struct {
	llmClient   llm.CompletionClient
	reviewModel config.ModelConfig
	scorer      *SatisfactionScorer
	logger      *zerolog.Logger
}

func NewAnalyzer(llmClient llm.CompletionClient, cfg *config.AnalyzerConfig, logger *zerolog.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Analyzer{
		llmClient:   llmClient,
		reviewModel: cfg.Review,
		scorer:      NewSatisfactionScorer(llmClient, cfg.Satisfaction, logger),
		logger:      logger,
	}
}

// Analyze reviews the "user" side of the transcript, which is the sales agent.
// The review and the satisfaction score are requested concurrently; a failed
// satisfaction call only zeroes the score.
func (a *Analyzer) Analyze(ctx context.Context, conversationID string, transcript []models.TranscriptMessage) (models.AnalysisResult, error) {
	now := time.Now()

	userMessages := filterUserMessages(transcript)

	a.logger.Info().
		Str("conversation_id", conversationID).
		Int("messages", len(transcript)).
		Int("user_messages", len(userMessages)).
		Msg("starting analysis")

	if !hasContent(userMessages) {
		a.logger.Info().
			Str("conversation_id", conversationID).
			Msg("no usable user messages, skipping completion")
		return InsufficientDataResult(conversationID), nil
	}

	var (
		review       models.AnalysisResult
		satisfaction float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		review, err = a.review(gctx, conversationID, userMessages)
		return err
	})
	g.Go(func() error {
		satisfaction = a.scorer.Score(gctx, transcript)
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Error().
			Err(err).
			Str("conversation_id", conversationID).
			Dur("duration", time.Since(now)).
			Msg("analysis failed")
		return models.AnalysisResult{}, err
	}

	review.WordsSpoken = CountWords(transcript)
	review.ConversationID = conversationID
	review.CustomerSatisfactionScore = satisfaction

	a.logger.Info().
		Str("conversation_id", conversationID).
		Str("intent", review.Intent).
		Int("words_spoken", review.WordsSpoken).
		Float64("customer_satisfaction_score", satisfaction).
		Dur("duration", time.Since(now)).
		Msg("analysis complete")

	return review, nil
}

func (a *Analyzer) review(ctx context.Context, conversationID string, userMessages []string) (models.AnalysisResult, error) {
	prompt, err := buildReviewPrompt(conversationID, userMessages)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	if a.reviewModel.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.reviewModel.Timeout)
		defer cancel()
	}

	resp, err := a.llmClient.InvokeModel(ctx, llm.LLMRequest{
		System:      reviewSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   a.reviewModel.MaxTokens,
		Temperature: a.reviewModel.Temperature,
		Schema:      reviewResponseSchema(),
	})
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		event := a.logger.Warn().Str("conversation_id", conversationID)
		if resp != nil && resp.Refusal != "" {
			event = event.Str("refusal", resp.Refusal)
		}
		event.Msg("LLM returned no content")
		return models.AnalysisResult{}, ErrNoContent
	}

	raw := []byte(resp.Content)

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		a.logger.Error().
			Err(err).
			Str("conversation_id", conversationID).
			Str("content", resp.Content).
			Msg("failed to deserialize LLM response")
		return models.AnalysisResult{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if err := ValidateReview(raw); err != nil {
		a.logger.Warn().
			Err(err).
			Str("conversation_id", conversationID).
			Msg("review does not satisfy the response schema")
	}

	if result.ConversationID != conversationID {
		a.logger.Debug().
			Str("conversation_id", conversationID).
			Str("model_conversation_id", result.ConversationID).
			Msg("overwriting conversation id returned by the model")
	}

	return result, nil
}

// InsufficientDataResult is returned when the transcript has no usable user messages.
func InsufficientDataResult(conversationID string) models.AnalysisResult {
	return models.AnalysisResult{
		ConversationID: conversationID,
		Intent:         "No valid user conversation",
		Feedback: models.Feedback{
			Title:              "Insufficient Data",
			WhatYouDidWell:     []string{},
			AreasOfImprovement: []string{"No user messages found in this conversation."},
		},
		PerformanceScores: models.PerformanceScores{},
		KeyMoments:        []models.KeyMoment{},
	}
}

func filterUserMessages(transcript []models.TranscriptMessage) []string {
	var messages []string
	for _, msg := range transcript {
		if msg.Role == models.RoleUser {
			messages = append(messages, msg.Message)
		}
	}
	return messages
}

func hasContent(messages []string) bool {
	for _, msg := range messages {
		if strings.TrimSpace(msg) != "" {
			return true
		}
	}
	return false
}

// CountWords sums whitespace-delimited tokens across every message, regardless of role.
func CountWords(transcript []models.TranscriptMessage) int {
	total := 0
	for _, msg := range transcript {
		if msg.Message == "" {
			continue
		}
		total += len(strings.Fields(msg.Message))
	}
	return total
}
