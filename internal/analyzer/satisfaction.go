package analyzer

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/povarna/generative-ai-agents/call-review-agent/internal/config"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minSatisfaction = 0.0
	maxSatisfaction = 10.0
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// SatisfactionScorer estimates the customer's satisfaction from the end of a call.
// In these transcripts the customer speaks as "agent".
type SatisfactionScorer struct {
	llmClient   llm.CompletionClient
	modelConfig config.ModelConfig
	window      int
	logger      *zerolog.Logger
}

func NewSatisfactionScorer(llmClient llm.CompletionClient, cfg config.SatisfactionConfig, logger *zerolog.Logger) *SatisfactionScorer {
	window := cfg.Window
	if window <= 0 {
		window = config.Default().Satisfaction.Window
	}

	return &SatisfactionScorer{
		llmClient:   llmClient,
		modelConfig: cfg.ModelConfig,
		window:      window,
		logger:      logger,
	}
}

// Score never fails: any completion error is logged and scored as 0.0.
func (s *SatisfactionScorer) Score(ctx context.Context, transcript []models.TranscriptMessage) float64 {
	lines := s.recentLines(transcript)
	if len(lines) == 0 {
		return 0.0
	}

	if s.modelConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.modelConfig.Timeout)
		defer cancel()
	}

	resp, err := s.llmClient.InvokeModel(ctx, llm.LLMRequest{
		Prompt:      buildSatisfactionPrompt(lines),
		MaxTokens:   s.modelConfig.MaxTokens,
		Temperature: s.modelConfig.Temperature,
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("satisfaction scoring failed, defaulting to 0")
		return 0.0
	}
	if resp == nil {
		return 0.0
	}

	score := ParseSatisfactionScore(resp.Content)

	s.logger.Debug().
		Str("content", resp.Content).
		Float64("score", score).
		Msg("satisfaction scored")

	return score
}

// recentLines renders the last window messages as "<Role>: <message>", skipping empty ones.
func (s *SatisfactionScorer) recentLines(transcript []models.TranscriptMessage) []string {
	start := max(len(transcript)-s.window, 0)

	// A Caser is stateful; one per call.
	caser := cases.Title(language.English)

	var lines []string
	for _, msg := range transcript[start:] {
		if strings.TrimSpace(msg.Message) == "" {
			continue
		}
		role := caser.String(string(msg.Role))
		if role == "" {
			role = "Unknown"
		}
		lines = append(lines, role+": "+msg.Message)
	}
	return lines
}

// ParseSatisfactionScore reads a 0-10 score out of free model text.
// It tries the whole trimmed text, then the first number in it, then gives 0.
// The result is clamped to [0, 10] and rounded to one decimal, halves to even.
func ParseSatisfactionScore(text string) float64 {
	trimmed := strings.TrimSpace(text)

	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		match := numberPattern.FindString(trimmed)
		if match == "" {
			return 0.0
		}
		score, err = strconv.ParseFloat(match, 64)
		if err != nil {
			return 0.0
		}
	}

	score = math.Min(math.Max(score, minSatisfaction), maxSatisfaction)
	return math.RoundToEven(score*10) / 10
}
