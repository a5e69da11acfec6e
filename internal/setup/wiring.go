package setup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/povarna/generative-ai-agents/call-review-agent/internal/analyzer"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/config"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/llm/gpt"
	"github.com/rs/zerolog"
)

const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	APIPort         string
	ShutdownTimeout time.Duration
}

type Dependencies struct {
	Analyzer *analyzer.Analyzer
	Logger   *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", "gpt-4o-mini"),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", ProviderOpenAI),
		APIPort:         getEnv("CALL_REVIEW_API_PORT", "18082"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Wire builds the analyzer on top of the configured completion provider.
// A missing credential fails here, before any request is served.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	llmClient, err := createLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.DefaultProvider, err)
	}

	analyzerConfig, err := config.LoadAnalyzerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load analyzer config: %w", err)
	}

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Int("review_max_tokens", analyzerConfig.Review.MaxTokens).
		Dur("review_timeout", analyzerConfig.Review.Timeout).
		Int("satisfaction_window", analyzerConfig.Satisfaction.Window).
		Msg("Analyzer configured")

	return &Dependencies{
		Analyzer: analyzer.NewAnalyzer(llmClient, analyzerConfig, logger),
		Logger:   logger,
	}, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, cfg *Config) (llm.CompletionClient, error) {
	switch cfg.DefaultProvider {
	case ProviderBedrock:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case ProviderOpenAI:
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.DefaultProvider)
	}
}
