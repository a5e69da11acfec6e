package setup

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"OPEN_AI_MODEL_ID", "DEFAULT_LLM_PROVIDER", "CALL_REVIEW_API_PORT", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	if cfg.OpenAIModelID != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %s", cfg.OpenAIModelID)
	}
	if cfg.DefaultProvider != ProviderOpenAI {
		t.Errorf("Expected default provider openai, got %s", cfg.DefaultProvider)
	}
	if cfg.APIPort != "18082" {
		t.Errorf("Expected default port 18082, got %s", cfg.APIPort)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DEFAULT_LLM_PROVIDER", "bedrock")
	t.Setenv("CALL_REVIEW_API_PORT", "9000")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := LoadConfig()

	if cfg.DefaultProvider != ProviderBedrock {
		t.Errorf("Expected provider bedrock, got %s", cfg.DefaultProvider)
	}
	if cfg.APIPort != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.APIPort)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("Expected shutdown timeout 3s, got %s", cfg.ShutdownTimeout)
	}
}

func TestWire_MissingOpenAIKeyFailsFast(t *testing.T) {
	logger := zerolog.Nop()

	_, err := Wire(context.Background(), &Config{
		DefaultProvider: ProviderOpenAI,
		OpenAIModelID:   "gpt-4o-mini",
	}, &logger)
	if err == nil || !strings.Contains(err.Error(), "API key is required") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}

func TestWire_UnknownProvider(t *testing.T) {
	logger := zerolog.Nop()

	_, err := Wire(context.Background(), &Config{DefaultProvider: "watson"}, &logger)
	if err == nil || !strings.Contains(err.Error(), "unknown LLM provider") {
		t.Errorf("Expected unknown provider error, got %v", err)
	}
}

func TestWire_OpenAI(t *testing.T) {
	os.Unsetenv("ANALYZER_CONFIG_PATH")
	logger := zerolog.Nop()

	deps, err := Wire(context.Background(), &Config{
		DefaultProvider: ProviderOpenAI,
		OpenAIKey:       "test-key",
		OpenAIModelID:   "gpt-4o-mini",
	}, &logger)
	if err != nil {
		t.Fatalf("Wire failed: %v", err)
	}
	if deps.Analyzer == nil {
		t.Error("Expected an analyzer")
	}
}
