package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

const defaultConfigPath = "configs/analyzer.yaml"

// Default returns the built-in analyzer configuration.
func Default() *AnalyzerConfig {
	return &AnalyzerConfig{
		Review: ModelConfig{
			MaxTokens:   2048,
			Temperature: 0.0,
			Timeout:     60 * time.Second,
		},
		Satisfaction: SatisfactionConfig{
			ModelConfig: ModelConfig{
				MaxTokens:   10,
				Temperature: 0.0,
				Timeout:     20 * time.Second,
			},
			Window: 10,
		},
	}
}

// LoadAnalyzerConfig reads ANALYZER_CONFIG_PATH (or configs/analyzer.yaml).
// A missing default file yields the built-in defaults; an explicit path must exist.
func LoadAnalyzerConfig() (*AnalyzerConfig, error) {
	path := os.Getenv("ANALYZER_CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *AnalyzerConfig) {
	defaults := Default()
	if cfg.Review.MaxTokens == 0 {
		cfg.Review.MaxTokens = defaults.Review.MaxTokens
	}
	if cfg.Review.Timeout == 0 {
		cfg.Review.Timeout = defaults.Review.Timeout
	}
	if cfg.Satisfaction.MaxTokens == 0 {
		cfg.Satisfaction.MaxTokens = defaults.Satisfaction.MaxTokens
	}
	if cfg.Satisfaction.Timeout == 0 {
		cfg.Satisfaction.Timeout = defaults.Satisfaction.Timeout
	}
	if cfg.Satisfaction.Window == 0 {
		cfg.Satisfaction.Window = defaults.Satisfaction.Window
	}
}

func (c *AnalyzerConfig) Validate() error {
	if err := c.Review.validate("review"); err != nil {
		return err
	}
	if err := c.Satisfaction.validate("satisfaction"); err != nil {
		return err
	}
	if c.Satisfaction.Window < 0 {
		return fmt.Errorf("satisfaction: window must not be negative, got %d", c.Satisfaction.Window)
	}
	return nil
}

func (m ModelConfig) validate(name string) error {
	if m.MaxTokens < 0 {
		return fmt.Errorf("%s: max_tokens must not be negative, got %d", name, m.MaxTokens)
	}
	if m.Temperature < 0.0 || m.Temperature > 2.0 {
		return fmt.Errorf("%s: temperature %.2f out of range [0.0, 2.0]", name, m.Temperature)
	}
	if m.Timeout < 0 {
		return fmt.Errorf("%s: timeout must not be negative, got %s", name, m.Timeout)
	}
	return nil
}
