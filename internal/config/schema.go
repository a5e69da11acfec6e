package config

import "time"

// AnalyzerConfig holds the tuning of both completion calls made per analysis.
type AnalyzerConfig struct {
	Review       ModelConfig        `yaml:"review"`
	Satisfaction SatisfactionConfig `yaml:"satisfaction"`
}

// ModelConfig contains the generation parameters of a single completion call
type ModelConfig struct {
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SatisfactionConfig struct {
	ModelConfig `yaml:",inline"`
	// Window is how many trailing transcript messages are scored.
	Window int `yaml:"window"`
}
