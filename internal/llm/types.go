package llm

import (
	"github.com/google/jsonschema-go/jsonschema"
)

type LLMRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	// Schema constrains the output to JSON. Nil means plain text.
	Schema *ResponseSchema
}

// ResponseSchema describes a strict structured-output contract.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Strict      bool
}

type LLMResponse struct {
	Content    string
	StopReason string
	Refusal    string
}
