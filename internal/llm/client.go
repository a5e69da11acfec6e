package llm

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks . CompletionClient

// CompletionClient invokes a text generation model.
// Implementations must be safe for concurrent use; a single instance is shared
// by every request.
type CompletionClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}
