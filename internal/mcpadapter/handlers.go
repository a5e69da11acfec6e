package mcpadapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/analyzer"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/api"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
)

const ToolAnalyzeCall = "analyze_call"

// AnalyzeCallInput is the MCP tool input schema (matches HTTP API field names).
type AnalyzeCallInput struct {
	ConversationID string                     `json:"conversation_id" jsonschema:"conversation identifier"`
	AgentID        string                     `json:"agent_id,omitempty" jsonschema:"optional sales agent identifier"`
	Transcript     []models.TranscriptMessage `json:"transcript,omitempty" jsonschema:"ordered call transcript; role user is the sales agent and role agent is the customer"`
}

// NewAnalyzeCallHandler returns a tool handler that uses the given analyzer.
// Pass the returned function to mcp.AddTool.
func NewAnalyzeCallHandler(callAnalyzer api.CallAnalyzer) func(context.Context, *mcp.CallToolRequest, AnalyzeCallInput) (*mcp.CallToolResult, models.AnalysisResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeCallInput) (*mcp.CallToolResult, models.AnalysisResult, error) {
		return AnalyzeCall(ctx, callAnalyzer, req, input)
	}
}

// AnalyzeCall reviews the transcript. Errors are reported as tool errors.
func AnalyzeCall(
	ctx context.Context,
	callAnalyzer api.CallAnalyzer,
	req *mcp.CallToolRequest,
	input AnalyzeCallInput,
) (*mcp.CallToolResult, models.AnalysisResult, error) {
	if input.ConversationID == "" {
		return nil, models.AnalysisResult{}, api.ErrConversationIDMissing
	}

	transcript := input.Transcript
	if transcript == nil {
		transcript = []models.TranscriptMessage{}
	}

	result, err := callAnalyzer.Analyze(ctx, input.ConversationID, transcript)
	if errors.Is(err, analyzer.ErrNoContent) {
		_, payload := api.ErrorPayload(err)
		return nil, models.AnalysisResult{}, errors.New(payload.Error)
	}
	if err != nil {
		return nil, models.AnalysisResult{}, fmt.Errorf("analysis failed: %w", err)
	}

	return nil, result, nil
}

// NewServer builds the MCP server exposing the call analysis tool.
func NewServer(callAnalyzer api.CallAnalyzer, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "call-review-agent",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAnalyzeCall,
		Description: "Review a sales call transcript: intent, feedback, performance scores, key moments, words spoken and customer satisfaction",
	}, NewAnalyzeCallHandler(callAnalyzer))

	return server
}
