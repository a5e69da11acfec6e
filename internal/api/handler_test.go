package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/analyzer"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/api/mocks"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func setupContainer(t *testing.T, callAnalyzer CallAnalyzer) *restful.Container {
	t.Helper()

	logger := zerolog.Nop()
	handler := NewHandler(callAnalyzer, &logger)

	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	RegisterRoutes(container, handler)
	RegisterOpenAPI(container)
	return container
}

func postAnalyze(t *testing.T, container *restful.Container, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	msg, ok := payload["error"].(string)
	if !ok {
		t.Fatalf("Expected an error field, got %s", recorder.Body.String())
	}
	return msg
}

func TestAPI_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	container := setupContainer(t, mocks.NewMockCallAnalyzer(ctrl))

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_Analyze_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)

	expected := models.AnalysisResult{
		ConversationID:            "conv-1",
		Intent:                    "loan enquiry",
		WordsSpoken:               3,
		CustomerSatisfactionScore: 7.5,
		KeyMoments:                []models.KeyMoment{},
	}

	mockAnalyzer.EXPECT().
		Analyze(gomock.Any(), "conv-1", []models.TranscriptMessage{
			{Role: models.RoleUser, Message: "hi there"},
			{Role: models.RoleAgent, Message: "hello"},
		}).
		Return(expected, nil)

	container := setupContainer(t, mockAnalyzer)
	recorder := postAnalyze(t, container, `{
		"conversation_id": "conv-1",
		"agent_id": "agent-9",
		"transcript": [
			{"role": "user", "message": "hi there"},
			{"role": "agent", "message": "hello"}
		]
	}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.ConversationID != "conv-1" {
		t.Errorf("Expected conversation_id 'conv-1', got '%s'", result.ConversationID)
	}
	if result.WordsSpoken != 3 {
		t.Errorf("Expected words_spoken=3, got %d", result.WordsSpoken)
	}
	if result.CustomerSatisfactionScore != 7.5 {
		t.Errorf("Expected customer_satisfaction_score=7.5, got %f", result.CustomerSatisfactionScore)
	}
	if recorder.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("Expected X-Request-ID header on response")
	}
}

func TestAPI_Analyze_MissingConversationID(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent", `{"transcript": [{"role": "user", "message": "hi"}]}`},
		{"empty", `{"conversation_id": "", "transcript": []}`},
		{"null", `{"conversation_id": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
			mockAnalyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			container := setupContainer(t, mockAnalyzer)
			recorder := postAnalyze(t, container, tt.body)

			if recorder.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", recorder.Code)
			}
			if msg := decodeError(t, recorder); msg != "conversation_id missing" {
				t.Errorf("Expected 'conversation_id missing', got '%s'", msg)
			}
		})
	}
}

func TestAPI_Analyze_MissingTranscriptDefaultsToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
	mockAnalyzer.EXPECT().
		Analyze(gomock.Any(), "conv-2", []models.TranscriptMessage{}).
		Return(analyzer.InsufficientDataResult("conv-2"), nil)

	container := setupContainer(t, mockAnalyzer)
	recorder := postAnalyze(t, container, `{"conversation_id": "conv-2"}`)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Feedback.Title != "Insufficient Data" {
		t.Errorf("Expected 'Insufficient Data', got '%s'", result.Feedback.Title)
	}
}

func TestAPI_Analyze_MalformedMessagesTolerated(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
	mockAnalyzer.EXPECT().
		Analyze(gomock.Any(), "conv-3", []models.TranscriptMessage{
			{Role: models.RoleUser, Message: ""},
			{Role: "", Message: "no role"},
			{},
			{},
		}).
		Return(models.AnalysisResult{ConversationID: "conv-3"}, nil)

	container := setupContainer(t, mockAnalyzer)
	recorder := postAnalyze(t, container, `{
		"conversation_id": "conv-3",
		"transcript": [{"role": "user"}, {"message": "no role"}, {"role": 5, "message": null}, "garbage"]
	}`)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestAPI_Analyze_InvalidBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
	mockAnalyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	container := setupContainer(t, mockAnalyzer)
	recorder := postAnalyze(t, container, `{"conversation_id": `)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
	decodeError(t, recorder)
}

func TestAPI_Analyze_AnalyzerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "no content",
			err:        analyzer.ErrNoContent,
			wantStatus: http.StatusOK,
			wantError:  "Model returned no content",
		},
		{
			name:       "malformed json",
			err:        fmt.Errorf("%w: unexpected end of JSON input", analyzer.ErrMalformedResponse),
			wantStatus: http.StatusBadGateway,
			wantError:  "model returned malformed JSON: unexpected end of JSON input",
		},
		{
			name:       "completion failure",
			err:        fmt.Errorf("%w: %w", analyzer.ErrCompletion, errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantError:  "review completion failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
			mockAnalyzer.EXPECT().
				Analyze(gomock.Any(), "conv-4", gomock.Any()).
				Return(models.AnalysisResult{}, tt.err)

			container := setupContainer(t, mockAnalyzer)
			recorder := postAnalyze(t, container, `{"conversation_id": "conv-4", "transcript": [{"role": "user", "message": "hi"}]}`)

			if recorder.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, recorder.Code)
			}
			if msg := decodeError(t, recorder); msg != tt.wantError {
				t.Errorf("Expected error '%s', got '%s'", tt.wantError, msg)
			}
		})
	}
}

func TestAPI_Analyze_PanicRecovered(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
	mockAnalyzer.EXPECT().
		Analyze(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, conversationID string, transcript []models.TranscriptMessage) (models.AnalysisResult, error) {
			panic("nil pointer")
		})

	container := setupContainer(t, mockAnalyzer)
	recorder := postAnalyze(t, container, `{"conversation_id": "conv-5"}`)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", recorder.Code)
	}
}

func TestAPI_OpenAPIDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	container := setupContainer(t, mocks.NewMockCallAnalyzer(ctrl))

	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to parse OpenAPI document: %v", err)
	}
	if doc.Info.Title != "Call Review Agent" {
		t.Errorf("Expected title 'Call Review Agent', got '%s'", doc.Info.Title)
	}
	if _, ok := doc.Paths["/api/analyze"]; !ok {
		t.Errorf("Expected /api/analyze in paths, got %v", doc.Paths)
	}
}

func TestAPI_Analyze_WithoutContentType(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
	mockAnalyzer.EXPECT().
		Analyze(gomock.Any(), "conv-6", []models.TranscriptMessage{}).
		Return(analyzer.InsufficientDataResult("conv-6"), nil)

	container := setupContainer(t, mockAnalyzer)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(`{"conversation_id": "conv-6"}`))
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestAPI_Analyze_LogsRawPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAnalyzer := mocks.NewMockCallAnalyzer(ctrl)
	mockAnalyzer.EXPECT().Analyze(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.InfoLevel)

	container := restful.NewContainer()
	RegisterRoutes(container, NewHandler(mockAnalyzer, &logger))

	postAnalyze(t, container, `{"transcript": [{"role": "user", "message": "raw payload marker"}]}`)

	found := false
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var entry struct {
			Message string          `json:"message"`
			Body    json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", line, err)
		}
		if entry.Message == "Received analysis request" {
			found = true
			if !bytes.Contains(entry.Body, []byte("raw payload marker")) {
				t.Errorf("Expected raw payload in log, got %s", entry.Body)
			}
		}
	}
	if !found {
		t.Errorf("Expected the request payload to be logged at info level, got %q", logs.String())
	}
}
