package models

import (
	"encoding/json"
)

// Role identifies the speaker of a transcript message.
// By convention "user" is the sales agent under review and "agent" is the customer.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type KeyMomentTitle string

const (
	MomentOpeningResponse      KeyMomentTitle = "Opening Response"
	MomentProblemInvestigation KeyMomentTitle = "Problem Investigation"
	MomentResolutionOffer      KeyMomentTitle = "Resolution Offer"
)

// KeyMomentTitles lists the fixed moments every review must rate, in call order.
var KeyMomentTitles = []KeyMomentTitle{
	MomentOpeningResponse,
	MomentProblemInvestigation,
	MomentResolutionOffer,
}

type KeyMomentLevel string

const (
	LevelExcellent        KeyMomentLevel = "Excellent"
	LevelVeryGood         KeyMomentLevel = "Very Good"
	LevelGood             KeyMomentLevel = "Good"
	LevelModerate         KeyMomentLevel = "Moderate"
	LevelNeedsImprovement KeyMomentLevel = "Needs Improvement"
)

var KeyMomentLevels = []KeyMomentLevel{
	LevelExcellent,
	LevelVeryGood,
	LevelGood,
	LevelModerate,
	LevelNeedsImprovement,
}

// Input message

type TranscriptMessage struct {
	Role    Role   `json:"role,omitempty" description:"Speaker role (user = sales agent, agent = customer)"`
	Message string `json:"message,omitempty" description:"Message text"`
}

// UnmarshalJSON tolerates missing, null and non-string fields; they decode as "".
func (m *TranscriptMessage) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		// Entries that are not objects carry neither role nor message.
		*m = TranscriptMessage{}
		return nil
	}

	role, _ := raw["role"].(string)
	message, _ := raw["message"].(string)

	*m = TranscriptMessage{
		Role:    Role(role),
		Message: message,
	}
	return nil
}

type AnalysisRequest struct {
	ConversationID string              `json:"conversation_id" description:"Conversation identifier (required)"`
	AgentID        string              `json:"agent_id,omitempty" description:"Optional sales agent identifier"`
	Transcript     []TranscriptMessage `json:"transcript" description:"Ordered call transcript"`
}

// Normalize defaults a missing transcript to an empty one.
func (r *AnalysisRequest) Normalize() {
	if r.Transcript == nil {
		r.Transcript = []TranscriptMessage{}
	}
}

// Output

type Feedback struct {
	Title              string   `json:"title"`
	WhatYouDidWell     []string `json:"what_you_did_well"`
	AreasOfImprovement []string `json:"areas_of_improvement"`
}

type PerformanceScores struct {
	Empathy              float64 `json:"empathy"`
	ProblemSolving       float64 `json:"problem_solving"`
	CommunicationClarity float64 `json:"communication_clarity"`
	ProductKnowledge     float64 `json:"product_knowledge"`
	CallEfficiency       float64 `json:"call_efficiency"`
}

type KeyMoment struct {
	MomentTitle    KeyMomentTitle `json:"moment_title"`
	Level          KeyMomentLevel `json:"level"`
	MomentFeedback string         `json:"moment_feedback"`
}

type AnalysisResult struct {
	ConversationID            string            `json:"conversation_id"`
	Intent                    string            `json:"intent"`
	Feedback                  Feedback          `json:"feedback"`
	PerformanceScores         PerformanceScores `json:"performance_scores"`
	KeyMoments                []KeyMoment       `json:"key_moments"`
	OpeningResponseSentence   string            `json:"opening_response_sentence"`
	WordsSpoken               int               `json:"words_spoken"`
	CustomerSatisfactionScore float64           `json:"customer_satisfaction_score"`
}

// ErrorResponse is the payload-level failure shape. Callers check for the error key.
type ErrorResponse struct {
	Error string `json:"error" description:"Error message"`
}
