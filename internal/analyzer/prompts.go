package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

const reviewSystemPrompt = "Return ONLY valid JSON. No extra text."

var reviewPromptTemplate = template.Must(template.New("review").Parse(`You are an expert and strict evaluator analyzing a phone call between a customer and a sales agent.
You will always be analyzing the scores of the sales agent. Give the true scores.

conversation_id MUST always be: {{.ConversationID}}

Provide structured JSON ONLY (strict mode) following the schema.

TRANSCRIPT (messages spoken by the sales agent):
{{.Transcript}}

Title must ALWAYS be:
"{{.Title}}"

Scoring rules:
- empathy, problem_solving, communication_clarity, product_knowledge, call_efficiency → 10 to 100
- "what_you_did_well" : minimum {{.MinBullets}} bullet points
- "areas_of_improvement" : minimum {{.MinBullets}} bullet points
- "intent" : short phrase (e.g. "loan enquiry", "complaint", "account issue")

Key moments:
- "key_moments" must contain exactly one entry for each of: {{.Moments}}
- "level" must be one of: {{.Levels}}
- "moment_feedback" : one or two sentences explaining the rating

Opening response:
- Identify the sentence in the transcript that represents the "Opening Response" moment
  and copy it word for word into "opening_response_sentence".
`))

const reviewTitle = "Sales Agent Performance Review"

type reviewPromptData struct {
	ConversationID string
	Transcript     string
	Title          string
	MinBullets     int
	Moments        string
	Levels         string
}

func buildReviewPrompt(conversationID string, userMessages []string) (string, error) {
	transcript, err := json.MarshalIndent(userMessages, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize transcript: %w", err)
	}

	data := reviewPromptData{
		ConversationID: conversationID,
		Transcript:     string(transcript),
		Title:          reviewTitle,
		MinBullets:     minBulletPoints,
		Moments:        quotedList(momentTitles()),
		Levels:         quotedList(momentLevels()),
	}

	var buf bytes.Buffer
	if err := reviewPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

func buildSatisfactionPrompt(lines []string) string {
	return fmt.Sprintf(`You are analyzing the last part of a phone call between a sales agent (labelled "User")
and a customer (labelled "Agent").

Based on the customer's tone, mood and whether their issue was resolved, rate how satisfied
the customer is on a scale from 0 to 10.

Conversation:
%s

Respond with ONLY the number (for example: 7.5). No words, no explanation.`, strings.Join(lines, "\n"))
}

func quotedList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
