package analyzer

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/call-review-agent/internal/models"
)

const (
	reviewSchemaName = "sales_agent_call_review"
	minBulletPoints  = 4
)

// ReviewSchema returns the strict JSON schema the review completion must satisfy.
// Every property is required and no additional properties are allowed.
func ReviewSchema() *jsonschema.Schema {
	titles := enumOf(momentTitles())
	levels := enumOf(momentLevels())

	return strictObject(map[string]*jsonschema.Schema{
		"conversation_id": stringSchema(),
		"intent":          stringSchema(),
		"feedback": strictObject(map[string]*jsonschema.Schema{
			"title":                stringSchema(),
			"what_you_did_well":    bulletsSchema(),
			"areas_of_improvement": bulletsSchema(),
		}),
		"performance_scores": strictObject(map[string]*jsonschema.Schema{
			"empathy":               numberSchema(),
			"problem_solving":       numberSchema(),
			"communication_clarity": numberSchema(),
			"product_knowledge":     numberSchema(),
			"call_efficiency":       numberSchema(),
		}),
		"key_moments": {
			Type: "array",
			Items: strictObject(map[string]*jsonschema.Schema{
				"moment_title":    {Type: "string", Enum: titles},
				"level":           {Type: "string", Enum: levels},
				"moment_feedback": stringSchema(),
			}),
			MinItems: intPtr(len(models.KeyMomentTitles)),
			MaxItems: intPtr(len(models.KeyMomentTitles)),
		},
		"opening_response_sentence": stringSchema(),
	})
}

func reviewResponseSchema() *llm.ResponseSchema {
	return &llm.ResponseSchema{
		Name:        reviewSchemaName,
		Description: "Structured performance review of a sales agent phone call",
		Schema:      ReviewSchema(),
		Strict:      true,
	}
}

var resolvedReviewSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	return ReviewSchema().Resolve(nil)
})

// ValidateReview checks a raw review document against the review schema and
// verifies that each fixed key moment is rated exactly once.
func ValidateReview(raw []byte) error {
	resolved, err := resolvedReviewSchema()
	if err != nil {
		return fmt.Errorf("resolve review schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decode review: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("review does not match schema: %w", err)
	}

	var review struct {
		KeyMoments []models.KeyMoment `json:"key_moments"`
	}
	if err := json.Unmarshal(raw, &review); err != nil {
		return fmt.Errorf("decode key moments: %w", err)
	}
	return checkKeyMomentCoverage(review.KeyMoments)
}

func checkKeyMomentCoverage(moments []models.KeyMoment) error {
	seen := make(map[models.KeyMomentTitle]int, len(moments))
	for _, moment := range moments {
		seen[moment.MomentTitle]++
	}

	for _, title := range models.KeyMomentTitles {
		switch seen[title] {
		case 1:
		case 0:
			return fmt.Errorf("key moment %q missing", title)
		default:
			return fmt.Errorf("key moment %q rated %d times", title, seen[title])
		}
	}
	return nil
}

func momentTitles() []string {
	titles := make([]string, len(models.KeyMomentTitles))
	for i, title := range models.KeyMomentTitles {
		titles[i] = string(title)
	}
	return titles
}

func momentLevels() []string {
	levels := make([]string, len(models.KeyMomentLevels))
	for i, level := range models.KeyMomentLevels {
		levels[i] = string(level)
	}
	return levels
}

func enumOf(values []string) []any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return enum
}

func strictObject(properties map[string]*jsonschema.Schema) *jsonschema.Schema {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	sort.Strings(required)

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           properties,
		Required:             required,
		AdditionalProperties: falseSchema(),
	}
}

// falseSchema marshals as `false`.
func falseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

func stringSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"}
}

// bulletsSchema must be built per property; resolved schemas have to form a tree.
func bulletsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "array",
		Items:    stringSchema(),
		MinItems: intPtr(minBulletPoints),
	}
}

func numberSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number"}
}

func intPtr(n int) *int {
	return &n
}
