// internal/classifier/llm.go
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"well-query-engine/internal/common/llm"
	"well-query-engine/internal/models"
)

// CompletionClient is the slice of the LLM client the classifier needs.
type CompletionClient interface {
	Available() bool
	Complete(ctx context.Context, instruction, text string) (string, error)
}

// LLMClassifier sends the query to a completion endpoint with a fixed
// instruction describing the intent schema and parses the structured reply.
// It raises on timeout or malformed output rather than guessing; the facade
// owns the fallback.
type LLMClassifier struct {
	client CompletionClient
}

func NewLLMClassifier(client CompletionClient) *LLMClassifier {
	return &LLMClassifier{client: client}
}

const classifyInstruction = `You classify recruiting-CRM queries into a structured intent.
Respond with a single JSON object and nothing else, using this shape:
{
  "intentType": one of "count", "search", "list", "aggregate",
  "collection": one of "candidates", "deals", "meetings",
  "entities": {
    "candidateLocator": optional TWAV locator code,
    "location": optional place name,
    "searchTerms": optional free-text search terms,
    "aggregateField": optional numeric field name for aggregate intents,
    "fromDate": optional ISO-8601 date or datetime,
    "toDate": optional ISO-8601 date or datetime
  },
  "confidence": number between 0 and 1
}
Omit entity fields you did not find. Resolve relative dates against today.`

// intentSchema is the contract the model's reply must satisfy before it is
// trusted.
const intentSchema = `{
  "type": "object",
  "required": ["intentType", "collection", "confidence"],
  "properties": {
    "intentType": {"type": "string", "enum": ["count", "search", "list", "aggregate"]},
    "collection": {"type": "string", "enum": ["candidates", "deals", "meetings"]},
    "confidence": {"type": "number"},
    "entities": {
      "type": "object",
      "properties": {
        "candidateLocator": {"type": "string"},
        "location": {"type": "string"},
        "searchTerms": {"type": "string"},
        "aggregateField": {"type": "string"},
        "fromDate": {"type": "string"},
        "toDate": {"type": "string"}
      }
    }
  }
}`

type intentWire struct {
	IntentType string  `json:"intentType"`
	Collection string  `json:"collection"`
	Confidence float64 `json:"confidence"`
	Entities   struct {
		CandidateLocator string `json:"candidateLocator"`
		Location         string `json:"location"`
		SearchTerms      string `json:"searchTerms"`
		AggregateField   string `json:"aggregateField"`
		FromDate         string `json:"fromDate"`
		ToDate           string `json:"toDate"`
	} `json:"entities"`
}

// Classify asks the model for a structured intent. Errors are
// llm.ErrModelUnavailable or llm.ErrModelResponse; there is no partial
// result.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	content, err := c.client.Complete(ctx, classifyInstruction, text)
	if err != nil {
		return models.Intent{}, err
	}

	raw := extractJSON(content)
	if raw == "" {
		return models.Intent{}, fmt.Errorf("%w: no JSON object in completion", llm.ErrModelResponse)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(intentSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return models.Intent{}, fmt.Errorf("%w: %v", llm.ErrModelResponse, err)
	}
	if !result.Valid() {
		return models.Intent{}, fmt.Errorf("%w: schema violations: %v", llm.ErrModelResponse, result.Errors())
	}

	var wire intentWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return models.Intent{}, fmt.Errorf("%w: %v", llm.ErrModelResponse, err)
	}

	intent := models.Intent{
		Type:       models.IntentType(wire.IntentType),
		Collection: models.Collection(strings.ToLower(wire.Collection)),
		Confidence: clamp(wire.Confidence),
		Source:     models.SourceLLM,
	}
	intent.Entities.CandidateLocator = strings.ToUpper(strings.TrimSpace(wire.Entities.CandidateLocator))
	intent.Entities.Location = strings.TrimSpace(wire.Entities.Location)
	intent.Entities.SearchTerms = strings.TrimSpace(wire.Entities.SearchTerms)
	intent.Entities.AggregateField = strings.TrimSpace(wire.Entities.AggregateField)
	intent.Entities.FromDate = parseWireTime(wire.Entities.FromDate)
	intent.Entities.ToDate = parseWireTime(wire.Entities.ToDate)

	return intent, nil
}

// extractJSON strips markdown code fences and surrounding prose, keeping the
// outermost JSON object. Models wrap their output more often than not.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func parseWireTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
