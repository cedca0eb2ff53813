// internal/classifier/classifier_test.go
package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"well-query-engine/internal/common/llm"
	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/models"
)

func TestIntentClassifier_Classify(t *testing.T) {
	rules := newTestRules()
	log := logger.NewNoOpLogger()

	t.Run("model answer wins when valid", func(t *testing.T) {
		client := &fakeCompletionClient{
			available: true,
			content:   `{"intentType": "count", "collection": "deals", "confidence": 0.95}`,
		}

		intent := NewIntentClassifier(client, rules, log).Classify(context.Background(), "how many deals")

		assert.Equal(t, models.SourceLLM, intent.Source)
		assert.Equal(t, models.IntentCount, intent.Type)
		assert.Equal(t, models.CollectionDeals, intent.Collection)
	})

	t.Run("model outage falls back to rules", func(t *testing.T) {
		client := &fakeCompletionClient{available: true, err: llm.ErrModelUnavailable}

		intent := NewIntentClassifier(client, rules, log).Classify(context.Background(), "how many candidates are in the vault")

		assert.Equal(t, models.SourceRuleBased, intent.Source)
		assert.Equal(t, models.IntentCount, intent.Type)
		assert.Equal(t, models.CollectionCandidates, intent.Collection)
	})

	t.Run("garbage model output falls back to rules", func(t *testing.T) {
		client := &fakeCompletionClient{available: true, content: "sorry, no idea"}

		intent := NewIntentClassifier(client, rules, log).Classify(context.Background(), "show me TWAV115357")

		assert.Equal(t, models.SourceRuleBased, intent.Source)
		assert.Equal(t, "TWAV115357", intent.Entities.CandidateLocator)
	})

	t.Run("no credentials skips the model entirely", func(t *testing.T) {
		client := &fakeCompletionClient{available: false}

		intent := NewIntentClassifier(client, rules, log).Classify(context.Background(), "list vault candidates")

		assert.Equal(t, models.SourceRuleBased, intent.Source)
		assert.Zero(t, client.calls, "unavailable client must not be called")
	})

	t.Run("nil client is tolerated", func(t *testing.T) {
		intent := NewIntentClassifier(nil, rules, log).Classify(context.Background(), "deals")

		assert.Equal(t, models.SourceRuleBased, intent.Source)
		assert.Equal(t, models.CollectionDeals, intent.Collection)
	})
}
