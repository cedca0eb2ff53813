// internal/classifier/classifier.go
package classifier

import (
	"context"
	"errors"

	"well-query-engine/internal/common/llm"
	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/common/metrics"
	"well-query-engine/internal/models"
)

// IntentClassifier is the single entry point callers use. It owns the
// model-or-rules decision so no call site ever branches on whether the model
// path is active.
type IntentClassifier struct {
	llm    *LLMClassifier
	rules  *RuleBasedClassifier
	useLLM bool
	logger logger.Logger
}

// NewIntentClassifier wires the facade. The model path is enabled only when
// the completion client actually has credentials; otherwise every call goes
// straight to the rules without a wasted round-trip.
func NewIntentClassifier(client CompletionClient, rules *RuleBasedClassifier, log logger.Logger) *IntentClassifier {
	useLLM := client != nil && client.Available()
	ic := &IntentClassifier{
		rules:  rules,
		useLLM: useLLM,
		logger: log.WithFields(map[string]interface{}{"component": "intent_classifier"}),
	}
	if useLLM {
		ic.llm = NewLLMClassifier(client)
	}
	return ic
}

// Classify never returns an error: worst case is the rule-based fallback's
// low-confidence default intent.
func (ic *IntentClassifier) Classify(ctx context.Context, text string) models.Intent {
	if ic.useLLM {
		intent, err := ic.llm.Classify(ctx, text)
		if err == nil {
			return intent
		}

		reason := "model_error"
		if errors.Is(err, llm.ErrModelUnavailable) {
			reason = "model_unavailable"
		} else if errors.Is(err, llm.ErrModelResponse) {
			reason = "model_response_invalid"
		}
		metrics.ClassifierFallbacks.WithLabelValues(reason).Inc()
		ic.logger.WithError(err).Warn("model classification failed, using rules", map[string]interface{}{
			"reason": reason,
		})
	}

	return ic.rules.Classify(text)
}
