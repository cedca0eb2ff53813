// internal/engine/engine.go
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"well-query-engine/internal/backend"
	"well-query-engine/internal/classifier"
	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/common/metrics"
	"well-query-engine/internal/models"
	"well-query-engine/internal/normalize"
	"well-query-engine/internal/roles"
)

// QueryEngine composes role resolution, intent classification, backend
// dispatch and normalization into the single entry point the transport
// layer calls. Each request is an independent, stateless pass: resolve →
// classify → execute → normalize → return. Every stage either succeeds or
// substitutes a safe default, so the caller always gets a QueryResult and
// never an error.
type QueryEngine struct {
	resolver   *roles.Resolver
	classifier *classifier.IntentClassifier
	dispatcher *backend.Dispatcher
	logger     logger.Logger
}

func New(resolver *roles.Resolver, ic *classifier.IntentClassifier, dispatcher *backend.Dispatcher, log logger.Logger) *QueryEngine {
	return &QueryEngine{
		resolver:   resolver,
		classifier: ic,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "query_engine"}),
	}
}

// ProcessQuery answers a free-text query for the given user identity. An
// empty record list is the uniform signal for "not found / unavailable";
// callers that need to tell the two apart have to look at logs and metrics,
// not the return value.
func (e *QueryEngine) ProcessQuery(ctx context.Context, text, identity string) (result models.QueryResult) {
	requestID := uuid.NewString()
	start := time.Now()

	log := e.logger.WithFields(map[string]interface{}{"requestId": requestID})

	// The no-exceptions contract covers programming mistakes too; a panic
	// anywhere below becomes an empty low-confidence result.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic recovered in query processing", map[string]interface{}{
				"panic": r,
			})
			result = models.QueryResult{
				RequestID: requestID,
				Records:   []models.Record{},
			}
		}
	}()

	scope := e.resolver.ScopeFor(identity)

	intent := e.classifier.Classify(ctx, text)

	// A recruiter scope with no identity to pin to would be unrestricted by
	// accident; an empty result is the only safe answer.
	if scope.Role == models.RoleRecruiter && scope.OwnerFilter == "" {
		log.Warn("blank identity for recruiter scope, returning empty result", nil)
		return models.QueryResult{
			RequestID:  requestID,
			Records:    []models.Record{},
			Confidence: intent.Confidence,
			Intent:     intent,
		}
	}

	log.Info("query classified", map[string]interface{}{
		"role":       string(scope.Role),
		"intentType": string(intent.Type),
		"collection": string(intent.Collection),
		"confidence": intent.Confidence,
		"source":     string(intent.Source),
	})

	raw := e.dispatcher.Execute(ctx, intent, scope)
	records := normalize.Records(raw)

	metrics.QueriesProcessed.WithLabelValues(
		string(intent.Collection), string(intent.Type), string(intent.Source),
	).Inc()
	metrics.QueryDuration.WithLabelValues(string(intent.Collection)).
		Observe(time.Since(start).Seconds())

	log.Info("query processed", map[string]interface{}{
		"records":    len(records),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return models.QueryResult{
		RequestID:  requestID,
		Records:    records,
		Count:      len(records),
		Confidence: intent.Confidence,
		Intent:     intent,
	}
}
