// internal/backend/dispatch.go
package backend

import (
	"context"
	"errors"
	"fmt"

	stderrors "well-query-engine/internal/common/errors"
	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/common/metrics"
	"well-query-engine/internal/models"
)

var (
	ErrUnknownCollection = errors.New("UNRECOGNIZED_COLLECTION")
	ErrBackendQuery      = errors.New("BACKEND_QUERY_FAILED")
)

// Dispatcher routes a classified intent to the backend that owns its target
// collection and shapes the raw results for the intent type. Backend
// failures never propagate: the conversation degrades to "no results", and
// the outage is visible only in logs and metrics.
type Dispatcher struct {
	candidates *CandidateStore
	crm        CRMSearcher
	maxRows    int
	logger     logger.Logger
}

func NewDispatcher(candidates *CandidateStore, crm CRMSearcher, maxRows int, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		candidates: candidates,
		crm:        crm,
		maxRows:    maxRows,
		logger:     log.WithFields(map[string]interface{}{"component": "dispatcher"}),
	}
}

// Execute runs the intent under the given scope. It always returns a slice,
// possibly empty, never an error.
func (d *Dispatcher) Execute(ctx context.Context, intent models.Intent, scope models.QueryScope) []map[string]interface{} {
	records := d.guard(ctx, intent, scope)

	switch intent.Type {
	case models.IntentCount:
		// Counting reuses the filtered query so count and list can never
		// disagree.
		return []map[string]interface{}{{"count": len(records)}}
	case models.IntentAggregate:
		return aggregate(records, intent.Entities.AggregateField)
	default:
		return records
	}
}

// guard is the single place that applies the catch-log-return-empty policy
// to every backend call.
func (d *Dispatcher) guard(ctx context.Context, intent models.Intent, scope models.QueryScope) []map[string]interface{} {
	records, err := d.query(ctx, intent, scope)
	if err == nil {
		return records
	}

	code := stderrors.ErrCodeBackendQueryFailed
	if errors.Is(err, ErrUnknownCollection) {
		code = stderrors.ErrCodeUnrecognizedCollection
	} else if errors.Is(err, context.DeadlineExceeded) {
		code = stderrors.ErrCodeQueryTimeout
	}

	stdErr := stderrors.Wrap(code, err, map[string]interface{}{
		"collection": string(intent.Collection),
		"intentType": string(intent.Type),
		"ownerScope": scope.OwnerFilter != "",
	})
	metrics.BackendErrors.WithLabelValues(string(intent.Collection), string(code)).Inc()
	d.logger.Error("backend query failed, returning empty result", stdErr.Fields())

	return []map[string]interface{}{}
}

// query is the exhaustive dispatch over known collections. Adding a
// collection means adding a case here; the default case is the degradation
// path for intents that name something we cannot serve.
func (d *Dispatcher) query(ctx context.Context, intent models.Intent, scope models.QueryScope) ([]map[string]interface{}, error) {
	switch intent.Collection {
	case models.CollectionCandidates:
		return d.candidates.Search(ctx, intent.Entities, scope)
	case models.CollectionDeals:
		records, err := d.crm.SearchDeals(ctx, crmCriteria(intent.Entities, scope, d.maxRows))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendQuery, err)
		}
		return lowerOwnerFields(records), nil
	case models.CollectionMeetings:
		records, err := d.crm.SearchMeetings(ctx, crmCriteria(intent.Entities, scope, d.maxRows))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBackendQuery, err)
		}
		return lowerOwnerFields(records), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, intent.Collection)
	}
}

// aggregate sums and averages a named numeric field over the filtered rows,
// producing a single summary record. Rows without a usable numeric value for
// the field are skipped, not errors.
func aggregate(records []map[string]interface{}, field string) []map[string]interface{} {
	if field == "" {
		return []map[string]interface{}{{"count": len(records)}}
	}

	var (
		sum     float64
		counted int
	)
	for _, record := range records {
		if value, ok := numericValue(record[field]); ok {
			sum += value
			counted++
		}
	}

	summary := map[string]interface{}{
		"field": field,
		"count": counted,
		"sum":   sum,
	}
	if counted > 0 {
		summary["avg"] = sum / float64(counted)
	} else {
		summary["avg"] = 0.0
	}
	return []map[string]interface{}{summary}
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
