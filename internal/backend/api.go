// internal/backend/api.go
package backend

import (
	"context"
	"strings"

	"well-query-engine/internal/common/zoho"
	"well-query-engine/internal/models"
)

// CRMSearcher is the slice of the Zoho client the dispatcher needs. The real
// implementation is zoho.Client; tests substitute a fake.
type CRMSearcher interface {
	SearchDeals(ctx context.Context, criteria zoho.SearchCriteria) ([]map[string]interface{}, error)
	SearchMeetings(ctx context.Context, criteria zoho.SearchCriteria) ([]map[string]interface{}, error)
}

// crmCriteria translates the intent's logical filters into the CRM's search
// syntax. The scope's owner filter rides along like any other criterion.
func crmCriteria(entities models.Entities, scope models.QueryScope, limit int) zoho.SearchCriteria {
	word := entities.SearchTerms
	if word == "" && entities.Location != "" {
		word = entities.Location
	}
	return zoho.SearchCriteria{
		From:       entities.FromDate,
		To:         entities.ToDate,
		OwnerEmail: scope.OwnerFilter,
		Word:       word,
		Limit:      limit,
	}
}

// lowerOwnerFields normalizes any owner email present in API records so the
// role-scoping invariant holds under the same case-insensitive comparison
// used everywhere else.
func lowerOwnerFields(records []map[string]interface{}) []map[string]interface{} {
	for _, record := range records {
		if owner, ok := record["owner"].(string); ok {
			record["owner"] = strings.ToLower(owner)
		}
	}
	return records
}
