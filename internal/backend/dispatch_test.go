// internal/backend/dispatch_test.go
package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"well-query-engine/internal/common/logger"
	"well-query-engine/internal/common/zoho"
	"well-query-engine/internal/models"
)

// fakeCRM scripts the CRM backend and records the criteria it was asked for.
type fakeCRM struct {
	deals    []map[string]interface{}
	meetings []map[string]interface{}
	err      error

	lastCriteria zoho.SearchCriteria
}

func (f *fakeCRM) SearchDeals(_ context.Context, criteria zoho.SearchCriteria) ([]map[string]interface{}, error) {
	f.lastCriteria = criteria
	return f.deals, f.err
}

func (f *fakeCRM) SearchMeetings(_ context.Context, criteria zoho.SearchCriteria) ([]map[string]interface{}, error) {
	f.lastCriteria = criteria
	return f.meetings, f.err
}

func newTestDispatcher(t *testing.T, crm CRMSearcher) (*Dispatcher, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewCandidateStore(db, 500, 2*time.Second)
	return NewDispatcher(store, crm, 500, logger.NewNoOpLogger()), mock
}

func TestDispatcher_Execute_CandidatesList(t *testing.T) {
	d, mock := newTestDispatcher(t, &fakeCRM{})

	mock.ExpectQuery(`SELECT .+ FROM candidates ORDER BY modified_at DESC LIMIT \$1`).
		WithArgs(500).
		WillReturnRows(candidateRow(mock, "TWAV115357", "maria@emailthewell.com"))

	intent := models.Intent{Type: models.IntentList, Collection: models.CollectionCandidates}
	records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

	require.Len(t, records, 1)
	assert.Equal(t, "TWAV115357", records[0]["locator"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatcher_Execute_CountMatchesList(t *testing.T) {
	crm := &fakeCRM{deals: []map[string]interface{}{
		{"id": "d-1", "amount": 1000.0},
		{"id": "d-2", "amount": 2500.0},
		{"id": "d-3", "amount": 400.0},
	}}
	d, _ := newTestDispatcher(t, crm)
	scope := models.QueryScope{Role: models.RoleExecutive}

	listed := d.Execute(context.Background(), models.Intent{Type: models.IntentList, Collection: models.CollectionDeals}, scope)
	counted := d.Execute(context.Background(), models.Intent{Type: models.IntentCount, Collection: models.CollectionDeals}, scope)

	require.Len(t, counted, 1)
	assert.Equal(t, len(listed), counted[0]["count"], "count and list run the same filtered query")
}

func TestDispatcher_Execute_Aggregate(t *testing.T) {
	crm := &fakeCRM{deals: []map[string]interface{}{
		{"id": "d-1", "amount": 1000.0},
		{"id": "d-2", "amount": 2000.0},
		{"id": "d-3", "amount": "not a number"},
		{"id": "d-4"},
	}}
	d, _ := newTestDispatcher(t, crm)

	intent := models.Intent{
		Type:       models.IntentAggregate,
		Collection: models.CollectionDeals,
		Entities:   models.Entities{AggregateField: "amount"},
	}
	records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

	require.Len(t, records, 1)
	summary := records[0]
	assert.Equal(t, "amount", summary["field"])
	assert.Equal(t, 2, summary["count"], "non-numeric rows are skipped")
	assert.Equal(t, 3000.0, summary["sum"])
	assert.Equal(t, 1500.0, summary["avg"])
}

func TestDispatcher_Execute_AggregateEmpty(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeCRM{deals: []map[string]interface{}{}})

	intent := models.Intent{
		Type:       models.IntentAggregate,
		Collection: models.CollectionDeals,
		Entities:   models.Entities{AggregateField: "amount"},
	}
	records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0]["avg"], "empty input must not divide by zero")
}

func TestDispatcher_Execute_ScopeReachesCRM(t *testing.T) {
	crm := &fakeCRM{meetings: []map[string]interface{}{{"id": "m-1", "owner": "MARIA@EMAILTHEWELL.COM"}}}
	d, _ := newTestDispatcher(t, crm)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	intent := models.Intent{
		Type:       models.IntentList,
		Collection: models.CollectionMeetings,
		Entities:   models.Entities{FromDate: &from},
	}
	scope := models.QueryScope{Role: models.RoleRecruiter, OwnerFilter: "maria@emailthewell.com"}

	records := d.Execute(context.Background(), intent, scope)

	assert.Equal(t, "maria@emailthewell.com", crm.lastCriteria.OwnerEmail)
	require.NotNil(t, crm.lastCriteria.From)
	assert.Equal(t, from, *crm.lastCriteria.From)
	assert.Equal(t, 500, crm.lastCriteria.Limit)
	require.Len(t, records, 1)
	assert.Equal(t, "maria@emailthewell.com", records[0]["owner"], "owner fields are normalized on the way out")
}

func TestDispatcher_Execute_UnknownCollection(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeCRM{})

	intent := models.Intent{Type: models.IntentList, Collection: models.Collection("invoices")}
	records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDispatcher_Execute_BackendFailure(t *testing.T) {
	t.Run("crm outage degrades to empty", func(t *testing.T) {
		d, _ := newTestDispatcher(t, &fakeCRM{err: errors.New("zoho: status 502")})

		intent := models.Intent{Type: models.IntentList, Collection: models.CollectionDeals}
		records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("database outage degrades to empty", func(t *testing.T) {
		d, mock := newTestDispatcher(t, &fakeCRM{})
		mock.ExpectQuery(`SELECT .+ FROM candidates`).WillReturnError(errors.New("connection refused"))

		intent := models.Intent{Type: models.IntentList, Collection: models.CollectionCandidates}
		records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

		assert.NotNil(t, records)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count of a failed query is zero", func(t *testing.T) {
		d, _ := newTestDispatcher(t, &fakeCRM{err: errors.New("zoho: timeout")})

		intent := models.Intent{Type: models.IntentCount, Collection: models.CollectionDeals}
		records := d.Execute(context.Background(), intent, models.QueryScope{Role: models.RoleExecutive})

		require.Len(t, records, 1)
		assert.Equal(t, 0, records[0]["count"])
	})
}

func TestCRMCriteria_WordPreference(t *testing.T) {
	scope := models.QueryScope{Role: models.RoleExecutive}

	criteria := crmCriteria(models.Entities{SearchTerms: "Acme", Location: "Chicago"}, scope, 100)
	assert.Equal(t, "Acme", criteria.Word, "explicit search terms beat the location")

	criteria = crmCriteria(models.Entities{Location: "Chicago"}, scope, 100)
	assert.Equal(t, "Chicago", criteria.Word)
}
