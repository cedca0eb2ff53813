// internal/normalize/normalizer_test.go
package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	modified := time.Date(2026, 8, 19, 14, 30, 0, 0, time.UTC)
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.FixedZone("CST", -6*3600))

	record := Record(map[string]interface{}{
		"id":         "c-1",
		"locator":    "TWAV115357",
		"modifiedAt": modified,
		"createdAt":  &created,
		"count":      3,
		"amount":     1500.5,
		"active":     true,
		"note":       nil,
	})

	assert.Equal(t, "2026-08-19T14:30:00Z", record["modifiedAt"])
	assert.Equal(t, "2026-01-05T09:00:00-06:00", record["createdAt"])
	assert.Equal(t, "c-1", record["id"])
	assert.Equal(t, 3, record["count"])
	assert.Equal(t, 1500.5, record["amount"])
	assert.Equal(t, true, record["active"])
	assert.Nil(t, record["note"])
}

func TestRecord_NestedStructures(t *testing.T) {
	when := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)

	record := Record(map[string]interface{}{
		"owner": map[string]interface{}{
			"email":     "maria@emailthewell.com",
			"lastLogin": when,
		},
		"touchpoints": []interface{}{
			when,
			map[string]interface{}{"at": when, "kind": "call"},
		},
	})

	owner, ok := record["owner"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-08-19T10:00:00Z", owner["lastLogin"])

	touchpoints, ok := record["touchpoints"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-08-19T10:00:00Z", touchpoints[0])
	nested, ok := touchpoints[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-08-19T10:00:00Z", nested["at"])
	assert.Equal(t, "call", nested["kind"])
}

func TestRecord_NilTimePointer(t *testing.T) {
	var nilTime *time.Time
	record := Record(map[string]interface{}{"deletedAt": nilTime})
	assert.Nil(t, record["deletedAt"])
}

func TestRecord_DoesNotMutateInput(t *testing.T) {
	when := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)
	input := map[string]interface{}{
		"modifiedAt": when,
		"owner":      map[string]interface{}{"lastLogin": when},
	}

	_ = Record(input)

	assert.Equal(t, when, input["modifiedAt"], "input map must stay untouched")
	owner := input["owner"].(map[string]interface{})
	assert.Equal(t, when, owner["lastLogin"])
}

func TestRecords(t *testing.T) {
	when := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)

	out := Records([]map[string]interface{}{
		{"id": "a", "modifiedAt": when},
		{"id": "b", "modifiedAt": when},
	})

	require.Len(t, out, 2)
	for _, record := range out {
		value, ok := record["modifiedAt"].(string)
		require.True(t, ok, "temporal values serialize to strings")
		parsed, err := time.Parse(time.RFC3339, value)
		require.NoError(t, err)
		assert.True(t, parsed.Equal(when))
	}
}

func TestRecords_Empty(t *testing.T) {
	out := Records(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
