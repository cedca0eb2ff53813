// Package normalize converts heterogeneous backend result shapes into the
// flat record contract the transport layer consumes. Every temporal value is
// serialized to ISO-8601 here; no raw time.Time reaches the wire.
package normalize

import (
	"time"

	"well-query-engine/internal/models"
)

// Records normalizes a batch. Inputs are never mutated; every output map is
// freshly allocated.
func Records(raw []map[string]interface{}) []models.Record {
	out := make([]models.Record, 0, len(raw))
	for _, record := range raw {
		out = append(out, Record(record))
	}
	return out
}

// Record normalizes one row.
func Record(raw map[string]interface{}) models.Record {
	record := make(models.Record, len(raw))
	for key, value := range raw {
		record[key] = normalizeValue(value)
	}
	return record
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(time.RFC3339)
	case map[string]interface{}:
		// API records can nest (owner objects, lookups); serialization
		// applies all the way down.
		nested := make(map[string]interface{}, len(v))
		for key, inner := range v {
			nested[key] = normalizeValue(inner)
		}
		return nested
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, inner := range v {
			items[i] = normalizeValue(inner)
		}
		return items
	default:
		return value
	}
}
