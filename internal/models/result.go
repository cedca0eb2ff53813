// internal/models/result.go
package models

// Record is one normalized result row: a flat field-name → value mapping with
// all temporal values already serialized to ISO-8601 text.
type Record map[string]interface{}

// QueryResult is what the engine hands back to the transport layer. It is
// constructed once per request and never mutated afterwards. An empty Records
// slice is the uniform signal for "not found / unavailable".
type QueryResult struct {
	RequestID  string   `json:"requestId"`
	Records    []Record `json:"records"`
	Count      int      `json:"count"`
	Confidence float64  `json:"confidence"`
	Intent     Intent   `json:"intent"`
}
