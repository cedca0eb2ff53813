// Package errors provides the standardized failure taxonomy for the query
// engine. Every absorbed failure is normalized to a StandardError before it
// is logged, so a backend outage is diagnosable even though the caller only
// ever sees an empty result set.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeModelUnavailable       ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeModelResponseInvalid   ErrorCode = "MODEL_RESPONSE_INVALID"
	ErrCodeBackendQueryFailed     ErrorCode = "BACKEND_QUERY_FAILED"
	ErrCodeQueryTimeout           ErrorCode = "QUERY_TIMEOUT"
	ErrCodeUnrecognizedCollection ErrorCode = "UNRECOGNIZED_COLLECTION"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Wrap normalizes any error to a StandardError, attaching metadata for
// structured logging.
func Wrap(code ErrorCode, err error, metadata map[string]interface{}) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      code,
		Message:   string(code),
		Details:   err.Error(),
		Retryable: isRetryable(code),
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// Fields flattens the error for the map-fields logger.
func (e *StandardError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode": string(e.Code),
		"retryable": e.Retryable,
	}
	if e.Details != "" {
		fields["details"] = e.Details
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	return fields
}

func isRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeBackendQueryFailed, ErrCodeQueryTimeout, ErrCodeModelUnavailable:
		return true
	}
	return false
}
