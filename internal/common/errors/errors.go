// Package errors provides standardized error types for the dispatch engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Gating rejections: surfaced to the caller as a Result error string, never
// as a Go error out of Send.
const (
	ErrCodeEventNotFound    ErrorCode = "EVENT_NOT_FOUND"
	ErrCodeEventDisabled    ErrorCode = "EVENT_DISABLED"
	ErrCodeDuplicate        ErrorCode = "DUPLICATE_NOTIFICATION"
	ErrCodeEventRateLimited ErrorCode = "EVENT_RATE_LIMITED"
	ErrCodeUserRateLimited  ErrorCode = "USER_RATE_LIMITED"
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
)

// Channel delivery failures: logged, folded into per-channel booleans.
const (
	ErrCodeMailSendFailed   ErrorCode = "MAIL_SEND_FAILED"
	ErrCodeBroadcastFailed  ErrorCode = "BROADCAST_FAILED"
	ErrCodePushSendFailed   ErrorCode = "PUSH_SEND_FAILED"
	ErrCodeInAppWriteFailed ErrorCode = "INAPP_WRITE_FAILED"
)

// Persistence failures.
const (
	ErrCodeAuditAppendFailed ErrorCode = "AUDIT_APPEND_FAILED"
	ErrCodeStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"
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

// NewAuditAppendError wraps the one failure class that is allowed to escape
// Send: losing the audit trail silently is worse than a visible failure.
func NewAuditAppendError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditAppendFailed,
		Message:   "Failed to append notification audit log",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError marks an infrastructure store as unreachable.
func NewStoreUnavailableError(store, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   fmt.Sprintf("Store unavailable: %s", store),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelError records a per-channel delivery failure for operational
// logging. It never propagates out of a ChannelSender.
func NewChannelError(code ErrorCode, details string, metadata map[string]interface{}) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "Channel delivery failed",
		Details:   details,
		Retryable: false,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
