// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewAuditAppendError("insert failed")
	assert.Contains(t, err.Error(), "AUDIT_APPEND_FAILED")
	assert.Contains(t, err.Error(), "audit log")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewAuditAppendError("x")))
	assert.True(t, IsRetryable(NewStoreUnavailableError("redis", "x")))
	assert.False(t, IsRetryable(NewChannelError(ErrCodeMailSendFailed, "x", nil)))
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}
