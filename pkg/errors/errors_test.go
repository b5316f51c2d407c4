package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppError(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewAppError(ErrUploadRejected, "upload rejected", cause)

	assert.Equal(t, ErrUploadRejected, err.Code)
	assert.Equal(t, "upload rejected", err.Message)
	assert.Equal(t, "The upload was rejected by the hosting service.", err.GetUserMessage())
	assert.Equal(t, cause, err.Unwrap())
	assert.False(t, err.Timestamp.IsZero())
	assert.Contains(t, err.Error(), "UPLOAD_REJECTED")
	assert.Contains(t, err.Error(), "underlying failure")
}

func TestNewRemoteErrorPreservesServerResponse(t *testing.T) {
	err := NewRemoteError(ErrUploadRejected, 403, "Blocked file type.")

	// The host's own wording reaches the user unchanged
	assert.Equal(t, "Error 403: Blocked file type.", err.GetUserMessage())
	assert.Equal(t, 403, err.Context["http_status"])
	assert.Equal(t, "Blocked file type.", err.Context["response_body"])
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrStorageError, "ignored"))

	cause := fmt.Errorf("disk full")
	err := WrapError(cause, ErrStorageError, "write failed")
	assert.Equal(t, ErrStorageError, err.Code)
	assert.True(t, stderrors.Is(err, cause))

	// Wrapping an AppError without a code keeps the original
	original := NewAppError(ErrRecordNotFound, "missing", nil)
	assert.Equal(t, original, WrapError(original, "", "outer"))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"app error passes through", NewAppError(ErrFileTooBig, "too big", nil), ErrFileTooBig},
		{"wrapped app error", fmt.Errorf("outer: %w", NewAppError(ErrTokenMissing, "no token", nil)), ErrTokenMissing},
		{"context canceled", context.Canceled, ErrUploadCanceled},
		{"context deadline", context.DeadlineExceeded, ErrConnectionTimeout},
		{"missing file", fmt.Errorf("open /x/y: no such file or directory"), ErrFileNotFound},
		{"sql no rows", fmt.Errorf("sql: no rows in result set"), ErrRecordNotFound},
		{"database failure", fmt.Errorf("database is locked"), ErrStorageError},
		{"anything else", fmt.Errorf("boom"), ErrUnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(tt.err)
			require.NotNil(t, classified)
			assert.Equal(t, tt.code, classified.Code)
		})
	}

	assert.Nil(t, ClassifyError(nil))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrFileEmpty, CodeOf(NewAppError(ErrFileEmpty, "empty", nil)))
	assert.Equal(t, ErrUnknownError, CodeOf(fmt.Errorf("plain")))
}

func TestIsCode(t *testing.T) {
	err := NewAppError(ErrUploadInFlight, "busy", nil)
	assert.True(t, IsCode(err, ErrUploadInFlight))
	assert.False(t, IsCode(err, ErrUploadCanceled))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrUploadInFlight))

	wrapped := fmt.Errorf("start: %w", err)
	assert.True(t, IsCode(wrapped, ErrUploadInFlight))
}

func TestIsCanceled(t *testing.T) {
	assert.True(t, IsCanceled(context.Canceled))
	assert.True(t, IsCanceled(NewAppError(ErrUploadCanceled, "canceled", nil)))
	assert.True(t, IsCanceled(fmt.Errorf("request: %w", context.Canceled)))
	assert.False(t, IsCanceled(fmt.Errorf("boom")))
	assert.False(t, IsCanceled(context.DeadlineExceeded))
}

func TestUserMessageFallsBackToMessage(t *testing.T) {
	err := NewAppError(ErrUnknownError, "specific detail", nil)
	assert.Equal(t, "specific detail", err.GetUserMessage())

	err = NewAppError(ErrUnknownError, "", nil)
	assert.Equal(t, "An unexpected error occurred. Please try again.", err.GetUserMessage())
}
