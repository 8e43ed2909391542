package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *SysError
		expected string
	}{
		{
			name:     "code and message",
			err:      NewExecError(ErrCodeCommandFailed, "command exited non-zero", nil),
			expected: "[ERR_COMMAND_FAILED] command exited non-zero",
		},
		{
			name:     "path included",
			err:      ErrFileNotFound("/tmp/missing.txt"),
			expected: "[ERR_FILE_NOT_FOUND] /tmp/missing.txt file not found",
		},
		{
			name:     "cause appended",
			err:      NewVenvError(ErrCodePipMissing, "pip not found", fmt.Errorf("exec: no such file")),
			expected: "[ERR_PIP_MISSING] pip not found: exec: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := NewBuildError(ErrCodeBuildFailed, "packaging failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestIsMatchesTypeAndCode(t *testing.T) {
	err := NewVenvError(ErrCodeNotAVenv, "not a virtual environment", nil)
	wrapped := fmt.Errorf("remove failed: %w", err)

	assert.True(t, stderrors.Is(wrapped, NewVenvError(ErrCodeNotAVenv, "", nil)))
	assert.False(t, stderrors.Is(wrapped, NewVenvError(ErrCodeVenvExists, "", nil)))
	assert.False(t, stderrors.Is(wrapped, NewIOError(ErrCodeNotAVenv, "", nil)))
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("fetch: %w", ErrHTTPStatus("http://example.com", 503))

	assert.True(t, IsType(err, ErrorTypeNetwork))
	assert.False(t, IsType(err, ErrorTypeIO))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeNetwork))
}

func TestRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewExecError(ErrCodeCommandFailed, "boom", nil)))
	assert.False(t, IsRecoverable(NewIOError(ErrCodeInvalidPath, "bad path", nil)))
	assert.False(t, IsRecoverable(stderrors.New("plain")))
}

func TestWithContext(t *testing.T) {
	err := ErrCommandTimeout("sleep 100", nil)

	require.NotNil(t, err.Context)
	assert.Equal(t, "sleep 100", err.Context["command"])

	err.WithContext("timeout_s", 5)
	assert.Equal(t, 5, err.Context["timeout_s"])
}
