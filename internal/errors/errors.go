// Package errors defines the structured error types used across sysutil.
// Every failure surfaced by the library is a pass-through of an underlying
// platform call; these types only attach a category, a stable code, and the
// original cause so callers can match on them with errors.As/Is.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes sysutil errors by subsystem.
type ErrorType string

const (
	ErrorTypeExec       ErrorType = "exec"
	ErrorTypeEnv        ErrorType = "env"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeRegistry   ErrorType = "registry"
	ErrorTypeVenv       ErrorType = "venv"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
)

// SysError is a structured error with subsystem context.
type SysError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *SysError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SysError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinel comparisons work through wrapping.
func (e *SysError) Is(target error) bool {
	var t *SysError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *SysError) WithContext(key string, value interface{}) *SysError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath attaches the file or key path the failure relates to.
func (e *SysError) WithPath(path string) *SysError {
	e.Path = path

	return e
}

// Common error codes.
const (
	ErrCodeCommandFailed    = "ERR_COMMAND_FAILED"
	ErrCodeCommandNotFound  = "ERR_COMMAND_NOT_FOUND"
	ErrCodeCommandTimeout   = "ERR_COMMAND_TIMEOUT"
	ErrCodeInvalidArgument  = "ERR_INVALID_ARGUMENT"
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeFileExists       = "ERR_FILE_EXISTS"
	ErrCodeHTTPStatus       = "ERR_HTTP_STATUS"
	ErrCodeRegistryAccess   = "ERR_REGISTRY_ACCESS"
	ErrCodeUnsupportedOS    = "ERR_UNSUPPORTED_OS"
	ErrCodeVenvExists       = "ERR_VENV_EXISTS"
	ErrCodeVenvNotFound     = "ERR_VENV_NOT_FOUND"
	ErrCodeNotAVenv         = "ERR_NOT_A_VENV"
	ErrCodePipMissing       = "ERR_PIP_MISSING"
	ErrCodeBuildFailed      = "ERR_BUILD_FAILED"
	ErrCodePackagerMissing  = "ERR_PACKAGER_MISSING"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// NewExecError creates a process-execution error.
func NewExecError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeExec,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewEnvError creates an environment-variable error.
func NewEnvError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeEnv,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates a filesystem error.
func NewIOError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRegistryError creates a Windows registry error.
func NewRegistryError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeRegistry,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewVenvError creates a virtual-environment error.
func NewVenvError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeVenv,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewBuildError creates a packaging-build error.
func NewBuildError(code, message string, cause error) *SysError {
	return &SysError{
		Type:        ErrorTypeBuild,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *SysError {
	return &SysError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *SysError {
	return &SysError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var se *SysError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// IsType reports whether err is a SysError of the given type.
func IsType(err error, t ErrorType) bool {
	var se *SysError
	if errors.As(err, &se) {
		return se.Type == t
	}

	return false
}

// ErrUnsupportedOS reports an operation that only exists on another platform.
func ErrUnsupportedOS(op string) *SysError {
	return NewRegistryError(ErrCodeUnsupportedOS, op+" is only supported on windows", nil)
}

// ErrFileNotFound creates a missing-file error.
func ErrFileNotFound(path string) *SysError {
	return NewIOError(ErrCodeFileNotFound, "file not found", nil).WithPath(path)
}

// ErrCommandTimeout creates a timeout error for a child process.
func ErrCommandTimeout(command string, cause error) *SysError {
	return NewExecError(ErrCodeCommandTimeout, "command timed out", cause).
		WithContext("command", command)
}

// ErrHTTPStatus creates an error for a non-success HTTP response.
func ErrHTTPStatus(url string, status int) *SysError {
	return NewNetworkError(ErrCodeHTTPStatus, fmt.Sprintf("unexpected HTTP status %d", status), nil).
		WithContext("url", url)
}
