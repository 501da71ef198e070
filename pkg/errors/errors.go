package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Structure errors
	ErrStructureCollision ErrorCode = "STRUCTURE_COLLISION"
	ErrCommandCollision   ErrorCode = "COMMAND_COLLISION"

	// Settings errors
	ErrSettingsInvalid  ErrorCode = "SETTINGS_INVALID"
	ErrSettingsRequired ErrorCode = "SETTINGS_REQUIRED"

	// Extension errors
	ErrExtensionNotFound ErrorCode = "EXTENSION_NOT_FOUND"
	ErrExtensionLoad     ErrorCode = "EXTENSION_LOAD"
	ErrExtensionInvalid  ErrorCode = "EXTENSION_INVALID"
	ErrExtensionCycle    ErrorCode = "EXTENSION_CYCLE"
	ErrPostInit          ErrorCode = "POST_INIT"

	// Dependency errors
	ErrDependencyMismatch ErrorCode = "DEPENDENCY_MISMATCH"
	ErrPackageJSON        ErrorCode = "PACKAGE_JSON"

	// Hook errors
	ErrHookNotFound  ErrorCode = "HOOK_NOT_FOUND"
	ErrHookArguments ErrorCode = "HOOK_ARGUMENTS"
	ErrActionExecute ErrorCode = "ACTION_EXECUTE"

	// Command errors
	ErrCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCommandExecute  ErrorCode = "COMMAND_EXECUTE"
)

// RocError represents a structured error with code and details
type RocError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RocError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RocError) Unwrap() error {
	return e.Wrapped
}

// Is matches on error code so sentinel values can be compared with errors.Is
func (e *RocError) Is(target error) bool {
	var targetErr *RocError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RocError with the given code and message
func New(code ErrorCode, message string) *RocError {
	return &RocError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RocError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RocError {
	return &RocError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RocError
func Wrap(err error, code ErrorCode, message string) *RocError {
	if err == nil {
		return nil
	}
	return &RocError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RocError {
	if err == nil {
		return nil
	}
	return &RocError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RocError) WithDetail(key string, value interface{}) *RocError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithExtension records the extension responsible for the error.
// An extension already recorded by an inner error is kept.
func (e *RocError) WithExtension(name string) *RocError {
	if _, ok := e.Details["extension"]; ok {
		return e
	}
	return e.WithDetail("extension", name)
}

// DetailString renders the details sorted by key, used for log output
func (e *RocError) DetailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
	}
	return strings.Join(parts, " ")
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rocErr *RocError
	if errors.As(err, &rocErr) {
		return rocErr.Code == code
	}
	return false
}

// HasErrorCode reports whether any RocError in the chain carries the code
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var rocErr *RocError
		if !errors.As(err, &rocErr) {
			return false
		}
		if rocErr.Code == code {
			return true
		}
		err = rocErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RocError
func GetErrorCode(err error) ErrorCode {
	var rocErr *RocError
	if errors.As(err, &rocErr) {
		return rocErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RocError
func GetErrorDetails(err error) map[string]interface{} {
	var rocErr *RocError
	if errors.As(err, &rocErr) {
		return rocErr.Details
	}
	return nil
}
