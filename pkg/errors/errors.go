// Package errors provides structured error types for the phpswitch application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the switch pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages with remediation suggestions
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - REGISTRY_*: Package registry (Homebrew) query failures
//   - SERVICE_*: Background service lifecycle failures
//   - *_FAILED: Mutating operations that did not complete
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidVersion, "not a PHP version: %q", raw)
//	if errors.Is(err, errors.ErrCodeInvalidVersion) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRegistryUnavailable, origErr, "brew list failed")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidVersion Code = "INVALID_VERSION"
	ErrCodeInvalidInput   Code = "INVALID_INPUT"

	// Registry (Homebrew) errors
	ErrCodeRegistryUnavailable Code = "REGISTRY_UNAVAILABLE"
	ErrCodeRegistryTimeout     Code = "REGISTRY_TIMEOUT"

	// Version state errors
	ErrCodeVersionNotInstalled Code = "VERSION_NOT_INSTALLED"
	ErrCodePinNotFound         Code = "PIN_NOT_FOUND"
	ErrCodePathInconsistency   Code = "PATH_INCONSISTENCY"

	// Mutating operation errors
	ErrCodeInstallFailed     Code = "INSTALL_FAILED"
	ErrCodeUninstallFailed   Code = "UNINSTALL_FAILED"
	ErrCodeLinkFailed        Code = "LINK_FAILED"
	ErrCodeConfigWriteFailed Code = "CONFIG_WRITE_FAILED"

	// Service lifecycle errors
	ErrCodeServiceFailed  Code = "SERVICE_FAILED"
	ErrCodeServiceTimeout Code = "SERVICE_TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional cause, and an
// optional remediation suggestion shown to the user.
type Error struct {
	Code       Code   // Machine-readable error code
	Message    string // Human-readable message
	Suggestion string // Remediation hint (optional)
	Cause      error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithSuggestion attaches a remediation hint and returns the same error,
// allowing call-site chaining:
//
//	return errors.New(ErrCodeVersionNotInstalled, "PHP %s is not installed", v).
//	    WithSuggestion("run `phpswitch install %s` first", v)
func (e *Error) WithSuggestion(format string, args ...any) *Error {
	e.Suggestion = fmt.Sprintf(format, args...)
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetSuggestion extracts the remediation hint from an error, if available.
// Returns empty string if the error carries none.
func GetSuggestion(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
