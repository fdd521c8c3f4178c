package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Contract violation codes. These are raised to the caller as fatal.
const (
	ErrEmptyInput        ErrorCode = "EMPTY_INPUT"
	ErrCyclicDependency  ErrorCode = "CYCLIC_DEPENDENCY"
	ErrInvalidTransition ErrorCode = "INVALID_TRANSITION"
)

// Recoverable runtime codes. These are absorbed locally and recorded.
const (
	ErrWorkerFailed       ErrorCode = "WORKER_FAILED"
	ErrWorkerTimeout      ErrorCode = "WORKER_TIMEOUT"
	ErrBudgetExhausted    ErrorCode = "BUDGET_EXHAUSTED"
	ErrUnresolvedConflict ErrorCode = "UNRESOLVED_CONFLICT"
	ErrPersistFailed      ErrorCode = "PERSIST_FAILED"
	ErrSessionClosed      ErrorCode = "SESSION_CLOSED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	// Fatal marks contract violations that must abort the session.
	Fatal bool  `json:"fatal"`
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Fatal:   code == ErrEmptyInput || code == ErrCyclicDependency || code == ErrInvalidTransition,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// IsFatal reports whether err carries a contract-violation code.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal
	}
	return false
}

// CodeOf extracts the error code, or "" when err is not a *types.Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
