// Package apperrors defines the application error taxonomy shared by
// handlers, services, and the dispatch layer. Every error carries a stable
// string code so routers can log and render it uniformly.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application failure.
type ErrorCode string

const (
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION"
	CodeDelivery     ErrorCode = "DELIVERY"
	CodeInternal     ErrorCode = "INTERNAL"
)

// Error is the canonical application error.
type Error struct {
	ErrCode ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Code exposes the error code as a string; the telegram router picks this up
// when writing handler summaries.
func (e *Error) Code() string { return string(e.ErrCode) }

// New constructs an error with a code and message.
func New(code ErrorCode, message string) error {
	return &Error{ErrCode: code, Message: message}
}

// Wrap attaches a cause to a coded error.
func Wrap(code ErrorCode, message string, cause error) error {
	return &Error{ErrCode: code, Message: message, Cause: cause}
}

// Unauthorized marks an action attempted without the required privileges.
func Unauthorized(msg string) error { return New(CodeUnauthorized, msg) }

// NotFound marks a reference to an entity that no longer exists.
func NotFound(msg string) error { return New(CodeNotFound, msg) }

// Validation marks user input that failed a handler check.
func Validation(msg string) error { return New(CodeValidation, msg) }

// Delivery marks an outbound message that could not be delivered.
func Delivery(msg string, cause error) error { return Wrap(CodeDelivery, msg, cause) }

// Internal marks an unexpected failure, usually a store error.
func Internal(msg string, cause error) error { return Wrap(CodeInternal, msg, cause) }

// Reason returns the human-readable message without the cause chain,
// falling back to the full error text for foreign errors.
func Reason(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// CodeOf extracts the code from err, or CodeUnknown for foreign errors.
func CodeOf(err error) ErrorCode {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.ErrCode
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return Is(err, CodeNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return Is(err, CodeValidation) }
