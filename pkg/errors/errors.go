package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the kind of fault raised while driving the browser
type ErrorType string

const (
	ErrorTypeNavigation      ErrorType = "navigation"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeExtractionEmpty ErrorType = "extraction_empty"
	ErrorTypeSink            ErrorType = "sink"
	ErrorTypeSessionFatal    ErrorType = "session_fatal"
	ErrorTypeAuth            ErrorType = "auth"
	ErrorTypeConfig          ErrorType = "config"
	ErrorTypeUnknown         ErrorType = "unknown"
)

// Error is a typed fault with an optional underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error without a cause
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around cause. A nil cause yields nil.
func Wrap(t ErrorType, cause error, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Type: t, Message: message, Cause: cause}
}

// TypeOf returns the type of the outermost typed error in the chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether any error in the chain has the given type
func IsType(err error, t ErrorType) bool {
	for err != nil {
		var typed *Error
		if !errors.As(err, &typed) {
			return false
		}
		if typed.Type == t {
			return true
		}
		err = typed.Cause
	}
	return false
}

// IsFatal reports whether err means the browser session can no longer be used.
// Only this condition may end a batch early.
func IsFatal(err error) bool {
	return IsType(err, ErrorTypeSessionFatal)
}
