package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryAuth    Category = "auth"
	CategoryStorage Category = "storage"
	CategoryRouting Category = "routing"
	CategoryCLI     Category = "cli"
)

// ConsoleError is a structured error with an explanation and a suggestion.
type ConsoleError struct {
	// Code is a unique error identifier (e.g., "C201").
	Code string

	// Category is the error type (config, auth, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ConsoleError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ConsoleError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *ConsoleError) WithDetail(d string) *ConsoleError {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ConsoleError) WithSuggestion(s string) *ConsoleError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *ConsoleError) Wrap(err error) *ConsoleError {
	e.Wrapped = err
	return e
}

// New creates a ConsoleError from a registered error code.
func New(code string) *ConsoleError {
	template, ok := registry[code]
	if !ok {
		return &ConsoleError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ConsoleError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new ConsoleError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ConsoleError {
	return &ConsoleError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ConsoleError.
// An error that already is (or wraps) a ConsoleError is returned as that error.
func FromError(err error, code string) *ConsoleError {
	if err == nil {
		return nil
	}
	var ce *ConsoleError
	if errors.As(err, &ce) {
		return ce
	}
	return New(code).Wrap(err)
}
