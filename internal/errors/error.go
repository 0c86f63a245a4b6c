package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// WidgetError is a structured error with a code, category, and fix
// suggestion.
type WidgetError struct {
	// Code is a unique error identifier (e.g., "W101").
	Code string

	// Category is the error type (runtime, protocol, etc.).
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
func (e *WidgetError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WidgetError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *WidgetError) WithDetail(d string) *WidgetError {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *WidgetError) WithSuggestion(s string) *WidgetError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *WidgetError) Wrap(err error) *WidgetError {
	e.Wrapped = err
	return e
}

// New creates a WidgetError from a registered error code.
func New(code string) *WidgetError {
	template, ok := registry[code]
	if !ok {
		return &WidgetError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &WidgetError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new WidgetError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *WidgetError {
	return &WidgetError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a WidgetError.
func FromError(err error, code string) *WidgetError {
	if err == nil {
		return nil
	}
	if we, ok := err.(*WidgetError); ok {
		return we
	}
	return New(code).Wrap(err)
}
