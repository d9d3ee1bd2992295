// Package errors provides structured error types for Heddle.
// Errors carry a code, a category, key-value context and remediation hints.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryData       Category = "data"       // Dataset shape and content errors
	CategorySelection  Category = "selection"  // Out-of-range interaction requests
	CategoryConfig     Category = "config"     // Configuration loading/parsing errors
	CategoryValidation Category = "validation" // Input validation errors
	CategoryRender     Category = "render"     // Scene and export errors
	CategoryNetwork    Category = "network"    // Host transport errors
	CategoryIO         Category = "io"         // File/IO errors
	CategoryInternal   Category = "internal"   // Internal/unexpected errors
)

// HeddleError is a structured error with context and suggestions.
type HeddleError struct {
	// Code is a unique identifier for this error type (e.g., "MALFORMED_TENSOR")
	Code string

	// Category classifies this error for consistent handling
	Category Category

	// Message describes what went wrong
	Message string

	// Context provides additional key-value details
	Context map[string]string

	// Cause is the underlying error, if any
	Cause error

	// Suggestions are actionable remediation steps
	Suggestions []string

	// Recovered marks errors that were handled locally (clamped, ignored)
	// and only reported for logging.
	Recovered bool
}

// Error implements the error interface.
func (e *HeddleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *HeddleError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target. Two HeddleErrors match if they
// share the same Code.
func (e *HeddleError) Is(target error) bool {
	if t, ok := target.(*HeddleError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new HeddleError with the given code, category, and message.
func New(code string, category Category, message string) *HeddleError {
	return &HeddleError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *HeddleError) WithContext(key, value string) *HeddleError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithContextInt is WithContext for integer values.
func (e *HeddleError) WithContextInt(key string, value int) *HeddleError {
	return e.WithContext(key, fmt.Sprintf("%d", value))
}

// WithCause wraps an underlying error.
func (e *HeddleError) WithCause(cause error) *HeddleError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a remediation suggestion.
func (e *HeddleError) WithSuggestion(suggestion string) *HeddleError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple remediation suggestions.
func (e *HeddleError) WithSuggestions(suggestions ...string) *HeddleError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// MarkRecovered flags the error as handled locally.
func (e *HeddleError) MarkRecovered() *HeddleError {
	e.Recovered = true
	return e
}

// HasContext returns true if the error has context information.
func (e *HeddleError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *HeddleError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries as sorted key="value" pairs.
func (e *HeddleError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, e.Context[k]))
	}
	return strings.Join(parts, ", ")
}

// Wrap wraps an existing error with a HeddleError.
func Wrap(err error, code string, category Category, message string) *HeddleError {
	return New(code, category, message).WithCause(err)
}

// AsHeddleError attempts to convert an error to a HeddleError.
func AsHeddleError(err error) (*HeddleError, bool) {
	if err == nil {
		return nil, false
	}
	if he, ok := err.(*HeddleError); ok {
		return he, true
	}
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return AsHeddleError(u.Unwrap())
	}
	return nil, false
}

// IsCategory checks if an error is a HeddleError with the given category.
func IsCategory(err error, category Category) bool {
	if he, ok := AsHeddleError(err); ok {
		return he.Category == category
	}
	return false
}

// IsCode checks if an error is a HeddleError with the given code.
func IsCode(err error, code string) bool {
	if he, ok := AsHeddleError(err); ok {
		return he.Code == code
	}
	return false
}

// IsRecovered reports whether err is a HeddleError marked as recovered.
func IsRecovered(err error) bool {
	if he, ok := AsHeddleError(err); ok {
		return he.Recovered
	}
	return false
}
