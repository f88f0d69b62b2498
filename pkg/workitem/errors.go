package workitem

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType int

const (
	// ErrorTypeValidation indicates invalid query input
	ErrorTypeValidation ErrorType = iota
	// ErrorTypeConfiguration indicates a configuration error
	ErrorTypeConfiguration
	// ErrorTypePermission indicates the tracker rejected the credentials
	ErrorTypePermission
	// ErrorTypeNetwork indicates a network connectivity error
	ErrorTypeNetwork
	// ErrorTypeNotFound indicates the collection or project does not exist
	ErrorTypeNotFound
	// ErrorTypeAPI indicates a general API error
	ErrorTypeAPI
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypePermission:
		return "permission"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeNotFound:
		return "not_found"
	default:
		return "api"
	}
}

// FetchError represents a structured error with type and suggestion
type FetchError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
}

// Error implements the error interface
func (e *FetchError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	msg := strings.Join(parts, ": ")
	if e.Suggestion != "" {
		msg += "\n💡 " + e.Suggestion
	}
	return msg
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a FetchError of the same type
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinels for errors.Is checks against an error class
var (
	ErrPermission = &FetchError{Type: ErrorTypePermission}
	ErrNetwork    = &FetchError{Type: ErrorTypeNetwork}
	ErrNotFound   = &FetchError{Type: ErrorTypeNotFound}
	ErrValidation = &FetchError{Type: ErrorTypeValidation}
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *FetchError {
	return &FetchError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check the project name and query options and try again",
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string, cause error) *FetchError {
	return &FetchError{
		Type:       ErrorTypeConfiguration,
		Message:    message,
		Cause:      cause,
		Suggestion: "Run 'srs-exporter init' to create or update your configuration",
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(message string, cause error) *FetchError {
	return &FetchError{
		Type:       ErrorTypePermission,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check the username and password, or store a new one with 'srs-exporter auth set'",
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *FetchError {
	return &FetchError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check that the server endpoint is reachable and try again",
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, cause error) *FetchError {
	return &FetchError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		Cause:      cause,
		Suggestion: fmt.Sprintf("Check that the %s exists and you have access to it", resource),
	}
}

// NewAPIError creates a new general API error
func NewAPIError(message string, cause error) *FetchError {
	return &FetchError{
		Type:       ErrorTypeAPI,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check the server logs or the api_version setting and try again",
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, message string) *FetchError {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		// Fold the inner message in so the suggestion is printed once
		return &FetchError{
			Type:       fetchErr.Type,
			Message:    message + ": " + fetchErr.Message,
			Cause:      fetchErr.Cause,
			Suggestion: fetchErr.Suggestion,
		}
	}

	return NewAPIError(message, err)
}
