package init

import (
	"errors"
	"fmt"
	"io"
)

// ErrorType represents the type of initialization error
type ErrorType int

const (
	// ErrorTypeConfig indicates a configuration file error
	ErrorTypeConfig ErrorType = iota
	// ErrorTypeTracker indicates the tracker could not be reached with the new settings
	ErrorTypeTracker
	// ErrorTypeFileSystem indicates a file system error
	ErrorTypeFileSystem
	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation
)

// InitError represents an initialization error with context
type InitError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *InitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *InitError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error
func NewConfigError(message string, cause error) *InitError {
	return &InitError{
		Type:    ErrorTypeConfig,
		Message: message,
		Cause:   cause,
	}
}

// NewTrackerError creates a new tracker connection error
func NewTrackerError(message string, cause error) *InitError {
	return &InitError{
		Type:    ErrorTypeTracker,
		Message: message,
		Cause:   cause,
	}
}

// NewFileSystemError creates a new file system error
func NewFileSystemError(message string, cause error) *InitError {
	return &InitError{
		Type:    ErrorTypeFileSystem,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *InitError {
	return &InitError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   nil,
	}
}

// HandleInitError prints a hint matching the error type
func HandleInitError(w io.Writer, err error) {
	if err == nil {
		return
	}

	var e *InitError
	if !errors.As(err, &e) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	switch e.Type {
	case ErrorTypeConfig:
		fmt.Fprintf(w, "Configuration error: %v\n", e)
		fmt.Fprintln(w, "Please check your .srs-exporter.yml file format and try again.")
	case ErrorTypeTracker:
		fmt.Fprintf(w, "Tracker error: %v\n", e)
		fmt.Fprintln(w, "The configuration was saved. Check the endpoint, collection and credentials, then run 'srs-exporter list'.")
	case ErrorTypeFileSystem:
		fmt.Fprintf(w, "File system error: %v\n", e)
		fmt.Fprintln(w, "Please check file permissions and available disk space.")
	case ErrorTypeValidation:
		fmt.Fprintf(w, "Validation error: %v\n", e)
	default:
		fmt.Fprintf(w, "Error: %v\n", e)
	}
}
