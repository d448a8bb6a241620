package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingCredential indicates that a required API key is not configured
	ErrMissingCredential = errors.New("missing credential")

	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")
)

// ValidationError represents a validation error with detailed field information.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ConfigurationError reports a setting that must be fixed before the
// operation can run, such as a missing LLM API key.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// MissingCredential returns a ConfigurationError for an unset credential.
func MissingCredential(setting string) error {
	return &ConfigurationError{Setting: setting, Err: ErrMissingCredential}
}
