// Package apperrors provides typed errors for request validation, missing
// market data, and upstream provider failures.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors
var (
	ErrMissingAPIKey      = errors.New("required API key is not configured")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrNotFound           = errors.New("resource not found")
)

// ValidationError represents malformed or empty request input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DataUnavailableError means an otherwise successful provider response is
// missing a required snapshot, quote, Greek set, or price field.
type DataUnavailableError struct {
	Subject string // the leg, ticker, or snapshot the data was needed for
	Missing string // the field or record that was absent
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for %s: missing %s", e.Subject, e.Missing)
}

// NewDataUnavailableError creates a new DataUnavailableError.
func NewDataUnavailableError(subject, missing string) *DataUnavailableError {
	return &DataUnavailableError{Subject: subject, Missing: missing}
}

// ProviderError represents a non-success HTTP status or a transport-level
// failure from an upstream market data provider.
type ProviderError struct {
	Provider string
	Status   int // upstream HTTP status, 0 for transport failures
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider string, status int, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Status: status, Message: message, Err: err}
}

// StatusCode maps an error to the HTTP status class the entrypoint should
// answer with. Validation and missing-data failures are client errors;
// provider failures proxy the upstream status or fall back to 502.
func StatusCode(err error) int {
	var ve *ValidationError
	var de *DataUnavailableError
	var pe *ProviderError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &de):
		return http.StatusBadRequest
	case errors.As(err, &pe):
		if pe.Status >= 400 {
			return pe.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
