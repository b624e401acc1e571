package errors

import (
	"errors"
	"fmt"
)

var (
	// Product errors
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidCategory    = errors.New("invalid product category")
	ErrBackendUnavailable = errors.New("marketplace backend unavailable")

	// Permission errors
	ErrOwnerBlocked       = errors.New("sellers cannot purchase their own products")
	ErrProductAlreadySold = errors.New("product has already been sold")

	// Checkout session errors
	ErrSessionNotFound        = errors.New("checkout session not found")
	ErrSessionClosed          = errors.New("checkout session is closed")
	ErrInvalidStateTransition = errors.New("invalid checkout state transition")
	ErrStepIncomplete         = errors.New("complete all required fields")
	ErrSubmitInFlight         = errors.New("submission already in progress")
	ErrUnknownField           = errors.New("unknown checkout field")

	// Submission errors
	ErrTransactionRejected = errors.New("transaction rejected by backend")
	ErrSubmissionFailed    = errors.New("transaction failed")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a single-field validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
