// Package ragerrors provides sentinel and custom error types for the application.
package ragerrors

// ErrModelUnavailable represents an embedding or generation model failure.
// Use when the model runtime cannot be reached or inference fails.
var ErrModelUnavailable = &ModelUnavailableError{}

// ModelUnavailableError is a sentinel error for model load or inference failures.
type ModelUnavailableError struct {
	Model   string
	Message string
}

// NewModelUnavailableError creates a new ModelUnavailableError with a custom message.
func NewModelUnavailableError(model, message string) *ModelUnavailableError {
	return &ModelUnavailableError{
		Model:   model,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ModelUnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Model != "" {
		return "model " + e.Model + " unavailable"
	}

	return "model unavailable"
}

// Is implements the error interface for error comparison.
func (e *ModelUnavailableError) Is(target error) bool {
	_, ok := target.(*ModelUnavailableError)

	return ok
}

// ErrStoreUnavailable represents a retrieval store failure.
// Use when the vector store is unreachable or a query fails.
var ErrStoreUnavailable = &StoreUnavailableError{}

// StoreUnavailableError is a sentinel error for store connectivity and query failures.
type StoreUnavailableError struct {
	Store   string
	Message string
}

// NewStoreUnavailableError creates a new StoreUnavailableError with a custom message.
func NewStoreUnavailableError(store, message string) *StoreUnavailableError {
	return &StoreUnavailableError{
		Store:   store,
		Message: message,
	}
}

// Error implements the error interface.
func (e *StoreUnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Store != "" {
		return e.Store + " store unavailable"
	}

	return "store unavailable"
}

// Is implements the error interface for error comparison.
func (e *StoreUnavailableError) Is(target error) bool {
	_, ok := target.(*StoreUnavailableError)

	return ok
}

// ErrValidation represents a validation error.
// Use when client input fails validation.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}
