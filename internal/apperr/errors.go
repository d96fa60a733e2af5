// Package apperr defines the error taxonomy shared by services and the HTTP
// boundary: client-caused validation failures, missing entities, uniqueness
// conflicts. Anything else is treated as an infrastructure failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is a client-caused request problem (4xx).
type ValidationError struct {
	Code    string // machine-readable, e.g. "invalid_quantity"
	Message string // human-readable reason for the response body
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError with a formatted message.
func Validation(code, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a referenced entity is absent.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }

// NotFound builds a NotFoundError.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError indicates a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict builds a ConflictError with a formatted message.
func Conflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// HTTPStatus maps an error to the response status for the Gin boundary.
// Unclassified errors are infrastructure failures and map to 500.
func HTTPStatus(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
