package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the portal API.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrValidation carries the structured list of field errors produced by the
// entity validators. Every create/update is checked before any remote call.
type ErrValidation struct {
	Entity string
	Fields []FieldError
}

func (e *ErrValidation) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed for %s", e.Entity)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("validation failed for %s (%s)", e.Entity, strings.Join(parts, "; "))
}

// ErrConflict indicates a resource already exists (e.g. duplicate tax id).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the user lacks permission for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrInvalidDocument indicates an attachment was rejected before upload.
type ErrInvalidDocument struct {
	Name   string
	Reason string
}

func (e *ErrInvalidDocument) Error() string {
	return fmt.Sprintf("invalid document %q: %s", e.Name, e.Reason)
}
