// Copyright Recapio, Inc. and each contributor.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType classifies an error so callers can branch on what went wrong
// rather than on error strings. The pipeline leans on three of these:
// conflict marks lost idempotency and CAS races, not-found marks missing
// records, and unavailable marks transient platform or store trouble that
// belongs in the retry queue.
type ErrorType int

const (
	// ErrorTypeValidation is bad input or a rejected state transition.
	ErrorTypeValidation ErrorType = iota
	// ErrorTypeNotFound is a lookup that matched nothing.
	ErrorTypeNotFound
	// ErrorTypeConflict is a duplicate create or a stale-revision update.
	ErrorTypeConflict
	// ErrorTypeInternal is an unexpected failure inside this service.
	ErrorTypeInternal
	// ErrorTypeUnavailable is a dependency that cannot be reached right now.
	ErrorTypeUnavailable
)

// DomainError carries an ErrorType alongside the message and any wrapped
// cause.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType classifies err via errors.As. Anything that is not a
// DomainError counts as internal.
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal
}

// NewValidationError builds a validation error, wrapping any causes.
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

// NewNotFoundError builds a not-found error, wrapping any causes.
func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

// NewConflictError builds a conflict error, wrapping any causes.
func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

// NewInternalError builds an internal error, wrapping any causes.
func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

// NewUnavailableError builds an unavailable error, wrapping any causes.
func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}
