package review

import (
	"errors"
	"fmt"
)

// Common error types for the review service
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrBookNotFound indicates that the book does not exist or is another
	// user's private book.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookNotOwned indicates that the user does not own the book.
	ErrBookNotOwned = errors.New("unauthorized access: book not owned by user")

	// ErrSessionNotFound indicates that the session does not exist or
	// belongs to another user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed indicates that the session no longer accepts reviews.
	ErrSessionClosed = errors.New("session is closed")

	// ErrInvalidEvent indicates that a review event failed validation.
	ErrInvalidEvent = errors.New("invalid review event")

	// ErrInvalidSessionType indicates an unknown session type.
	ErrInvalidSessionType = errors.New("invalid session type")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "postpone")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// isServiceSentinel reports whether err is an expected condition that is
// returned to callers without extra wrapping.
func isServiceSentinel(err error) bool {
	return errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrCardNotOwned) ||
		errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrBookNotOwned) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrInvalidSessionType)
}
