// Package domain defines the core review entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when a CardState violates its invariants
	// (negative interval or repetitions, ease factor below the floor).
	// Callers must treat it as data corruption rather than retry.
	ErrInvalidState = errors.New("invalid card state")

	// ErrUnsupportedGrade is returned when a grade outside the closed
	// again/hard/good/easy set reaches the scheduler.
	ErrUnsupportedGrade = errors.New("unsupported grade")

	// ErrInvalidResult is returned when a raw review result is not
	// correct, incorrect or skipped.
	ErrInvalidResult = errors.New("invalid review result")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
