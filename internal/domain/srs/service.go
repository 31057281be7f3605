package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/vocab-review/internal/domain"
)

// Common errors
var (
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Service defines the interface for SRS scheduling operations.
// Implementations are pure and safe for concurrent use.
type Service interface {
	// Schedule computes the state that follows current after a review
	Schedule(
		current domain.CardState,
		grade domain.Grade,
		now time.Time,
	) (domain.CardState, error)

	// Postpone pushes the next review forward by a number of days
	Postpone(
		current domain.CardState,
		days int,
		now time.Time,
	) (domain.CardState, error)

	// Params returns the parameters driving the service
	Params() *Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// Schedule implements the Service interface.
// It rejects corrupt input state with domain.ErrInvalidState and unknown
// grades with domain.ErrUnsupportedGrade rather than repairing them.
func (s *defaultService) Schedule(
	current domain.CardState,
	grade domain.Grade,
	now time.Time,
) (domain.CardState, error) {
	if err := s.validateState(current); err != nil {
		return domain.CardState{}, err
	}

	if !grade.Valid() {
		return domain.CardState{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedGrade, grade)
	}

	return calculateNextState(current, grade, now, s.params), nil
}

// Postpone implements the Service interface.
// The delay counts from the later of now and the current due date, so an
// overdue card is not postponed into the past.
func (s *defaultService) Postpone(
	current domain.CardState,
	days int,
	now time.Time,
) (domain.CardState, error) {
	if err := s.validateState(current); err != nil {
		return domain.CardState{}, err
	}

	if days < 1 {
		return domain.CardState{}, ErrInvalidDays
	}

	base := current.NextReviewAt
	if base.Before(now) {
		base = now
	}

	next := current
	next.NextReviewAt = base.AddDate(0, 0, days)

	return next, nil
}

// validateState checks current against the domain invariants and the
// configured ease factor floor, which may be above domain.MinEaseFactor.
func (s *defaultService) validateState(current domain.CardState) error {
	if err := current.Validate(); err != nil {
		return err
	}

	if current.EaseFactor < s.params.MinEaseFactor {
		return fmt.Errorf("%w: ease factor %.2f is below the configured floor %.2f",
			domain.ErrInvalidState, current.EaseFactor, s.params.MinEaseFactor)
	}

	return nil
}

// Params implements the Service interface.
func (s *defaultService) Params() *Params {
	return s.params
}
