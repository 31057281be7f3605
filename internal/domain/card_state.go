package domain

import (
	"fmt"
	"math"
	"time"
)

// CardStatus is the lifecycle stage of a card.
type CardStatus string

// Possible card status values
const (
	CardStatusNew       CardStatus = "new"
	CardStatusLearning  CardStatus = "learning"
	CardStatusReviewing CardStatus = "reviewing"
	CardStatusMastered  CardStatus = "mastered"
)

// Valid reports whether s is one of the known statuses.
func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusNew, CardStatusLearning, CardStatusReviewing, CardStatusMastered:
		return true
	default:
		return false
	}
}

// Grade is the normalized review quality consumed by the scheduler.
type Grade string

// Possible grade values
const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// Valid reports whether g belongs to the closed grade set.
func (g Grade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	default:
		return false
	}
}

// IsLapse reports whether the grade resets repetition progress.
func (g Grade) IsLapse() bool {
	return g == GradeAgain
}

// Default values for a card that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// CardState is the spaced repetition snapshot of a single card.
// It is a value: the scheduler never mutates one, it returns a new one.
type CardState struct {
	EaseFactor   float64    `json:"ease_factor"`    // Growth multiplier, never below 1.3
	Interval     int        `json:"interval"`       // Days until the next review, 0 means due now
	Repetitions  int        `json:"repetitions"`    // Consecutive correct reviews since the last lapse
	NextReviewAt time.Time  `json:"next_review_at"` // When the card is due
	Status       CardStatus `json:"status"`
}

// NewCardState returns the state of a card that has never been scheduled.
// The card is available for review immediately.
func NewCardState(now time.Time) CardState {
	return CardState{
		EaseFactor:   DefaultEaseFactor,
		Interval:     0,
		Repetitions:  0,
		NextReviewAt: now,
		Status:       CardStatusNew,
	}
}

// Validate checks the invariants a stored state must satisfy before it can
// be scheduled. Every failure wraps ErrInvalidState.
func (s CardState) Validate() error {
	if s.Interval < 0 {
		return fmt.Errorf("%w: interval %d is negative", ErrInvalidState, s.Interval)
	}

	if s.Repetitions < 0 {
		return fmt.Errorf("%w: repetitions %d is negative", ErrInvalidState, s.Repetitions)
	}

	if math.IsNaN(s.EaseFactor) || math.IsInf(s.EaseFactor, 0) {
		return fmt.Errorf("%w: ease factor %v is not finite", ErrInvalidState, s.EaseFactor)
	}

	if s.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: ease factor %.2f is below %.2f", ErrInvalidState, s.EaseFactor, MinEaseFactor)
	}

	return nil
}

// IsNew reports whether the card has never been scheduled.
func (s CardState) IsNew() bool {
	return s.Repetitions == 0 && s.Interval == 0
}

// IsDue reports whether the card's next review time has been reached.
func (s CardState) IsDue(now time.Time) bool {
	return !now.Before(s.NextReviewAt)
}
