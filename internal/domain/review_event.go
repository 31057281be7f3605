package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RawResult is the answer outcome reported by the client before grading.
type RawResult string

// Possible raw result values
const (
	ResultCorrect   RawResult = "correct"
	ResultIncorrect RawResult = "incorrect"
	ResultSkipped   RawResult = "skipped"
)

// Valid reports whether r is one of the known raw results.
func (r RawResult) Valid() bool {
	switch r {
	case ResultCorrect, ResultIncorrect, ResultSkipped:
		return true
	default:
		return false
	}
}

// validate is shared by every domain type that declares validation tags.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ReviewEvent is a single answer given by a user for a card.
// It is ephemeral input; persisting it is the caller's business.
type ReviewEvent struct {
	CardID         uuid.UUID `json:"card_id"                    validate:"required"`
	Result         RawResult `json:"result"                     validate:"required,oneof=correct incorrect skipped"`
	ResponseTimeMs *int      `json:"response_time_ms,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	OccurredAt     time.Time `json:"occurred_at"                validate:"required"`
}

// Validate checks the event's fields. Failures wrap ErrValidation.
func (e ReviewEvent) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: review event: %v", ErrValidation, err)
	}
	return nil
}

// HasResponseTime reports whether the event carries a response time.
func (e ReviewEvent) HasResponseTime() bool {
	return e.ResponseTimeMs != nil
}
