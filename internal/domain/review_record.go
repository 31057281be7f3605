package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewRecord
var (
	ErrEmptyRecordID          = errors.New("review record ID cannot be empty")
	ErrEmptyRecordUserID      = errors.New("review record user ID cannot be empty")
	ErrEmptyRecordFlashcardID = errors.New("review record flashcard ID cannot be empty")
	ErrEmptyRecordSessionID   = errors.New("review record session ID cannot be empty")
)

// ReviewRecord is the persisted audit entry of one graded review.
// It ties the raw answer to the grade and score it produced within a session.
type ReviewRecord struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	FlashcardID    uuid.UUID   `json:"flashcard_id"`
	SessionID      uuid.UUID   `json:"session_id"`
	SessionType    SessionType `json:"session_type"`
	Result         RawResult   `json:"result"`
	Grade          Grade       `json:"grade"`
	ResponseTimeMs *int        `json:"response_time_ms,omitempty"`
	Score          int         `json:"score"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewReviewRecord builds the audit entry for event within the given session.
// Returns an error if validation fails.
func NewReviewRecord(
	userID uuid.UUID,
	summary SessionSummary,
	event ReviewEvent,
	grade Grade,
	score int,
) (*ReviewRecord, error) {
	record := &ReviewRecord{
		ID:             uuid.New(),
		UserID:         userID,
		FlashcardID:    event.CardID,
		SessionID:      summary.SessionID,
		SessionType:    summary.Type,
		Result:         event.Result,
		Grade:          grade,
		ResponseTimeMs: event.ResponseTimeMs,
		Score:          score,
		CreatedAt:      event.OccurredAt,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the ReviewRecord has valid data.
// Returns an error if any field fails validation.
func (r *ReviewRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRecordID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyRecordUserID
	}

	if r.FlashcardID == uuid.Nil {
		return ErrEmptyRecordFlashcardID
	}

	if r.SessionID == uuid.Nil {
		return ErrEmptyRecordSessionID
	}

	if !r.Result.Valid() {
		return ErrInvalidResult
	}

	if !r.Grade.Valid() {
		return ErrUnsupportedGrade
	}

	return nil
}
