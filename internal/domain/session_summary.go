package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionType describes why a session was started.
type SessionType string

// Possible session type values
const (
	SessionTypeReview   SessionType = "review"
	SessionTypeLearn    SessionType = "learn"
	SessionTypePractice SessionType = "practice"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeReview, SessionTypeLearn, SessionTypePractice:
		return true
	default:
		return false
	}
}

// SessionSummary aggregates the reviews of one study session.
// It is built incrementally by session.Aggregator and finalized by the caller.
type SessionSummary struct {
	SessionID             uuid.UUID   `json:"session_id"`
	UserID                uuid.UUID   `json:"user_id"`
	Type                  SessionType `json:"type"`
	TotalReviews          int         `json:"total_reviews"`
	CorrectCount          int         `json:"correct_count"`
	IncorrectCount        int         `json:"incorrect_count"`
	SkippedCount          int         `json:"skipped_count"`
	TimedReviews          int         `json:"timed_reviews"` // Reviews that reported a response time
	AverageResponseTimeMs float64     `json:"average_response_time_ms"`
	Score                 int         `json:"score"`
	StartedAt             time.Time   `json:"started_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
	ClosedAt              *time.Time  `json:"closed_at,omitempty"`
}

// Accuracy returns the fraction of reviews graded as correct, or 0 for an
// empty session.
func (s SessionSummary) Accuracy() float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalReviews)
}

// IsClosed reports whether the session has been finalized.
func (s SessionSummary) IsClosed() bool {
	return s.ClosedAt != nil
}
