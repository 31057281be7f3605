// Package session folds graded review events into session summaries.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// ScoreWeights holds the points awarded for each grade.
type ScoreWeights struct {
	Again int
	Hard  int
	Good  int
	Easy  int
}

// DefaultScoreWeights returns the standard weights: again 0, hard 1, good 2, easy 3.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Again: 0, Hard: 1, Good: 2, Easy: 3}
}

// Aggregator folds review events into a domain.SessionSummary.
// It holds no state of its own and is safe for concurrent use.
type Aggregator struct {
	weights ScoreWeights
}

// NewAggregator creates an Aggregator that scores grades with weights.
func NewAggregator(weights ScoreWeights) Aggregator {
	return Aggregator{weights: weights}
}

// New returns an empty, open summary for a session.
func New(id, userID uuid.UUID, sessionType domain.SessionType, now time.Time) domain.SessionSummary {
	return domain.SessionSummary{
		SessionID: id,
		UserID:    userID,
		Type:      sessionType,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Score returns the points awarded for grade. Unknown grades score nothing.
func (a Aggregator) Score(grade domain.Grade) int {
	switch grade {
	case domain.GradeAgain:
		return a.weights.Again
	case domain.GradeHard:
		return a.weights.Hard
	case domain.GradeGood:
		return a.weights.Good
	case domain.GradeEasy:
		return a.weights.Easy
	default:
		return 0
	}
}

// Record returns summary with one more review folded in.
//
// Correct counts non-lapse grades. Incorrect counts lapses that came from an
// incorrect answer, and skipped counts raw skips, so a skip is never also
// counted as incorrect. The average response time is a running mean over the
// events that report one. A closed summary is returned unchanged.
func (a Aggregator) Record(
	summary domain.SessionSummary,
	event domain.ReviewEvent,
	grade domain.Grade,
) domain.SessionSummary {
	if summary.IsClosed() {
		return summary
	}

	next := summary
	next.TotalReviews++
	next.Score += a.Score(grade)

	switch {
	case !grade.IsLapse():
		next.CorrectCount++
	case event.Result == domain.ResultIncorrect:
		next.IncorrectCount++
	}
	if event.Result == domain.ResultSkipped {
		next.SkippedCount++
	}

	if event.ResponseTimeMs != nil {
		next.TimedReviews++
		delta := float64(*event.ResponseTimeMs) - next.AverageResponseTimeMs
		next.AverageResponseTimeMs += delta / float64(next.TimedReviews)
	}

	if event.OccurredAt.After(next.UpdatedAt) {
		next.UpdatedAt = event.OccurredAt
	}

	return next
}

// Close finalizes summary at now. Closing twice keeps the first close time.
func (a Aggregator) Close(summary domain.SessionSummary, now time.Time) domain.SessionSummary {
	if summary.IsClosed() {
		return summary
	}

	next := summary
	closedAt := now
	next.ClosedAt = &closedAt
	next.UpdatedAt = now

	return next
}
