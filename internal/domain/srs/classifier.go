package srs

import (
	"time"

	"github.com/phrazzld/vocab-review/internal/domain"
)

// Classifier maps a raw review result to a Grade.
//
// The source signal is binary (plus skips), so only the extremes of the grade
// scale are produced, except that a fast correct answer is upgraded to easy.
// The zero value never upgrades.
type Classifier struct {
	fastThreshold time.Duration
}

// NewClassifier returns a Classifier that grades correct answers faster than
// fastThreshold as easy. A non-positive threshold disables the upgrade.
func NewClassifier(fastThreshold time.Duration) Classifier {
	return Classifier{fastThreshold: fastThreshold}
}

// FastThreshold returns the configured fast-answer threshold.
func (c Classifier) FastThreshold() time.Duration {
	return c.fastThreshold
}

// Classify grades a raw result. It is total: skipped, incorrect and any
// unrecognised result are lapses.
func (c Classifier) Classify(result domain.RawResult, responseTimeMs *int) domain.Grade {
	if result != domain.ResultCorrect {
		return domain.GradeAgain
	}

	if c.isFast(responseTimeMs) {
		return domain.GradeEasy
	}

	return domain.GradeGood
}

// ClassifyEvent grades a review event.
func (c Classifier) ClassifyEvent(event domain.ReviewEvent) domain.Grade {
	return c.Classify(event.Result, event.ResponseTimeMs)
}

func (c Classifier) isFast(responseTimeMs *int) bool {
	if c.fastThreshold <= 0 || responseTimeMs == nil {
		return false
	}
	return time.Duration(*responseTimeMs)*time.Millisecond < c.fastThreshold
}
