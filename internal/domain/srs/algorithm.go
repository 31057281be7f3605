package srs

import (
	"math"
	"time"

	"github.com/phrazzld/vocab-review/internal/domain"
)

// roundingEpsilon absorbs float error so that values whose decimal form ends
// in exactly .5 still round up.
const roundingEpsilon = 1e-9

// roundHalfUp rounds a non-negative day count to the nearest integer, halves up.
// Values beyond MaxRepresentableInterval are clamped before the conversion so
// the int conversion and time.AddDate never overflow.
func roundHalfUp(v float64) int {
	rounded := math.Floor(v + 0.5 + roundingEpsilon)
	if rounded >= MaxRepresentableInterval {
		return MaxRepresentableInterval
	}
	return int(rounded)
}

// roundEase keeps ease factors at two decimal places so repeated adjustments
// do not accumulate float drift.
func roundEase(ef float64) float64 {
	return math.Round(ef*100) / 100
}

// calculateNewEaseFactor determines the new ease factor based on the grade.
//
// The ease factor represents how easy the card is - higher values mean
// intervals grow faster. The grade's adjustment from params is added and the
// result is floored at params.MinEaseFactor. There is no upper bound.
//
// Algorithm behavior:
//   - "Again" decreases the ease factor (default -0.20)
//   - "Hard" decreases it less (default -0.15)
//   - "Good" leaves it unchanged
//   - "Easy" increases it (default +0.15)
func calculateNewEaseFactor(
	currentEF float64,
	grade domain.Grade,
	params *Params,
) float64 {
	newEF := roundEase(currentEF + params.EaseFactorAdjustment[grade])

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines how many days pass until the next review.
//
// The current ease factor (before this review's adjustment) drives growth.
//
// Algorithm behavior:
//   - "Again": the lapse interval (default 1 day)
//   - First-ever review of a new card: the first review interval (default 1 day)
//   - "Hard": max(1, round(interval * 1.2))
//   - "Good": round(interval * ease), with a zero interval treated as 1
//   - "Easy": round(base * 1.3) where base is the "Good" product
//
// All products round half-up, and the result is capped at
// params.MaxIntervalDays, or at MaxRepresentableInterval when the cap is disabled.
func calculateNewInterval(
	current domain.CardState,
	grade domain.Grade,
	params *Params,
) int {
	if grade == domain.GradeAgain {
		return params.LapseInterval
	}

	if current.IsNew() {
		return capInterval(params.FirstReviewInterval, params)
	}

	var interval int
	switch grade {
	case domain.GradeHard:
		interval = max(1, roundHalfUp(float64(current.Interval)*params.HardIntervalModifier))
	case domain.GradeGood:
		interval = roundHalfUp(growthBase(current))
	case domain.GradeEasy:
		interval = roundHalfUp(growthBase(current) * params.EasyBonus)
	}

	return capInterval(interval, params)
}

// growthBase is the unrounded "Good" interval for a card.
func growthBase(current domain.CardState) float64 {
	if current.Interval == 0 {
		return 1
	}
	return float64(current.Interval) * current.EaseFactor
}

func capInterval(interval int, params *Params) int {
	limit := params.MaxIntervalDays
	if limit <= 0 {
		limit = MaxRepresentableInterval
	}
	return min(interval, limit)
}

// calculateNextReviewDate converts the interval into the calendar time of the
// next review.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextState builds the CardState that follows current after a
// review graded as grade at time now.
//
// It never modifies its input: the returned value is a fresh state whose
// status is derived from the new repetition count.
func calculateNextState(
	current domain.CardState,
	grade domain.Grade,
	now time.Time,
	params *Params,
) domain.CardState {
	next := domain.CardState{
		EaseFactor: calculateNewEaseFactor(current.EaseFactor, grade, params),
		Interval:   calculateNewInterval(current, grade, params),
	}

	if grade.IsLapse() {
		next.Repetitions = 0
	} else {
		next.Repetitions = current.Repetitions + 1
	}

	next.NextReviewAt = calculateNextReviewDate(next.Interval, now)
	next.Status = StatusFor(next.Repetitions, params)

	return next
}
