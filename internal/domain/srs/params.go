package srs

import (
	"errors"
	"fmt"
	"math"

	"github.com/phrazzld/vocab-review/internal/domain"
)

// ErrInvalidParams is returned when a Params value cannot drive the scheduler.
var ErrInvalidParams = errors.New("invalid srs params")

// Interval limits in days.
const (
	// DefaultMaxIntervalDays is the default cap on an interval, about a century.
	DefaultMaxIntervalDays = 36500

	// MaxRepresentableInterval bounds every interval, capped or not. Due dates
	// this far out still fit an int32 interval_days column and a timestamptz.
	MaxRepresentableInterval = 1_000_000
)

// Params defines all configurable parameters for the SRS algorithm.
// Every constant of the scheduler is policy and lives here.
type Params struct {
	// Core limits
	MinEaseFactor   float64
	MaxIntervalDays int // 0 disables the cap; MaxRepresentableInterval still applies

	// Ease factor adjustment applied for each grade
	EaseFactorAdjustment map[domain.Grade]float64

	// Interval growth
	HardIntervalModifier float64
	EasyBonus            float64

	// Special case handling
	FirstReviewInterval int
	LapseInterval       int

	// Lifecycle thresholds on repetitions
	ReviewingThreshold int
	MasteredThreshold  int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	// Core limits
	MinEaseFactor   float64
	MaxIntervalDays int

	// Ease factor adjustments
	AgainEaseFactorAdjustment float64
	HardEaseFactorAdjustment  float64
	GoodEaseFactorAdjustment  float64
	EasyEaseFactorAdjustment  float64

	// Interval growth
	HardIntervalModifier float64
	EasyBonus            float64

	// Special intervals
	FirstReviewInterval int
	LapseInterval       int

	// Lifecycle thresholds
	ReviewingThreshold int
	MasteredThreshold  int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:   domain.MinEaseFactor,
		MaxIntervalDays: DefaultMaxIntervalDays,

		// Default ease factor adjustments
		EaseFactorAdjustment: map[domain.Grade]float64{
			domain.GradeAgain: -0.20,
			domain.GradeHard:  -0.15,
			domain.GradeGood:  0.0,
			domain.GradeEasy:  0.15,
		},

		HardIntervalModifier: 1.2,
		EasyBonus:            1.3,

		// Fresh cards and lapsed cards come back the next day
		FirstReviewInterval: 1,
		LapseInterval:       1,

		ReviewingThreshold: 3,
		MasteredThreshold:  8,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	// Override core limits if provided
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	// Override ease factor adjustments if provided
	if config.AgainEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.GradeAgain] = config.AgainEaseFactorAdjustment
	}
	if config.HardEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.GradeHard] = config.HardEaseFactorAdjustment
	}
	if config.GoodEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.GradeGood] = config.GoodEaseFactorAdjustment
	}
	if config.EasyEaseFactorAdjustment != 0 {
		params.EaseFactorAdjustment[domain.GradeEasy] = config.EasyEaseFactorAdjustment
	}

	// Override interval growth if provided
	if config.HardIntervalModifier > 0 {
		params.HardIntervalModifier = config.HardIntervalModifier
	}
	if config.EasyBonus > 0 {
		params.EasyBonus = config.EasyBonus
	}

	// Override special intervals if provided
	if config.FirstReviewInterval > 0 {
		params.FirstReviewInterval = config.FirstReviewInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	// Override lifecycle thresholds if provided
	if config.ReviewingThreshold > 0 {
		params.ReviewingThreshold = config.ReviewingThreshold
	}
	if config.MasteredThreshold > 0 {
		params.MasteredThreshold = config.MasteredThreshold
	}

	return params
}

// Validate reports whether the parameters keep the scheduler's invariants.
// The ease factor floor can be raised but never lowered below domain.MinEaseFactor.
func (p *Params) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil params", ErrInvalidParams)
	}
	if p.MinEaseFactor < domain.MinEaseFactor {
		return fmt.Errorf("%w: min ease factor %.2f is below %.2f",
			ErrInvalidParams, p.MinEaseFactor, domain.MinEaseFactor)
	}
	if p.MaxIntervalDays < 0 || p.MaxIntervalDays > MaxRepresentableInterval {
		return fmt.Errorf("%w: max interval %d must be between 0 and %d",
			ErrInvalidParams, p.MaxIntervalDays, MaxRepresentableInterval)
	}
	for _, g := range []domain.Grade{domain.GradeAgain, domain.GradeHard, domain.GradeGood, domain.GradeEasy} {
		if _, ok := p.EaseFactorAdjustment[g]; !ok {
			return fmt.Errorf("%w: missing ease adjustment for %s", ErrInvalidParams, g)
		}
	}
	if p.HardIntervalModifier <= 0 || p.EasyBonus <= 0 {
		return fmt.Errorf("%w: interval modifiers must be positive", ErrInvalidParams)
	}
	if p.FirstReviewInterval < 1 || p.LapseInterval < 1 {
		return fmt.Errorf("%w: first review and lapse intervals must be at least 1", ErrInvalidParams)
	}
	if math.IsNaN(p.MinEaseFactor) || math.IsInf(p.MinEaseFactor, 0) {
		return fmt.Errorf("%w: min ease factor must be finite", ErrInvalidParams)
	}
	if p.ReviewingThreshold < 1 || p.MasteredThreshold <= p.ReviewingThreshold {
		return fmt.Errorf("%w: thresholds must satisfy 1 <= reviewing (%d) < mastered (%d)",
			ErrInvalidParams, p.ReviewingThreshold, p.MasteredThreshold)
	}
	return nil
}
