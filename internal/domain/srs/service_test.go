package srs

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewTime = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func TestNewDefaultService(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	require.NotNil(t, service, "Expected non-nil service")

	// Check if default params are present
	defaultSvc, ok := service.(*defaultService)
	require.True(t, ok, "Expected *defaultService type")
	require.NotNil(t, defaultSvc.params, "Expected non-nil params")
	assert.Equal(t, defaultSvc.params, service.Params())
}

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel()

	service, err := NewServiceWithParams(NewParams(ParamsConfig{MaxIntervalDays: 180}))
	require.NoError(t, err)
	assert.Equal(t, 180, service.Params().MaxIntervalDays)

	bad := NewDefaultParams()
	bad.MinEaseFactor = 1.1
	_, err = NewServiceWithParams(bad)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestScheduleScenarios(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	t.Run("new card graded good", func(t *testing.T) {
		next, err := service.Schedule(domain.NewCardState(reviewTime), domain.GradeGood, reviewTime)
		require.NoError(t, err)

		assert.Equal(t, 1, next.Interval)
		assert.Equal(t, 1, next.Repetitions)
		assert.Equal(t, 2.5, next.EaseFactor)
		assert.Equal(t, domain.CardStatusLearning, next.Status)
		assert.Equal(t, reviewTime.AddDate(0, 0, 1), next.NextReviewAt)
	})

	t.Run("learning card graduates to reviewing", func(t *testing.T) {
		current := domain.CardState{EaseFactor: 2.5, Interval: 6, Repetitions: 2, Status: domain.CardStatusLearning}

		next, err := service.Schedule(current, domain.GradeGood, reviewTime)
		require.NoError(t, err)

		assert.Equal(t, 15, next.Interval)
		assert.Equal(t, 2.5, next.EaseFactor)
		assert.Equal(t, 3, next.Repetitions)
		assert.Equal(t, domain.CardStatusReviewing, next.Status)
	})

	t.Run("reviewing card lapses", func(t *testing.T) {
		current := domain.CardState{EaseFactor: 2.5, Interval: 15, Repetitions: 3, Status: domain.CardStatusReviewing}

		next, err := service.Schedule(current, domain.GradeAgain, reviewTime)
		require.NoError(t, err)

		assert.Equal(t, 1, next.Interval)
		assert.Equal(t, 0, next.Repetitions)
		assert.Equal(t, 2.3, next.EaseFactor)
		assert.Equal(t, domain.CardStatusLearning, next.Status)
		assert.Equal(t, reviewTime.AddDate(0, 0, 1), next.NextReviewAt)
	})

	t.Run("ten good reviews master a card", func(t *testing.T) {
		state := domain.NewCardState(reviewTime)
		now := reviewTime
		wantIntervals := []int{1, 3, 8, 20, 50, 125, 313, 783, 1958, 4895}

		for i := 0; i < 10; i++ {
			next, err := service.Schedule(state, domain.GradeGood, now)
			require.NoError(t, err)
			assert.Equal(t, wantIntervals[i], next.Interval, "interval after review %d", i+1)
			state = next
			now = next.NextReviewAt
		}

		assert.Equal(t, 10, state.Repetitions)
		assert.Equal(t, domain.CardStatusMastered, state.Status)
	})

	t.Run("mastered card regresses on lapse", func(t *testing.T) {
		current := domain.CardState{EaseFactor: 2.5, Interval: 200, Repetitions: 9, Status: domain.CardStatusMastered}

		next, err := service.Schedule(current, domain.GradeAgain, reviewTime)
		require.NoError(t, err)

		assert.Equal(t, domain.CardStatusLearning, next.Status)
		assert.Equal(t, 0, next.Repetitions)
		assert.Equal(t, 1, next.Interval)
	})

	t.Run("easy on a reviewing card", func(t *testing.T) {
		current := domain.CardState{EaseFactor: 2.5, Interval: 10, Repetitions: 4, Status: domain.CardStatusReviewing}

		next, err := service.Schedule(current, domain.GradeEasy, reviewTime)
		require.NoError(t, err)

		assert.Equal(t, 33, next.Interval)
		assert.Equal(t, 2.65, next.EaseFactor)
		assert.Equal(t, 5, next.Repetitions)
	})

	t.Run("long run of easy reviews stays within the cap", func(t *testing.T) {
		state := domain.NewCardState(reviewTime)
		now := reviewTime

		for i := 0; i < 200; i++ {
			next, err := service.Schedule(state, domain.GradeEasy, now)
			require.NoError(t, err, "review %d", i+1)
			require.GreaterOrEqual(t, next.Interval, 1)
			require.LessOrEqual(t, next.Interval, DefaultMaxIntervalDays)
			require.Equal(t, now.AddDate(0, 0, next.Interval), next.NextReviewAt)
			require.True(t, next.NextReviewAt.After(now), "due date moves forward at review %d", i+1)
			state = next
			now = next.NextReviewAt
		}

		assert.Equal(t, DefaultMaxIntervalDays, state.Interval)
	})

	t.Run("hard on a reviewing card", func(t *testing.T) {
		current := domain.CardState{EaseFactor: 2.5, Interval: 10, Repetitions: 4, Status: domain.CardStatusReviewing}

		next, err := service.Schedule(current, domain.GradeHard, reviewTime)
		require.NoError(t, err)

		assert.Equal(t, 12, next.Interval)
		assert.Equal(t, 2.35, next.EaseFactor)
		assert.Equal(t, 5, next.Repetitions)
	})
}

func TestScheduleRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	testCases := []struct {
		name    string
		state   domain.CardState
		grade   domain.Grade
		wantErr error
	}{
		{
			name:    "negative interval",
			state:   domain.CardState{EaseFactor: 2.5, Interval: -1},
			grade:   domain.GradeGood,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "ease factor below floor",
			state:   domain.CardState{EaseFactor: 1.2, Interval: 4, Repetitions: 2},
			grade:   domain.GradeGood,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "NaN ease factor",
			state:   domain.CardState{EaseFactor: math.NaN(), Interval: 5, Repetitions: 3},
			grade:   domain.GradeGood,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "infinite ease factor",
			state:   domain.CardState{EaseFactor: math.Inf(1), Interval: 5, Repetitions: 3},
			grade:   domain.GradeEasy,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "unknown grade",
			state:   domain.NewCardState(reviewTime),
			grade:   domain.Grade("perfect"),
			wantErr: domain.ErrUnsupportedGrade,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := service.Schedule(tc.state, tc.grade, reviewTime)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, domain.CardState{}, next)
		})
	}
}

func TestScheduleRejectsStateBelowConfiguredFloor(t *testing.T) {
	t.Parallel()
	service, err := NewServiceWithParams(NewParams(ParamsConfig{MinEaseFactor: 1.5}))
	require.NoError(t, err)
	current := domain.CardState{EaseFactor: 1.4, Interval: 4, Repetitions: 2, Status: domain.CardStatusLearning}

	_, err = service.Schedule(current, domain.GradeGood, reviewTime)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = service.Postpone(current, 1, reviewTime)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	current.EaseFactor = 1.5
	next, err := service.Schedule(current, domain.GradeGood, reviewTime)
	require.NoError(t, err)
	assert.Equal(t, 1.5, next.EaseFactor)
}

func TestScheduleProperties(t *testing.T) {
	t.Parallel()
	capped, err := NewServiceWithParams(NewParams(ParamsConfig{MaxIntervalDays: 3650}))
	require.NoError(t, err)
	uncapped := NewDefaultParams()
	uncapped.MaxIntervalDays = 0
	unbounded, err := NewServiceWithParams(uncapped)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		service  Service
		maxDays  int
		gradeSet []domain.Grade
	}{
		{"defaults", NewDefaultService(), DefaultMaxIntervalDays, allGrades},
		{"short cap", capped, 3650, allGrades},
		{"cap disabled", unbounded, MaxRepresentableInterval, allGrades},
		{"cap disabled, mostly easy", unbounded, MaxRepresentableInterval,
			[]domain.Grade{domain.GradeEasy, domain.GradeEasy, domain.GradeEasy, domain.GradeGood}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			checkScheduleProperties(t, tc.service, tc.maxDays, tc.gradeSet)
		})
	}
}

var allGrades = []domain.Grade{domain.GradeAgain, domain.GradeHard, domain.GradeGood, domain.GradeEasy}

func checkScheduleProperties(t *testing.T, service Service, maxDays int, grades []domain.Grade) {
	t.Helper()
	params := service.Params()
	rng := rand.New(rand.NewSource(20260401))

	for run := 0; run < 200; run++ {
		state := domain.NewCardState(reviewTime)
		now := reviewTime

		for step := 0; step < 40; step++ {
			grade := grades[rng.Intn(len(grades))]

			next, err := service.Schedule(state, grade, now)
			require.NoError(t, err)

			require.GreaterOrEqual(t, next.EaseFactor, domain.MinEaseFactor, "ease factor floor")
			require.GreaterOrEqual(t, next.Interval, 0, "interval non-negative")
			require.LessOrEqual(t, next.Interval, maxDays, "interval cap")
			require.Equal(t, now.AddDate(0, 0, next.Interval), next.NextReviewAt, "due date follows interval")
			require.Equal(t, StatusFor(next.Repetitions, params), next.Status, "status derived from repetitions")
			require.NotEqual(t, domain.CardStatusNew, next.Status, "new is never re-entered")
			if grade.IsLapse() {
				require.Equal(t, 0, next.Repetitions, "lapse resets repetitions")
				require.Equal(t, 1, next.Interval, "lapse resets interval")
			}

			// Same input, same output
			again, err := service.Schedule(state, grade, now)
			require.NoError(t, err)
			require.Equal(t, next, again)

			state = next
			now = next.NextReviewAt
		}
	}
}

func TestPostpone(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	due := reviewTime.AddDate(0, 0, 5)
	current := domain.CardState{EaseFactor: 2.5, Interval: 5, Repetitions: 3, NextReviewAt: due, Status: domain.CardStatusReviewing}

	t.Run("from future due date", func(t *testing.T) {
		next, err := service.Postpone(current, 2, reviewTime)
		require.NoError(t, err)
		assert.Equal(t, due.AddDate(0, 0, 2), next.NextReviewAt)
		assert.Equal(t, current.Interval, next.Interval)
		assert.Equal(t, current.Repetitions, next.Repetitions)
		assert.Equal(t, current.Status, next.Status)
	})

	t.Run("overdue card counts from now", func(t *testing.T) {
		later := due.AddDate(0, 0, 10)
		next, err := service.Postpone(current, 1, later)
		require.NoError(t, err)
		assert.Equal(t, later.AddDate(0, 0, 1), next.NextReviewAt)
	})

	t.Run("invalid days", func(t *testing.T) {
		_, err := service.Postpone(current, 0, reviewTime)
		assert.ErrorIs(t, err, ErrInvalidDays)
	})

	t.Run("invalid state", func(t *testing.T) {
		_, err := service.Postpone(domain.CardState{EaseFactor: 1.0}, 1, reviewTime)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}
