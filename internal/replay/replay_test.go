package replay

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/session"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func ms(v int) *int { return &v }

func event(cardID uuid.UUID, result domain.RawResult, offset time.Duration, responseMs *int) domain.ReviewEvent {
	return domain.ReviewEvent{
		CardID:         cardID,
		Result:         result,
		ResponseTimeMs: responseMs,
		OccurredAt:     start.Add(offset),
	}
}

func TestRunAppliesEventsInTimeOrder(t *testing.T) {
	t.Parallel()
	cardID := uuid.New()

	// Out of order on input; the lapse happens last
	events := []domain.ReviewEvent{
		event(cardID, domain.ResultIncorrect, 72*time.Hour, nil),
		event(cardID, domain.ResultCorrect, 0, nil),
		event(cardID, domain.ResultCorrect, 24*time.Hour, nil),
	}

	result, err := Run(context.Background(), events, nil, Options{Concurrency: 2})
	require.NoError(t, err)

	state := result.States[cardID]
	assert.Equal(t, 0, state.Repetitions)
	assert.Equal(t, 1, state.Interval)
	assert.Equal(t, 2.3, state.EaseFactor)
	assert.Equal(t, domain.CardStatusLearning, state.Status)
	assert.Equal(t, start.Add(72*time.Hour).AddDate(0, 0, 1), state.NextReviewAt)
}

func TestRunSessionScenario(t *testing.T) {
	t.Parallel()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	classifier := srs.NewClassifier(2 * time.Second)

	events := []domain.ReviewEvent{
		event(a, domain.ResultCorrect, 0, ms(1500)),
		event(b, domain.ResultCorrect, time.Minute, ms(4000)),
		event(c, domain.ResultIncorrect, 2*time.Minute, ms(3000)),
		event(a, domain.ResultCorrect, 3*time.Minute, ms(1900)),
	}

	result, err := Run(context.Background(), events, nil, Options{Classifier: classifier})
	require.NoError(t, err)

	summary := result.Summary
	assert.Equal(t, 4, summary.TotalReviews)
	assert.Equal(t, 3, summary.CorrectCount)
	assert.Equal(t, 1, summary.IncorrectCount)
	assert.Equal(t, 0, summary.SkippedCount)
	assert.Equal(t, 8, summary.Score) // easy 3 + good 2 + again 0 + easy 3
	assert.InDelta(t, 2600.0, summary.AverageResponseTimeMs, 1e-9)
	assert.Equal(t, start, summary.StartedAt)
	assert.Equal(t, start.Add(3*time.Minute), summary.UpdatedAt)
	assert.False(t, summary.IsClosed())
	assert.Len(t, result.States, 3)
}

func TestRunKeepsUntouchedInitialStates(t *testing.T) {
	t.Parallel()
	reviewed, idle := uuid.New(), uuid.New()
	initial := map[uuid.UUID]domain.CardState{
		reviewed: {EaseFactor: 2.5, Interval: 6, Repetitions: 2, NextReviewAt: start, Status: domain.CardStatusLearning},
		idle:     {EaseFactor: 2.1, Interval: 40, Repetitions: 9, NextReviewAt: start, Status: domain.CardStatusMastered},
	}
	snapshot := initial[reviewed]

	result, err := Run(context.Background(),
		[]domain.ReviewEvent{event(reviewed, domain.ResultCorrect, 0, nil)}, initial, Options{})
	require.NoError(t, err)

	assert.Equal(t, 15, result.States[reviewed].Interval)
	assert.Equal(t, domain.CardStatusReviewing, result.States[reviewed].Status)
	assert.Equal(t, initial[idle], result.States[idle])
	assert.Equal(t, snapshot, initial[reviewed], "initial states are not modified")
}

func TestRunUsesNewStateForUnknownCards(t *testing.T) {
	t.Parallel()
	cardID := uuid.New()
	opts := Options{
		NewState: func(now time.Time) domain.CardState {
			state := domain.NewCardState(now)
			state.EaseFactor = 2.0
			return state
		},
	}

	result, err := Run(context.Background(),
		[]domain.ReviewEvent{event(cardID, domain.ResultCorrect, 0, nil)}, nil, opts)
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.States[cardID].EaseFactor)
}

func TestRunIsDeterministicAcrossConcurrency(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	results := []domain.RawResult{domain.ResultCorrect, domain.ResultCorrect, domain.ResultIncorrect, domain.ResultSkipped}

	cards := make([]uuid.UUID, 25)
	for i := range cards {
		cards[i] = uuid.New()
	}

	var events []domain.ReviewEvent
	for i := 0; i < 600; i++ {
		var response *int
		if rng.Intn(3) > 0 {
			response = ms(rng.Intn(6000))
		}
		events = append(events, event(
			cards[rng.Intn(len(cards))],
			results[rng.Intn(len(results))],
			time.Duration(rng.Intn(90*24))*time.Hour,
			response,
		))
	}

	agg := session.NewAggregator(session.DefaultScoreWeights())
	base := Options{
		Classifier: srs.NewClassifier(2 * time.Second),
		Aggregator: &agg,
		SessionID:  uuid.New(),
		UserID:     uuid.New(),
	}

	sequential := base
	sequential.Concurrency = 1
	want, err := Run(context.Background(), events, nil, sequential)
	require.NoError(t, err)

	for _, concurrency := range []int{2, 8, 64} {
		parallel := base
		parallel.Concurrency = concurrency

		got, err := Run(context.Background(), events, nil, parallel)
		require.NoError(t, err)
		assert.Equal(t, want, got, "concurrency %d", concurrency)
	}

	assert.Equal(t, len(events), want.Summary.TotalReviews)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	cardID := uuid.New()

	t.Run("invalid event", func(t *testing.T) {
		events := []domain.ReviewEvent{
			event(cardID, domain.ResultCorrect, 0, nil),
			{CardID: cardID, Result: "perhaps", OccurredAt: start},
		}
		_, err := Run(context.Background(), events, nil, Options{})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "event 1")
	})

	t.Run("corrupt initial state", func(t *testing.T) {
		initial := map[uuid.UUID]domain.CardState{cardID: {EaseFactor: 0.9}}
		_, err := Run(context.Background(),
			[]domain.ReviewEvent{event(cardID, domain.ResultCorrect, 0, nil)}, initial, Options{})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRunHonorsCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, []domain.ReviewEvent{event(uuid.New(), domain.ResultCorrect, 0, nil)}, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmpty(t *testing.T) {
	t.Parallel()
	result, err := Run(context.Background(), nil, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.States)
	assert.Equal(t, 0, result.Summary.TotalReviews)
	assert.Equal(t, domain.SessionTypeReview, result.Summary.Type)
}
