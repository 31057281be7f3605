package replay

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/session"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"golang.org/x/sync/errgroup"
)

// Options configures a replay. The zero value replays with default scheduling
// parameters, no fast-answer threshold and default score weights.
type Options struct {
	// Concurrency bounds the number of cards replayed at once.
	// Zero or less means one per CPU.
	Concurrency int

	Scheduler  srs.Service
	Classifier srs.Classifier
	Aggregator *session.Aggregator

	// NewState builds the state of a card missing from the initial states,
	// at the time of its first event. Defaults to domain.NewCardState.
	NewState func(now time.Time) domain.CardState

	// Identity of the batch summary
	SessionID   uuid.UUID
	UserID      uuid.UUID
	SessionType domain.SessionType
}

// Result is the outcome of a replay.
type Result struct {
	States  map[uuid.UUID]domain.CardState `json:"states"`
	Summary domain.SessionSummary          `json:"summary"`
}

type indexedEvent struct {
	index int
	event domain.ReviewEvent
}

type cardOutcome struct {
	cardID uuid.UUID
	state  domain.CardState
	grades []gradedEvent
}

type gradedEvent struct {
	indexedEvent
	grade domain.Grade
}

// Run replays events on top of initial and returns the final state of every
// card it touched, plus the states in initial that no event touched.
// initial is not modified. Any invalid event or corrupt state aborts the
// whole replay.
func Run(
	ctx context.Context,
	events []domain.ReviewEvent,
	initial map[uuid.UUID]domain.CardState,
	opts Options,
) (*Result, error) {
	opts = withDefaults(opts)

	groups, order, err := groupByCard(events)
	if err != nil {
		return nil, err
	}

	outcomes := make([]cardOutcome, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, cardID := range order {
		// Stop handing out cards once the replay is cancelled or failed
		if gctx.Err() != nil {
			break
		}

		history := groups[cardID]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			state, ok := initial[cardID]
			if !ok {
				state = opts.NewState(history[0].event.OccurredAt)
			}

			outcome, err := replayCard(cardID, state, history, opts)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	states := make(map[uuid.UUID]domain.CardState, len(initial)+len(outcomes))
	for id, state := range initial {
		states[id] = state
	}
	for _, outcome := range outcomes {
		states[outcome.cardID] = outcome.state
	}

	return &Result{
		States:  states,
		Summary: summarize(outcomes, opts),
	}, nil
}

func withDefaults(opts Options) Options {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = srs.NewDefaultService()
	}
	if opts.Aggregator == nil {
		agg := session.NewAggregator(session.DefaultScoreWeights())
		opts.Aggregator = &agg
	}
	if opts.NewState == nil {
		opts.NewState = domain.NewCardState
	}
	if opts.SessionType == "" {
		opts.SessionType = domain.SessionTypeReview
	}
	return opts
}

// groupByCard validates events and splits them per card, each group sorted
// by OccurredAt. order lists the cards in first-seen order.
func groupByCard(events []domain.ReviewEvent) (map[uuid.UUID][]indexedEvent, []uuid.UUID, error) {
	groups := make(map[uuid.UUID][]indexedEvent)
	var order []uuid.UUID

	for i, event := range events {
		if err := event.Validate(); err != nil {
			return nil, nil, fmt.Errorf("event %d: %w", i, err)
		}
		if _, seen := groups[event.CardID]; !seen {
			order = append(order, event.CardID)
		}
		groups[event.CardID] = append(groups[event.CardID], indexedEvent{index: i, event: event})
	}

	for _, group := range groups {
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].event.OccurredAt.Before(group[b].event.OccurredAt)
		})
	}

	return groups, order, nil
}

func replayCard(
	cardID uuid.UUID,
	state domain.CardState,
	history []indexedEvent,
	opts Options,
) (cardOutcome, error) {
	grades := make([]gradedEvent, 0, len(history))

	for _, item := range history {
		grade := opts.Classifier.ClassifyEvent(item.event)

		next, err := opts.Scheduler.Schedule(state, grade, item.event.OccurredAt)
		if err != nil {
			return cardOutcome{}, fmt.Errorf("card %s, event %d: %w", cardID, item.index, err)
		}

		state = next
		grades = append(grades, gradedEvent{indexedEvent: item, grade: grade})
	}

	return cardOutcome{cardID: cardID, state: state, grades: grades}, nil
}

// summarize folds every graded event into one summary in chronological
// order, ties broken by input position.
func summarize(outcomes []cardOutcome, opts Options) domain.SessionSummary {
	var all []gradedEvent
	for _, outcome := range outcomes {
		all = append(all, outcome.grades...)
	}

	sort.Slice(all, func(a, b int) bool {
		ta, tb := all[a].event.OccurredAt, all[b].event.OccurredAt
		if ta.Equal(tb) {
			return all[a].index < all[b].index
		}
		return ta.Before(tb)
	})

	var startedAt time.Time
	if len(all) > 0 {
		startedAt = all[0].event.OccurredAt
	}

	summary := session.New(opts.SessionID, opts.UserID, opts.SessionType, startedAt)
	for _, item := range all {
		summary = opts.Aggregator.Record(summary, item.event, item.grade)
	}
	return summary
}
