package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/session"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/phrazzld/vocab-review/internal/events"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// DefaultDueLimit is used by DueCards when the caller passes no limit.
const DefaultDueLimit = 20

// Result describes the outcome of one submitted review.
type Result struct {
	Card     *domain.Flashcard     `json:"card"`     // The card with its new state
	Previous domain.CardState      `json:"previous"` // State before the review
	Grade    domain.Grade          `json:"grade"`
	Score    int                   `json:"score"`
	Record   *domain.ReviewRecord  `json:"record"`
	Summary  domain.SessionSummary `json:"summary"` // Summary after the review was folded in
}

// BookInput holds the descriptive fields of a new book.
type BookInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
	Private     bool   `json:"private,omitempty"`
}

// CardInput holds the study content of a new flashcard.
type CardInput struct {
	Word               string     `json:"word"`
	BookID             *uuid.UUID `json:"book_id,omitempty"`
	Pronunciation      string     `json:"pronunciation,omitempty"`
	Definition         string     `json:"definition,omitempty"`
	Translation        string     `json:"translation,omitempty"`
	Example            string     `json:"example,omitempty"`
	ExampleTranslation string     `json:"example_translation,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for session timestamps, postponing
// and due queries.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithInitialState replaces the function that builds the state of a new card.
func WithInitialState(newState func(now time.Time) domain.CardState) Option {
	return func(s *Service) {
		if newState != nil {
			s.newState = newState
		}
	}
}

// Service applies reviews to stored cards and sessions.
type Service struct {
	uow        store.UnitOfWork
	repos      store.Repos
	scheduler  srs.Service
	classifier srs.Classifier
	aggregator session.Aggregator
	emitter    events.EventEmitter
	clock      func() time.Time
	newState   func(now time.Time) domain.CardState
	logger     *slog.Logger
}

// NewService creates a review Service.
// repos serves reads outside a transaction; uow serves every write.
// It panics if uow, a store in repos, scheduler or emitter is nil.
func NewService(
	uow store.UnitOfWork,
	repos store.Repos,
	scheduler srs.Service,
	classifier srs.Classifier,
	aggregator session.Aggregator,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	// Validate inputs
	if uow == nil {
		panic("uow cannot be nil")
	}
	if repos.Books == nil || repos.Flashcards == nil || repos.Sessions == nil || repos.Records == nil {
		panic("all stores must be provided")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		uow:        uow,
		repos:      repos,
		scheduler:  scheduler,
		classifier: classifier,
		aggregator: aggregator,
		emitter:    emitter,
		clock:      func() time.Time { return time.Now().UTC() },
		newState:   domain.NewCardState,
		logger:     logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBook creates a new empty book owned by the user.
func (s *Service) CreateBook(ctx context.Context, userID uuid.UUID, input BookInput) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := domain.NewBook(userID, input.Title, s.clock())
	if err != nil {
		return nil, NewServiceError("create_book", "invalid book", err)
	}
	book.Description = input.Description
	book.Author = input.Author
	book.CoverImage = input.CoverImage
	book.IsPublic = !input.Private

	if err := s.repos.Books.Create(ctx, book); err != nil {
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("create_book", "failed to create book", err)
	}

	log.Debug("created book",
		slog.String("user_id", userID.String()),
		slog.String("book_id", book.ID.String()))
	return book, nil
}

// ListBooks returns the user's own books and every public book.
func (s *Service) ListBooks(ctx context.Context, userID uuid.UUID) ([]*domain.Book, error) {
	books, err := s.repos.Books.ListVisible(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_books", "failed to list books", err)
	}
	return books, nil
}

// DeleteBook removes one of the user's books together with its cards.
func (s *Service) DeleteBook(ctx context.Context, userID, bookID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("book_id", bookID.String()))

	err := s.uow.Within(ctx, func(ctx context.Context, repos store.Repos) error {
		book, err := s.lockVisibleBook(ctx, repos, userID, bookID)
		if err != nil {
			return err
		}
		if book.UserID != userID {
			return ErrBookNotOwned
		}
		return repos.Books.Delete(ctx, bookID)
	})
	if err != nil {
		if isServiceSentinel(err) {
			return err
		}
		log.Error("failed to delete book", slog.String("error", err.Error()))
		return NewServiceError("delete_book", "failed to delete book", err)
	}

	log.Debug("deleted book")
	return nil
}

// AddCard creates a new flashcard for the user. The card is due immediately.
// When the input names a book, the book is locked and its card count is
// raised in the same unit of work.
func (s *Service) AddCard(ctx context.Context, userID uuid.UUID, input CardInput) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock()

	card, err := domain.NewFlashcard(userID, input.Word, now)
	if err != nil {
		return nil, NewServiceError("add_card", "invalid flashcard", err)
	}
	card.BookID = input.BookID
	card.Pronunciation = input.Pronunciation
	card.Definition = input.Definition
	card.Translation = input.Translation
	card.Example = input.Example
	card.ExampleTranslation = input.ExampleTranslation
	card.State = s.newState(now)

	err = s.uow.Within(ctx, func(ctx context.Context, repos store.Repos) error {
		if card.BookID != nil {
			if _, err := s.lockVisibleBook(ctx, repos, userID, *card.BookID); err != nil {
				return err
			}
		}

		if err := repos.Flashcards.Create(ctx, card); err != nil {
			return fmt.Errorf("failed to create flashcard: %w", err)
		}

		if card.BookID != nil {
			if err := repos.Books.AdjustCardCount(ctx, *card.BookID, 1, now); err != nil {
				return fmt.Errorf("failed to update book card count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if isServiceSentinel(err) {
			return nil, err
		}
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("add_card", "failed to create flashcard", err)
	}

	log.Debug("created flashcard",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()))
	return card, nil
}

// StartSession opens a new session for the user.
func (s *Service) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	sessionType domain.SessionType,
) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !sessionType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionType, sessionType)
	}

	summary := session.New(uuid.New(), userID, sessionType, s.clock())
	if err := s.repos.Sessions.Create(ctx, &summary); err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("start_session", "failed to create session", err)
	}

	log.Debug("started session",
		slog.String("user_id", userID.String()),
		slog.String("session_id", summary.SessionID.String()),
		slog.String("session_type", string(sessionType)))
	return &summary, nil
}

// SubmitReview grades event and applies it to the card and the session.
//
// The card row and the session row are locked for the duration of the unit
// of work, so concurrent reviews of one card or one session are applied in
// sequence. The card is scheduled relative to the event's OccurredAt.
// A ReviewRecorded event is emitted after commit.
func (s *Service) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
	event domain.ReviewEvent,
) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", event.CardID.String()))

	if err := event.Validate(); err != nil {
		log.Warn("invalid review event", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	grade := s.classifier.ClassifyEvent(event)
	score := s.aggregator.Score(grade)

	var result *Result
	err := s.uow.Within(ctx, func(ctx context.Context, repos store.Repos) error {
		card, err := s.lockOwnedCard(ctx, repos, userID, event.CardID)
		if err != nil {
			return err
		}

		summary, err := s.lockOpenSession(ctx, repos, userID, sessionID)
		if err != nil {
			return err
		}

		previous := card.State
		next, err := s.scheduler.Schedule(previous, grade, event.OccurredAt)
		if err != nil {
			return fmt.Errorf("failed to schedule card: %w", err)
		}

		if err := repos.Flashcards.UpdateState(ctx, card.ID, next, s.clock()); err != nil {
			return fmt.Errorf("failed to update card state: %w", err)
		}
		card.State = next

		folded := s.aggregator.Record(*summary, event, grade)
		if err := repos.Sessions.Update(ctx, &folded); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		record, err := domain.NewReviewRecord(userID, folded, event, grade, score)
		if err != nil {
			return fmt.Errorf("failed to build review record: %w", err)
		}
		if err := repos.Records.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to save review record: %w", err)
		}

		result = &Result{
			Card:     card,
			Previous: previous,
			Grade:    grade,
			Score:    score,
			Record:   record,
			Summary:  folded,
		}
		return nil
	})
	if err != nil {
		if isServiceSentinel(err) {
			return nil, err
		}
		log.Error("failed to submit review", slog.String("error", err.Error()))
		return nil, NewServiceError("submit_review", "failed to apply review", err)
	}

	s.emit(ctx, log, events.TypeReviewRecorded, events.ReviewRecordedPayload{
		UserID:    userID,
		SessionID: sessionID,
		CardID:    event.CardID,
		Result:    event.Result,
		Grade:     grade,
		Previous:  result.Previous,
		Next:      result.Card.State,
		Summary:   result.Summary,
	}, event.OccurredAt)

	log.Debug("review applied",
		slog.String("result", string(event.Result)),
		slog.String("grade", string(grade)),
		slog.Float64("ease_factor", result.Card.State.EaseFactor),
		slog.Int("interval", result.Card.State.Interval),
		slog.Time("next_review_at", result.Card.State.NextReviewAt))

	return result, nil
}

// CloseSession finalizes a session and emits SessionClosed.
// Closing an already closed session returns its summary unchanged and emits
// nothing.
func (s *Service) CloseSession(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()))

	var (
		closed    domain.SessionSummary
		closedNow bool
	)
	err := s.uow.Within(ctx, func(ctx context.Context, repos store.Repos) error {
		summary, err := s.lockSession(ctx, repos, userID, sessionID)
		if err != nil {
			return err
		}
		if summary.IsClosed() {
			closed = *summary
			return nil
		}

		closed = s.aggregator.Close(*summary, s.clock())
		closedNow = true
		if err := repos.Sessions.Update(ctx, &closed); err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
	if err != nil {
		if isServiceSentinel(err) {
			return nil, err
		}
		log.Error("failed to close session", slog.String("error", err.Error()))
		return nil, NewServiceError("close_session", "failed to close session", err)
	}

	if closedNow {
		s.emit(ctx, log, events.TypeSessionClosed, events.SessionClosedPayload{Summary: closed}, *closed.ClosedAt)
		log.Debug("session closed",
			slog.Int("total_reviews", closed.TotalReviews),
			slog.Int("score", closed.Score))
	}

	return &closed, nil
}

// DueCards returns up to limit cards of the user due at now, oldest first.
// A non-nil bookID restricts the list to that book. A zero now means the
// service clock and a non-positive limit means DefaultDueLimit.
func (s *Service) DueCards(
	ctx context.Context,
	userID uuid.UUID,
	bookID *uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	if now.IsZero() {
		now = s.clock()
	}
	if limit <= 0 {
		limit = DefaultDueLimit
	}

	cards, err := s.repos.Flashcards.ListDue(ctx, userID, bookID, now, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("due_cards", "failed to list due cards", err)
	}
	return cards, nil
}

// StatusCounts returns how many of the user's cards are in each status.
func (s *Service) StatusCounts(ctx context.Context, userID uuid.UUID) (map[domain.CardStatus]int, error) {
	counts, err := s.repos.Flashcards.CountByStatus(ctx, userID)
	if err != nil {
		return nil, NewServiceError("status_counts", "failed to count cards", err)
	}
	return counts, nil
}

// Postpone pushes a card's next review back by days without touching its
// scheduling progress.
func (s *Service) Postpone(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	days int,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	if days < 1 {
		return nil, srs.ErrInvalidDays
	}

	var card *domain.Flashcard
	err := s.uow.Within(ctx, func(ctx context.Context, repos store.Repos) error {
		locked, err := s.lockOwnedCard(ctx, repos, userID, cardID)
		if err != nil {
			return err
		}

		now := s.clock()
		next, err := s.scheduler.Postpone(locked.State, days, now)
		if err != nil {
			return fmt.Errorf("failed to postpone card: %w", err)
		}
		if err := repos.Flashcards.UpdateState(ctx, locked.ID, next, now); err != nil {
			return fmt.Errorf("failed to update card state: %w", err)
		}

		locked.State = next
		locked.UpdatedAt = now
		card = locked
		return nil
	})
	if err != nil {
		if isServiceSentinel(err) {
			return nil, err
		}
		log.Error("failed to postpone card", slog.String("error", err.Error()))
		return nil, NewServiceError("postpone", "failed to postpone card", err)
	}

	log.Debug("card postponed",
		slog.Int("days", days),
		slog.Time("next_review_at", card.State.NextReviewAt))
	return card, nil
}

func (s *Service) lockOwnedCard(
	ctx context.Context,
	repos store.Repos,
	userID, cardID uuid.UUID,
) (*domain.Flashcard, error) {
	card, err := repos.Flashcards.GetForUpdate(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	if !card.OwnedBy(userID) {
		logger.FromContextOrDefault(ctx, s.logger).Warn("user does not own card",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("owner_id", card.UserID.String()))
		return nil, ErrCardNotOwned
	}
	return card, nil
}

// lockVisibleBook locks a book the user may file cards under. Another
// user's private book is reported as missing.
func (s *Service) lockVisibleBook(
	ctx context.Context,
	repos store.Repos,
	userID, bookID uuid.UUID,
) (*domain.Book, error) {
	book, err := repos.Books.GetForUpdate(ctx, bookID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	if !book.AcceptsCardsFrom(userID) {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *Service) lockSession(
	ctx context.Context,
	repos store.Repos,
	userID, sessionID uuid.UUID,
) (*domain.SessionSummary, error) {
	summary, err := repos.Sessions.GetForUpdate(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Another user's session is reported as missing
	if summary.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return summary, nil
}

func (s *Service) lockOpenSession(
	ctx context.Context,
	repos store.Repos,
	userID, sessionID uuid.UUID,
) (*domain.SessionSummary, error) {
	summary, err := s.lockSession(ctx, repos, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if summary.IsClosed() {
		return nil, ErrSessionClosed
	}
	return summary, nil
}

// emit publishes a notification. The change it describes is already
// committed, so failures are logged and not returned.
func (s *Service) emit(
	ctx context.Context,
	log *slog.Logger,
	eventType string,
	payload interface{},
	occurredAt time.Time,
) {
	event, err := events.NewEvent(eventType, payload, occurredAt)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("failed to emit event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
	}
}
