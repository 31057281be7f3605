package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

const flashcardsTable = "flashcards"

var flashcardColumns = []string{
	"id", "user_id", "book_id", "word", "pronunciation", "definition",
	"translation", "example", "example_translation",
	"ease_factor", "interval_days", "repetitions", "next_review_at", "status",
	"created_at", "updated_at",
}

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the FlashcardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.FlashcardStore.Create
func (s *PostgresFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert(flashcardsTable).
		Columns(flashcardColumns...).
		Values(
			card.ID,
			card.UserID,
			nullUUID(card.BookID),
			card.Word,
			card.Pronunciation,
			card.Definition,
			card.Translation,
			card.Example,
			card.ExampleTranslation,
			card.State.EaseFactor,
			card.State.Interval,
			card.State.Repetitions,
			card.State.NextReviewAt,
			string(card.State.Status),
			card.CreatedAt,
			card.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert flashcard: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()),
			slog.String("user_id", card.UserID.String()))
		return mapEntityError(err, nil, store.ErrFlashcardExists)
	}

	log.Info("flashcard created",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("user_id", card.UserID.String()))
	return nil
}

// Get implements store.FlashcardStore.Get
func (s *PostgresFlashcardStore) Get(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.FlashcardStore.GetForUpdate
func (s *PostgresFlashcardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresFlashcardStore) get(ctx context.Context, id uuid.UUID, lock bool) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(flashcardColumns...).
		From(flashcardsTable).
		Where(squirrel.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select flashcard: %w", err)
	}

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		mapped := mapEntityError(err, store.ErrFlashcardNotFound, nil)
		if store.IsNotFoundError(mapped) {
			log.Debug("flashcard not found", slog.String("flashcard_id", id.String()))
		} else {
			log.Error("failed to get flashcard",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", id.String()),
				slog.Bool("for_update", lock))
		}
		return nil, mapped
	}

	return card, nil
}

// UpdateState implements store.FlashcardStore.UpdateState
func (s *PostgresFlashcardStore) UpdateState(
	ctx context.Context,
	id uuid.UUID,
	state domain.CardState,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("card state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Update(flashcardsTable).
		Set("ease_factor", state.EaseFactor).
		Set("interval_days", state.Interval).
		Set("repetitions", state.Repetitions).
		Set("next_review_at", state.NextReviewAt).
		Set("status", string(state.Status)).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update flashcard state: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update flashcard state",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrFlashcardNotFound); err != nil {
		return err
	}

	log.Debug("flashcard state updated",
		slog.String("flashcard_id", id.String()),
		slog.String("status", string(state.Status)),
		slog.Int("interval", state.Interval))
	return nil
}

// ListDue implements store.FlashcardStore.ListDue
func (s *PostgresFlashcardStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	bookID *uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}

	builder := psql.Select(flashcardColumns...).
		From(flashcardsTable).
		Where(squirrel.Eq{"user_id": userID})
	if bookID != nil {
		builder = builder.Where(squirrel.Eq{"book_id": *bookID})
	}

	query, args, err := builder.
		Where(squirrel.LtOrEq{"next_review_at": now}).
		OrderBy("next_review_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due flashcards: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Flashcard{}
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found due flashcards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// CountByStatus implements store.FlashcardStore.CountByStatus
func (s *PostgresFlashcardStore) CountByStatus(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.CardStatus]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("status", "COUNT(*)").
		From(flashcardsTable).
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count flashcards: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to count flashcards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	counts := make(map[domain.CardStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.CardStatus(status)] = n
	}

	return counts, rows.Err()
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var card domain.Flashcard
	var bookID uuid.NullUUID
	var status string

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&bookID,
		&card.Word,
		&card.Pronunciation,
		&card.Definition,
		&card.Translation,
		&card.Example,
		&card.ExampleTranslation,
		&card.State.EaseFactor,
		&card.State.Interval,
		&card.State.Repetitions,
		&card.State.NextReviewAt,
		&status,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bookID.Valid {
		id := bookID.UUID
		card.BookID = &id
	}
	card.State.Status = domain.CardStatus(status)

	return &card, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
