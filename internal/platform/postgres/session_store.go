package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

const sessionsTable = "study_sessions"

var sessionColumns = []string{
	"id", "user_id", "session_type",
	"total_reviews", "correct_count", "incorrect_count", "skipped_count",
	"timed_reviews", "average_response_time_ms", "score",
	"started_at", "updated_at", "closed_at",
}

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.SessionStore.Create
func (s *PostgresSessionStore) Create(ctx context.Context, summary *domain.SessionSummary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if summary.SessionID == uuid.Nil || summary.UserID == uuid.Nil || !summary.Type.Valid() {
		return fmt.Errorf("%w: session requires id, user and a known type", store.ErrInvalidEntity)
	}

	query, args, err := psql.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			summary.SessionID,
			summary.UserID,
			string(summary.Type),
			summary.TotalReviews,
			summary.CorrectCount,
			summary.IncorrectCount,
			summary.SkippedCount,
			summary.TimedReviews,
			summary.AverageResponseTimeMs,
			summary.Score,
			summary.StartedAt,
			summary.UpdatedAt,
			summary.ClosedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", summary.SessionID.String()))
		return MapError(err)
	}

	log.Info("session created",
		slog.String("session_id", summary.SessionID.String()),
		slog.String("user_id", summary.UserID.String()),
		slog.String("type", string(summary.Type)))
	return nil
}

// Get implements store.SessionStore.Get
func (s *PostgresSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.SessionSummary, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.SessionStore.GetForUpdate
func (s *PostgresSessionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.SessionSummary, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresSessionStore) get(ctx context.Context, id uuid.UUID, lock bool) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(sessionColumns...).
		From(sessionsTable).
		Where(squirrel.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session: %w", err)
	}

	var summary domain.SessionSummary
	var sessionType string
	var closedAt sql.NullTime

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&summary.SessionID,
		&summary.UserID,
		&sessionType,
		&summary.TotalReviews,
		&summary.CorrectCount,
		&summary.IncorrectCount,
		&summary.SkippedCount,
		&summary.TimedReviews,
		&summary.AverageResponseTimeMs,
		&summary.Score,
		&summary.StartedAt,
		&summary.UpdatedAt,
		&closedAt,
	)
	if err != nil {
		mapped := mapEntityError(err, store.ErrSessionNotFound, nil)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to get session",
				slog.String("error", err.Error()),
				slog.String("session_id", id.String()))
		}
		return nil, mapped
	}

	summary.Type = domain.SessionType(sessionType)
	if closedAt.Valid {
		t := closedAt.Time
		summary.ClosedAt = &t
	}

	return &summary, nil
}

// Update implements store.SessionStore.Update
func (s *PostgresSessionStore) Update(ctx context.Context, summary *domain.SessionSummary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Update(sessionsTable).
		Set("total_reviews", summary.TotalReviews).
		Set("correct_count", summary.CorrectCount).
		Set("incorrect_count", summary.IncorrectCount).
		Set("skipped_count", summary.SkippedCount).
		Set("timed_reviews", summary.TimedReviews).
		Set("average_response_time_ms", summary.AverageResponseTimeMs).
		Set("score", summary.Score).
		Set("updated_at", summary.UpdatedAt).
		Set("closed_at", summary.ClosedAt).
		Where(squirrel.Eq{"id": summary.SessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update session: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", summary.SessionID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrSessionNotFound)
}
