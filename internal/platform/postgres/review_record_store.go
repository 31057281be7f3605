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

const reviewRecordsTable = "review_records"

var reviewRecordColumns = []string{
	"id", "user_id", "flashcard_id", "session_id", "session_type",
	"result", "grade", "response_time_ms", "score", "created_at",
}

// PostgresReviewRecordStore implements the store.ReviewRecordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewRecordStore creates a new PostgreSQL implementation of the ReviewRecordStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewRecordStore(db store.DBTX, logger *slog.Logger) *PostgresReviewRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_record_store")),
	}
}

// Ensure PostgresReviewRecordStore implements store.ReviewRecordStore interface
var _ store.ReviewRecordStore = (*PostgresReviewRecordStore)(nil)

// WithTx implements store.ReviewRecordStore.WithTx
func (s *PostgresReviewRecordStore) WithTx(tx *sql.Tx) store.ReviewRecordStore {
	return &PostgresReviewRecordStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ReviewRecordStore.Create
// Returns store.ErrInvalidEntity if the flashcard or session doesn't exist.
func (s *PostgresReviewRecordStore) Create(ctx context.Context, record *domain.ReviewRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("review record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert(reviewRecordsTable).
		Columns(reviewRecordColumns...).
		Values(
			record.ID,
			record.UserID,
			record.FlashcardID,
			record.SessionID,
			string(record.SessionType),
			string(record.Result),
			string(record.Grade),
			record.ResponseTimeMs,
			record.Score,
			record.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert review record: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create review record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()),
			slog.String("flashcard_id", record.FlashcardID.String()))
		return MapError(err)
	}

	log.Debug("review record created",
		slog.String("record_id", record.ID.String()),
		slog.String("grade", string(record.Grade)))
	return nil
}

// ListBySession implements store.ReviewRecordStore.ListBySession
func (s *PostgresReviewRecordStore) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(reviewRecordColumns...).
		From(reviewRecordsTable).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list review records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review records",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := []*domain.ReviewRecord{}
	for rows.Next() {
		var rec domain.ReviewRecord
		var sessionType, result, grade string
		var responseTime sql.NullInt32

		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.FlashcardID,
			&rec.SessionID,
			&sessionType,
			&result,
			&grade,
			&responseTime,
			&rec.Score,
			&rec.CreatedAt,
		); err != nil {
			log.Error("failed to scan review record row", slog.String("error", err.Error()))
			return nil, err
		}

		rec.SessionType = domain.SessionType(sessionType)
		rec.Result = domain.RawResult(result)
		rec.Grade = domain.Grade(grade)
		if responseTime.Valid {
			ms := int(responseTime.Int32)
			rec.ResponseTimeMs = &ms
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
