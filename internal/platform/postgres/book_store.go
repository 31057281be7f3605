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

const booksTable = "books"

var bookColumns = []string{
	"id", "user_id", "title", "description", "author", "cover_image",
	"is_public", "total_cards", "created_at", "updated_at",
}

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the BookStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.BookStore.Create
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert(booksTable).
		Columns(bookColumns...).
		Values(
			book.ID,
			book.UserID,
			book.Title,
			book.Description,
			book.Author,
			book.CoverImage,
			book.IsPublic,
			book.TotalCards,
			book.CreatedAt,
			book.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert book: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return MapError(err)
	}

	log.Info("book created",
		slog.String("book_id", book.ID.String()),
		slog.String("user_id", book.UserID.String()))
	return nil
}

// Get implements store.BookStore.Get
func (s *PostgresBookStore) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.BookStore.GetForUpdate
func (s *PostgresBookStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresBookStore) get(ctx context.Context, id uuid.UUID, lock bool) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(bookColumns...).
		From(booksTable).
		Where(squirrel.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select book: %w", err)
	}

	book, err := scanBook(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		mapped := mapEntityError(err, store.ErrBookNotFound, nil)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to get book",
				slog.String("error", err.Error()),
				slog.String("book_id", id.String()))
		}
		return nil, mapped
	}

	return book, nil
}

// ListVisible implements store.BookStore.ListVisible
func (s *PostgresBookStore) ListVisible(ctx context.Context, userID uuid.UUID) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select(bookColumns...).
		From(booksTable).
		Where(squirrel.Or{squirrel.Eq{"user_id": userID}, squirrel.Eq{"is_public": true}}).
		OrderBy("created_at DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list books: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query books",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, rows.Err()
}

// AdjustCardCount implements store.BookStore.AdjustCardCount
func (s *PostgresBookStore) AdjustCardCount(
	ctx context.Context,
	id uuid.UUID,
	delta int,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Update(booksTable).
		Set("total_cards", squirrel.Expr("total_cards + ?", delta)).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build adjust book card count: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to adjust book card count",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()),
			slog.Int("delta", delta))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrBookNotFound)
}

// Delete implements store.BookStore.Delete
func (s *PostgresBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Delete(booksTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete book: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete book",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book deleted", slog.String("book_id", id.String()))
	return nil
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var book domain.Book

	err := row.Scan(
		&book.ID,
		&book.UserID,
		&book.Title,
		&book.Description,
		&book.Author,
		&book.CoverImage,
		&book.IsPublic,
		&book.TotalCards,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &book, nil
}
