package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// BookStore persists books. A book's TotalCards is maintained through
// AdjustCardCount in the same transaction that files or removes a card.
type BookStore interface {
	// Create saves a new book. It validates the book first.
	// Returns ErrInvalidEntity on validation failure.
	Create(ctx context.Context, book *domain.Book) error

	// Get retrieves a book by id.
	// Returns ErrBookNotFound if the book does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// GetForUpdate retrieves a book with a row-level lock.
	// Returns ErrBookNotFound if the book does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// ListVisible returns the books the user owns plus every public book,
	// newest first.
	ListVisible(ctx context.Context, userID uuid.UUID) ([]*domain.Book, error)

	// AdjustCardCount adds delta to the book's TotalCards.
	// Returns ErrBookNotFound if the book does not exist.
	AdjustCardCount(ctx context.Context, id uuid.UUID, delta int, updatedAt time.Time) error

	// Delete removes a book and, through the foreign key, its flashcards.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a BookStore that runs its queries on tx.
	WithTx(tx *sql.Tx) BookStore
}
