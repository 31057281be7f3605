package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// FlashcardStore defines the interface for flashcard persistence.
// A flashcard row carries the card's scheduling state, so reading and writing
// the state of one card goes through this store.
type FlashcardStore interface {
	// Create saves a new flashcard. It validates the card first.
	// Returns ErrInvalidEntity on validation failure and ErrFlashcardExists
	// if the user already has a card for the word.
	Create(ctx context.Context, card *domain.Flashcard) error

	// Get retrieves a flashcard by id without locking it.
	// Returns ErrFlashcardNotFound if the card does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// GetForUpdate retrieves a flashcard with a row-level lock (SELECT ... FOR UPDATE).
	// It must run inside a transaction; concurrent reviews of the same card
	// are serialized on this lock.
	// Returns ErrFlashcardNotFound if the card does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// UpdateState replaces the scheduling state of a card.
	// Returns ErrFlashcardNotFound if the card does not exist and
	// ErrInvalidEntity if the state violates its invariants.
	UpdateState(ctx context.Context, id uuid.UUID, state domain.CardState, updatedAt time.Time) error

	// ListDue returns up to limit cards of the user that are due at now,
	// oldest due date first. A non-nil bookID restricts the list to that book.
	ListDue(
		ctx context.Context,
		userID uuid.UUID,
		bookID *uuid.UUID,
		now time.Time,
		limit int,
	) ([]*domain.Flashcard, error)

	// CountByStatus returns how many of the user's cards are in each status.
	// Statuses with no cards are absent from the map.
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[domain.CardStatus]int, error)

	// WithTx returns a FlashcardStore that runs its queries on tx.
	WithTx(tx *sql.Tx) FlashcardStore
}
