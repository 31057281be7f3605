package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// ReviewRecordStore persists the append-only review log.
type ReviewRecordStore interface {
	// Create appends a review record. It validates the record first.
	Create(ctx context.Context, record *domain.ReviewRecord) error

	// ListBySession returns the records of a session in creation order.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.ReviewRecord, error)

	// WithTx returns a ReviewRecordStore that runs its queries on tx.
	WithTx(tx *sql.Tx) ReviewRecordStore
}
