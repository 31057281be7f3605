package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// SessionStore persists session summaries.
type SessionStore interface {
	// Create saves a new session summary.
	Create(ctx context.Context, summary *domain.SessionSummary) error

	// Get retrieves a session summary by id.
	// Returns ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.SessionSummary, error)

	// GetForUpdate retrieves a session summary with a row-level lock so
	// concurrent reviews in one session fold in sequence.
	// Returns ErrSessionNotFound if the session does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.SessionSummary, error)

	// Update replaces the counters and timestamps of a session summary.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, summary *domain.SessionSummary) error

	// WithTx returns a SessionStore that runs its queries on tx.
	WithTx(tx *sql.Tx) SessionStore
}
