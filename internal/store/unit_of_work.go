package store

import (
	"context"
	"database/sql"
)

// Repos groups the stores that take part in one unit of work.
type Repos struct {
	Books      BookStore
	Flashcards FlashcardStore
	Sessions   SessionStore
	Records    ReviewRecordStore
}

// UnitOfWork runs a function against stores that share one transaction.
// The work is committed only if fn returns nil.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// SQLUnitOfWork is the database/sql implementation of UnitOfWork.
type SQLUnitOfWork struct {
	db    TxBeginner
	repos Repos
}

var _ UnitOfWork = (*SQLUnitOfWork)(nil)

// NewSQLUnitOfWork creates a unit of work that binds repos to a transaction
// started on db. It panics if db or any store is nil.
func NewSQLUnitOfWork(db TxBeginner, repos Repos) *SQLUnitOfWork {
	if db == nil {
		panic("db cannot be nil")
	}
	if repos.Books == nil || repos.Flashcards == nil || repos.Sessions == nil || repos.Records == nil {
		panic("all stores must be provided")
	}
	return &SQLUnitOfWork{db: db, repos: repos}
}

// Within implements UnitOfWork.
func (u *SQLUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	return RunInTransaction(ctx, u.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, Repos{
			Books:      u.repos.Books.WithTx(tx),
			Flashcards: u.repos.Flashcards.WithTx(tx),
			Sessions:   u.repos.Sessions.WithTx(tx),
			Records:    u.repos.Records.WithTx(tx),
		})
	})
}
