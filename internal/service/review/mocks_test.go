package review

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/events"
	"github.com/phrazzld/vocab-review/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockFlashcardStore mocks the store.FlashcardStore interface
type MockFlashcardStore struct {
	mock.Mock
}

func (m *MockFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardStore) Get(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) UpdateState(
	ctx context.Context,
	id uuid.UUID,
	state domain.CardState,
	updatedAt time.Time,
) error {
	args := m.Called(ctx, id, state, updatedAt)
	return args.Error(0)
}

func (m *MockFlashcardStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	bookID *uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	args := m.Called(ctx, userID, bookID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Flashcard), args.Error(1)
}

func (m *MockFlashcardStore) CountByStatus(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.CardStatus]int, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.CardStatus]int), args.Error(1)
}

func (m *MockFlashcardStore) WithTx(*sql.Tx) store.FlashcardStore {
	return m
}

// MockBookStore mocks the store.BookStore interface
type MockBookStore struct {
	mock.Mock
}

func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookStore) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookStore) ListVisible(ctx context.Context, userID uuid.UUID) ([]*domain.Book, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookStore) AdjustCardCount(ctx context.Context, id uuid.UUID, delta int, updatedAt time.Time) error {
	args := m.Called(ctx, id, delta, updatedAt)
	return args.Error(0)
}

func (m *MockBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookStore) WithTx(*sql.Tx) store.BookStore {
	return m
}

// MockSessionStore mocks the store.SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, summary *domain.SessionSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.SessionSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionSummary), args.Error(1)
}

func (m *MockSessionStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.SessionSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionSummary), args.Error(1)
}

func (m *MockSessionStore) Update(ctx context.Context, summary *domain.SessionSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSessionStore) WithTx(*sql.Tx) store.SessionStore {
	return m
}

// MockReviewRecordStore mocks the store.ReviewRecordStore interface
type MockReviewRecordStore struct {
	mock.Mock
}

func (m *MockReviewRecordStore) Create(ctx context.Context, record *domain.ReviewRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockReviewRecordStore) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]*domain.ReviewRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewRecord), args.Error(1)
}

func (m *MockReviewRecordStore) WithTx(*sql.Tx) store.ReviewRecordStore {
	return m
}

// fakeUnitOfWork hands the mocked stores to fn without a database.
// It counts calls and reports whether the last unit of work would commit.
type fakeUnitOfWork struct {
	repos      store.Repos
	calls      int
	committed  bool
	beginError error
}

func (u *fakeUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos store.Repos) error) error {
	u.calls++
	if u.beginError != nil {
		return u.beginError
	}
	err := fn(ctx, u.repos)
	u.committed = err == nil
	return err
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return e.err
}

func (e *recordingEmitter) Events() []*events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*events.Event(nil), e.events...)
}
