package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/vocab-review/internal/domain/session"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/phrazzld/vocab-review/internal/events"
	"github.com/phrazzld/vocab-review/internal/platform/postgres"
	"github.com/phrazzld/vocab-review/internal/service/review"
	"github.com/phrazzld/vocab-review/internal/store"
)

// ErrDatabaseNotConfigured is returned by commands that need PostgreSQL when
// no database URL is set.
var ErrDatabaseNotConfigured = errors.New("database URL is not configured (set VOCAB_DATABASE_URL)")

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	if a.cfg.Database.URL == "" {
		return nil, ErrDatabaseNotConfigured
	}
	db, err := postgres.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (a *app) aggregator() session.Aggregator {
	return session.NewAggregator(a.cfg.Weights())
}

// reviewService wires the review service to PostgreSQL. The returned close
// function releases the database and the notification file.
func (a *app) reviewService(ctx context.Context) (*review.Service, func(), error) {
	scheduler, err := srs.NewServiceWithParams(a.cfg.SRSParams())
	if err != nil {
		return nil, nil, err
	}

	db, err := a.openDB(ctx)
	if err != nil {
		return nil, nil, err
	}

	emitter := events.NewInMemoryEventEmitter(a.log)
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		a.log.Debug("notification", slog.String("event_type", e.Type), slog.String("event_id", e.ID.String()))
		return nil
	}))

	closers := []func() error{db.Close}
	if a.eventsPath != "" {
		f, err := os.OpenFile(a.eventsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("open events output: %w", err)
		}
		emitter.RegisterHandler(events.NewJSONLinesHandler(f))
		closers = append(closers, f.Close)
	}

	repos := store.Repos{
		Books:      postgres.NewPostgresBookStore(db, a.log),
		Flashcards: postgres.NewPostgresFlashcardStore(db, a.log),
		Sessions:   postgres.NewPostgresSessionStore(db, a.log),
		Records:    postgres.NewPostgresReviewRecordStore(db, a.log),
	}

	svc := review.NewService(
		store.NewSQLUnitOfWork(db, repos),
		repos,
		scheduler,
		a.cfg.Classifier(),
		a.aggregator(),
		emitter,
		a.log,
		review.WithInitialState(a.cfg.NewCardState),
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				a.log.Warn("failed to release resource", slog.String("error", err.Error()))
			}
		}
	}
	return svc, closeAll, nil
}
