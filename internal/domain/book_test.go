package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBook(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

	book, err := NewBook(userID, "  Everyday Spanish ", now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if book.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if book.Title != "Everyday Spanish" {
		t.Errorf("Expected trimmed title, got %q", book.Title)
	}

	if !book.IsPublic {
		t.Error("Expected new books to be public")
	}

	if book.TotalCards != 0 {
		t.Errorf("Expected empty book, got %d cards", book.TotalCards)
	}

	_, err = NewBook(uuid.Nil, "title", now)
	if err != ErrBookUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrBookUserIDEmpty, err)
	}

	_, err = NewBook(userID, " ", now)
	if err != ErrBookTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrBookTitleEmpty, err)
	}
}

func TestBookValidate(t *testing.T) {
	t.Parallel()
	valid := Book{ID: uuid.New(), UserID: uuid.New(), Title: "Verbs"}

	testCases := []struct {
		name    string
		mutate  func(b *Book)
		wantErr error
	}{
		{"valid", func(b *Book) {}, nil},
		{"missing id", func(b *Book) { b.ID = uuid.Nil }, ErrBookIDEmpty},
		{"missing owner", func(b *Book) { b.UserID = uuid.Nil }, ErrBookUserIDEmpty},
		{"blank title", func(b *Book) { b.Title = "\t" }, ErrBookTitleEmpty},
		{"negative count", func(b *Book) { b.TotalCards = -1 }, ErrBookTotalCardsNegative},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			book := valid
			tc.mutate(&book)
			if err := book.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestBookAcceptsCardsFrom(t *testing.T) {
	t.Parallel()
	owner, other := uuid.New(), uuid.New()
	book := Book{ID: uuid.New(), UserID: owner, Title: "Idioms", IsPublic: false}

	if !book.AcceptsCardsFrom(owner) {
		t.Error("Expected the owner to file cards in a private book")
	}
	if book.AcceptsCardsFrom(other) {
		t.Error("Expected a private book to refuse other users")
	}

	book.IsPublic = true
	if !book.AcceptsCardsFrom(other) {
		t.Error("Expected a public book to accept other users")
	}
}
