package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Book-specific validation errors
var (
	// ErrBookIDEmpty is returned when a book ID is empty or nil.
	ErrBookIDEmpty = errors.New("book ID cannot be empty")

	// ErrBookUserIDEmpty is returned when a book has no owner.
	ErrBookUserIDEmpty = errors.New("book user ID cannot be empty")

	// ErrBookTitleEmpty is returned when a book has no title.
	ErrBookTitleEmpty = errors.New("book title cannot be empty")

	// ErrBookTotalCardsNegative is returned when a book's card count is negative.
	ErrBookTotalCardsNegative = errors.New("book total cards cannot be negative")
)

// Book groups flashcards. Deleting a book deletes its cards.
// A public book accepts cards from any user; a private one only from its owner.
type Book struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	CoverImage  string    `json:"cover_image,omitempty"`
	IsPublic    bool      `json:"is_public"`
	TotalCards  int       `json:"total_cards"` // Flashcards filed under the book, kept by the store
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBook creates a public, empty Book owned by userID.
// Returns an error if validation fails.
func NewBook(userID uuid.UUID, title string, now time.Time) (*Book, error) {
	book := &Book{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		IsPublic:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Validate checks if the Book has valid data.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBookIDEmpty
	}

	if b.UserID == uuid.Nil {
		return ErrBookUserIDEmpty
	}

	if strings.TrimSpace(b.Title) == "" {
		return ErrBookTitleEmpty
	}

	if b.TotalCards < 0 {
		return ErrBookTotalCardsNegative
	}

	return nil
}

// AcceptsCardsFrom reports whether userID may file cards under the book.
func (b *Book) AcceptsCardsFrom(userID uuid.UUID) bool {
	return b.IsPublic || b.UserID == userID
}
