package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is empty or nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrFlashcardUserIDEmpty is returned when a flashcard's user ID is empty or nil.
	ErrFlashcardUserIDEmpty = errors.New("flashcard user ID cannot be empty")

	// ErrFlashcardWordEmpty is returned when a flashcard has no word.
	ErrFlashcardWordEmpty = errors.New("flashcard word cannot be empty")
)

// Flashcard is a vocabulary card owned by a user, optionally grouped in a book.
// Its scheduling data lives in State; everything else is study content.
type Flashcard struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"user_id"`
	BookID             *uuid.UUID `json:"book_id,omitempty"`
	Word               string     `json:"word"`
	Pronunciation      string     `json:"pronunciation,omitempty"`
	Definition         string     `json:"definition,omitempty"`
	Translation        string     `json:"translation,omitempty"`
	Example            string     `json:"example,omitempty"`
	ExampleTranslation string     `json:"example_translation,omitempty"`
	State              CardState  `json:"state"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewFlashcard creates a new Flashcard for the given user and word.
// The card starts in the new state and is due immediately.
// Returns an error if validation fails.
func NewFlashcard(userID uuid.UUID, word string, now time.Time) (*Flashcard, error) {
	card := &Flashcard{
		ID:        uuid.New(),
		UserID:    userID,
		Word:      strings.TrimSpace(word),
		State:     NewCardState(now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrFlashcardUserIDEmpty
	}

	if strings.TrimSpace(c.Word) == "" {
		return ErrFlashcardWordEmpty
	}

	return c.State.Validate()
}

// OwnedBy reports whether the card belongs to userID.
func (c *Flashcard) OwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}
