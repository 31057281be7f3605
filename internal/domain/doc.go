// Package domain contains the value objects of the review system: card
// scheduling state, grades, review events, session summaries and the
// flashcards they belong to. It has no dependency on storage or transport.
package domain
