// Package replay reschedules cards from a log of review events.
//
// Events of different cards are independent, so each card's history is
// replayed on its own goroutine. Events of one card are applied in
// OccurredAt order. The batch summary is folded afterwards in a single
// chronological pass, so the result does not depend on the concurrency.
package replay
