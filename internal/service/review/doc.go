// Package review is the application service around the scheduling core.
//
// It applies graded reviews to stored flashcards and session summaries in a
// single unit of work, so a card's state, its session summary and the review
// log never disagree. Notifications for reporting go out through an
// events.EventEmitter once the work is committed.
package review
