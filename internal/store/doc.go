// Package store defines the persistence contracts used by the review service:
// books, card state by id with read-then-write atomicity per card, session
// summaries and the review log. It also provides the transaction helpers
// shared by all SQL-backed implementations.
package store
