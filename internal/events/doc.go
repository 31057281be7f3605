// Package events carries review notifications to reporting collaborators.
//
// The review service emits a ReviewRecorded event after each committed review
// and a SessionClosed event when a session is finalized. Handlers receive a
// serialized payload, so reporting code never imports the service.
package events
