package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// Event types emitted by the review service
const (
	TypeReviewRecorded = "review.recorded"
	TypeSessionClosed  = "session.closed"
)

// Event is a notification for reporting collaborators.
// The payload is serialized so handlers do not depend on the emitting package.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type tells handlers how to decode Payload
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is the time of the change the event describes
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given type and payload.
func NewEvent(eventType string, payload interface{}, occurredAt time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    payloadBytes,
		OccurredAt: occurredAt,
	}, nil
}

// ReviewRecordedPayload describes one committed review.
type ReviewRecordedPayload struct {
	UserID    uuid.UUID             `json:"user_id"`
	SessionID uuid.UUID             `json:"session_id"`
	CardID    uuid.UUID             `json:"card_id"`
	Result    domain.RawResult      `json:"result"`
	Grade     domain.Grade          `json:"grade"`
	Previous  domain.CardState      `json:"previous"`
	Next      domain.CardState      `json:"next"`
	Summary   domain.SessionSummary `json:"summary"`
}

// SessionClosedPayload carries the final summary of a session.
type SessionClosedPayload struct {
	Summary domain.SessionSummary `json:"summary"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}
