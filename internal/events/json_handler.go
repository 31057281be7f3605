package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// JSONLinesHandler writes every event it receives as one JSON line.
// It is the reporting sink used by the command line tool.
type JSONLinesHandler struct {
	mu    sync.Mutex
	enc   *json.Encoder
	types map[string]bool
}

var _ EventHandler = (*JSONLinesHandler)(nil)

// NewJSONLinesHandler creates a handler writing to w. When types is not
// empty only events of those types are written.
func NewJSONLinesHandler(w io.Writer, types ...string) *JSONLinesHandler {
	h := &JSONLinesHandler{enc: json.NewEncoder(w)}
	if len(types) > 0 {
		h.types = make(map[string]bool, len(types))
		for _, t := range types {
			h.types[t] = true
		}
	}
	return h
}

// HandleEvent implements EventHandler.
func (h *JSONLinesHandler) HandleEvent(_ context.Context, event *Event) error {
	if h.types != nil && !h.types[event.Type] {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.enc.Encode(event); err != nil {
		return fmt.Errorf("write event %s: %w", event.ID, err)
	}
	return nil
}
