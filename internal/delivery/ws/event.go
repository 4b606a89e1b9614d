package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies an outbound websocket event
type EventType string

const (
	// EventSnapshot carries the full public AppState after a mutation
	EventSnapshot EventType = "snapshot"
	// EventMessage carries one newly appended message
	EventMessage EventType = "message"
)

// Event is the envelope for everything pushed to clients
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEvent marshals payload into an event envelope
func NewEvent(t EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   raw,
		CreatedAt: time.Now(),
	})
}
