// Package journal records every applied engine mutation as an ordered
// event stream with optimistic-concurrency appends. A stream replayed
// from version zero rebuilds the exact engine state that produced it.
// Memory and SQLite backends are provided.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is one applied mutation.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Stream is the engine instance the event belongs to.
	Stream string `json:"stream"`

	// Type names the mutation, e.g. "ExtensionAdded".
	Type string `json:"type"`

	// Data is the JSON-encoded mutation payload.
	Data json.RawMessage `json:"data,omitempty"`

	// Version is the event's position in its stream, starting at 0.
	// Assigned by the store on append.
	Version int `json:"version"`

	// Time is when the event was recorded.
	Time time.Time `json:"time"`
}

// NewEvent creates an event with a fresh id and the payload marshaled
// to JSON. Version is assigned when the event is appended.
func NewEvent(stream, eventType string, payload any) (*Event, error) {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("journal: marshal %s payload: %w", eventType, err)
		}
		data = b
	}
	return &Event{
		ID:     uuid.NewString(),
		Stream: stream,
		Type:   eventType,
		Data:   data,
		Time:   time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event payload into out.
func (e *Event) Decode(out any) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("journal: decode %s payload: %w", e.Type, err)
	}
	return nil
}
