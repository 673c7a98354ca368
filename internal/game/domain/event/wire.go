package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// WireTimestampLayout is the persisted ISO-8601 timestamp layout. The fixed
// millisecond width keeps the encoding stable across round-trips.
const WireTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// wireEvent is the persisted body of an event. Sequence and session are
// addressing concerns owned by the journal, not part of the wire body.
type wireEvent struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	Timestamp  string          `json:"timestamp"`
	ActorType  string          `json:"actor_type,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
}

// MarshalWire encodes the event body in the persisted wire format.
func MarshalWire(evt Event) ([]byte, error) {
	if !evt.Type.IsValid() {
		return nil, ErrTypeRequired
	}
	if evt.Timestamp.IsZero() {
		return nil, ErrTimestampRequired
	}
	data := evt.PayloadJSON
	if len(data) == 0 {
		data = []byte("{}")
	}
	body := wireEvent{
		Type:       string(evt.Type),
		Data:       json.RawMessage(data),
		Timestamp:  evt.Timestamp.UTC().Truncate(time.Millisecond).Format(WireTimestampLayout),
		ActorType:  string(evt.ActorType),
		RequestID:  evt.RequestID,
		EntityType: evt.EntityType,
		EntityID:   evt.EntityID,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal wire event: %w", err)
	}
	return encoded, nil
}

// UnmarshalWire decodes an event body from the persisted wire format.
// Sequence and session id are assigned by the caller from journal addressing.
func UnmarshalWire(raw []byte) (Event, error) {
	var body wireEvent
	if err := json.Unmarshal(raw, &body); err != nil {
		return Event{}, fmt.Errorf("unmarshal wire event: %w", err)
	}
	if body.Type == "" {
		return Event{}, ErrTypeRequired
	}
	timestamp, err := time.Parse(WireTimestampLayout, body.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parse wire timestamp: %w", err)
	}
	data := body.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	return Event{
		Timestamp:   timestamp.UTC(),
		Type:        Type(body.Type),
		ActorType:   ActorType(body.ActorType),
		RequestID:   body.RequestID,
		EntityType:  body.EntityType,
		EntityID:    body.EntityID,
		PayloadJSON: []byte(data),
	}, nil
}
