package journal

import (
	"context"
	"errors"
	"sync"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// Memory is an in-memory EventLog keyed by session id.
type Memory struct {
	mu       sync.Mutex
	registry *event.Registry
	sessions map[string][]event.Event
}

// NewMemory creates an in-memory event log validating against registry.
func NewMemory(registry *event.Registry) *Memory {
	return &Memory{
		registry: registry,
		sessions: make(map[string][]event.Event),
	}
}

// Append validates the event and stores it with the next sequence number.
func (m *Memory) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if m == nil {
		return event.Event{}, errors.New("memory journal is not configured")
	}
	if m.registry == nil {
		return event.Event{}, errors.New("event registry is required")
	}
	validated, err := m.registry.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = validated

	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.sessions[evt.SessionID]
	evt.Seq = uint64(len(events)) + 1
	m.sessions[evt.SessionID] = append(events, evt)
	return evt, nil
}

// ListEvents returns events after afterSeq, oldest first.
func (m *Memory) ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.sessions[sessionID]
	if afterSeq >= uint64(len(events)) {
		return nil, nil
	}
	selected := events[afterSeq:]
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	out := make([]event.Event, len(selected))
	copy(out, selected)
	return out, nil
}

// Length returns the number of stored events for a session.
func (m *Memory) Length(ctx context.Context, sessionID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint64(len(m.sessions[sessionID])), nil
}
