// Package journal defines the append-only event log contract and an
// in-memory implementation.
//
// The journal is the single source of truth for a session. Events are
// appended in order and never updated or removed; there is deliberately no
// mutation surface on the contract.
package journal

import (
	"context"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

// EventLog is the append-only event log for game sessions.
type EventLog interface {
	// Append validates an event against the registry, assigns the next
	// sequence number for its session, and stores it. It returns the stored
	// event with addressing fields set.
	Append(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns events for a session with Seq greater than afterSeq,
	// oldest first, up to limit (0 means no limit).
	ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error)
	// Length returns the number of events stored for a session.
	Length(ctx context.Context, sessionID string) (uint64, error)
}

// AppendAll appends an ordered batch of events, returning the stored batch
// and the new log length. Append is the unconditional terminal step of a
// command: a batch is only submitted after a decision succeeded, so a failure
// here is an infrastructure fault, not a validation outcome.
func AppendAll(ctx context.Context, log EventLog, events []event.Event) ([]event.Event, uint64, error) {
	stored := make([]event.Event, 0, len(events))
	var length uint64
	for _, evt := range events {
		appended, err := log.Append(ctx, evt)
		if err != nil {
			return stored, length, err
		}
		stored = append(stored, appended)
		length = appended.Seq
	}
	return stored, length, nil
}
