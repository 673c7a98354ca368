// Package event defines the canonical event envelope and event-type registry
// used by the game write path.
//
// Events are immutable business facts emitted by accepted decisions. The
// registry enforces actor metadata and payload validity before the journal
// assigns sequence numbers. A stable event contract is the foundation for
// replay, projection correctness, and persistence round-trips.
package event
