// Package sqlite provides a SQLite-backed event journal with durable replay
// checkpoints.
//
// The events table is append-only at the schema level: the only writes are
// inserts, sequence numbers are allocated inside the append transaction, and
// a unique (session_id, seq) index makes duplicate allocation impossible.
// Checkpoints live in a separate upsert table keyed by session.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/replay"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	session_id   TEXT    NOT NULL,
	seq          INTEGER NOT NULL,
	event_type   TEXT    NOT NULL,
	timestamp_ms INTEGER NOT NULL,
	actor_type   TEXT    NOT NULL,
	request_id   TEXT    NOT NULL DEFAULT '',
	entity_type  TEXT    NOT NULL DEFAULT '',
	entity_id    TEXT    NOT NULL DEFAULT '',
	payload_json BLOB    NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_events_session_type ON events (session_id, event_type);
CREATE TABLE IF NOT EXISTS checkpoints (
	session_id TEXT    PRIMARY KEY,
	last_seq   INTEGER NOT NULL,
	updated_ms INTEGER NOT NULL
);
`

// Store is a SQLite-backed implementation of journal.EventLog.
type Store struct {
	sqlDB    *sql.DB
	registry *event.Registry
}

// Open opens (creating if needed) a journal database at the provided path.
// The registry validates every appended event; it is required.
func Open(path string, registry *event.Registry) (*Store, error) {
	if registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, registry: registry}, nil
}

// Close closes the underlying database. Nil-safe so callers can defer it in
// all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis reverses toMillis for persisted millisecond timestamps.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Append validates the event, allocates the next sequence number inside a
// transaction, and inserts it.
func (s *Store) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	validated, err := s.registry.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = validated

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var lastSeq sql.NullInt64
	row := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM events WHERE session_id = ?`, evt.SessionID)
	if err := row.Scan(&lastSeq); err != nil {
		return event.Event{}, fmt.Errorf("load last seq: %w", err)
	}
	evt.Seq = uint64(lastSeq.Int64) + 1

	if _, err := tx.ExecContext(ctx, `
INSERT INTO events (session_id, seq, event_type, timestamp_ms, actor_type, request_id, entity_type, entity_id, payload_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.SessionID,
		int64(evt.Seq),
		string(evt.Type),
		toMillis(evt.Timestamp),
		string(evt.ActorType),
		evt.RequestID,
		evt.EntityType,
		evt.EntityID,
		[]byte(evt.PayloadJSON),
	); err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}
	return evt, nil
}

// ListEvents returns events after afterSeq, oldest first, up to limit
// (0 means no limit).
func (s *Store) ListEvents(ctx context.Context, sessionID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	query := `
SELECT session_id, seq, event_type, timestamp_ms, actor_type, request_id, entity_type, entity_id, payload_json
FROM events
WHERE session_id = ? AND seq > ?
ORDER BY seq ASC`
	args := []any{sessionID, int64(afterSeq)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt         event.Event
			seq         int64
			eventType   string
			timestampMS int64
			actorType   string
			payload     []byte
		)
		if err := rows.Scan(&evt.SessionID, &seq, &eventType, &timestampMS, &actorType, &evt.RequestID, &evt.EntityType, &evt.EntityID, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Seq = uint64(seq)
		evt.Type = event.Type(eventType)
		evt.Timestamp = fromMillis(timestampMS)
		evt.ActorType = event.ActorType(actorType)
		evt.PayloadJSON = payload
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Get returns the replay checkpoint for a session, or
// replay.ErrCheckpointNotFound when none was saved yet.
func (s *Store) Get(ctx context.Context, sessionID string) (replay.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return replay.Checkpoint{}, err
	}
	if s == nil || s.sqlDB == nil {
		return replay.Checkpoint{}, fmt.Errorf("storage is not configured")
	}
	var (
		lastSeq   int64
		updatedMS int64
	)
	row := s.sqlDB.QueryRowContext(ctx, `SELECT last_seq, updated_ms FROM checkpoints WHERE session_id = ?`, sessionID)
	if err := row.Scan(&lastSeq, &updatedMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return replay.Checkpoint{}, replay.ErrCheckpointNotFound
		}
		return replay.Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}
	return replay.Checkpoint{
		SessionID: sessionID,
		LastSeq:   uint64(lastSeq),
		UpdatedAt: fromMillis(updatedMS),
	}, nil
}

// Save upserts the replay checkpoint for a session.
func (s *Store) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO checkpoints (session_id, last_seq, updated_ms)
VALUES (?, ?, ?)
ON CONFLICT (session_id) DO UPDATE SET
	last_seq   = excluded.last_seq,
	updated_ms = excluded.updated_ms`,
		checkpoint.SessionID,
		int64(checkpoint.LastSeq),
		toMillis(checkpoint.UpdatedAt),
	); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Length returns the number of stored events for a session.
func (s *Store) Length(ctx context.Context, sessionID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int64
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return uint64(count), nil
}
