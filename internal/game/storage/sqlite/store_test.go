package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/replay"
	"github.com/mverett/driftmark/internal/game/domain/run"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	registry := event.NewRegistry()
	if err := run.RegisterEvents(registry); err != nil {
		t.Fatalf("RegisterEvents() error = %v", err)
	}
	store, err := Open(filepath.Join(t.TempDir(), "driftmark.db"), registry)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func startedEvent(sessionID string) event.Event {
	return event.Event{
		SessionID:   sessionID,
		Type:        run.EventTypeStarted,
		Timestamp:   time.Date(2026, 3, 14, 13, 0, 0, 123_000_000, time.UTC),
		ActorType:   event.ActorTypePlayer,
		PayloadJSON: []byte(`{"total_quests":3}`),
	}
}

func TestAppendAllocatesSequencePerSession(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, startedEvent("session-1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first.Seq != 1 {
		t.Fatalf("seq = %d, want 1", first.Seq)
	}

	second, err := store.Append(ctx, startedEvent("session-1"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if second.Seq != 2 {
		t.Fatalf("seq = %d, want 2", second.Seq)
	}

	other, err := store.Append(ctx, startedEvent("session-2"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if other.Seq != 1 {
		t.Fatalf("other session seq = %d, want 1", other.Seq)
	}
}

func TestListEventsRoundTripsStoredFields(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	original := startedEvent("session-1")
	original.RequestID = "req-1"
	original.EntityType = "run"
	original.EntityID = "session-1"
	if _, err := store.Append(ctx, original); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	events, err := store.ListEvents(ctx, "session-1", 0, 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	got := events[0]
	if got.Seq != 1 || got.Type != run.EventTypeStarted {
		t.Fatalf("event = %+v, want seq 1 run.started", got)
	}
	if !got.Timestamp.Equal(original.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, original.Timestamp)
	}
	if got.ActorType != event.ActorTypePlayer || got.RequestID != "req-1" {
		t.Fatalf("event = %+v, want actor and request preserved", got)
	}
	if string(got.PayloadJSON) != `{"total_quests":3}` {
		t.Fatalf("payload = %s, want canonical original", got.PayloadJSON)
	}
}

func TestListEventsPagination(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := store.Append(ctx, startedEvent("session-1")); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	page, err := store.ListEvents(ctx, "session-1", 2, 2)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("page seqs = %v, want [3 4]", page)
	}

	length, err := store.Length(ctx, "session-1")
	if err != nil {
		t.Fatalf("Length() error = %v", err)
	}
	if length != 5 {
		t.Fatalf("length = %d, want 5", length)
	}
}

func TestAppendRejectsUnregisteredType(t *testing.T) {
	store := openStore(t)
	evt := startedEvent("session-1")
	evt.Type = "shop.opened"
	if _, err := store.Append(context.Background(), evt); err == nil {
		t.Fatal("expected unregistered type error")
	}
	length, err := store.Length(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Length() error = %v", err)
	}
	if length != 0 {
		t.Fatalf("length = %d, want 0 after rejected append", length)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "session-1"); !errors.Is(err, replay.ErrCheckpointNotFound) {
		t.Fatalf("Get() error = %v, want ErrCheckpointNotFound", err)
	}

	saved := replay.Checkpoint{
		SessionID: "session-1",
		LastSeq:   7,
		UpdatedAt: time.Date(2026, 3, 14, 13, 0, 0, 123_000_000, time.UTC),
	}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := store.Get(ctx, "session-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded.LastSeq != 7 {
		t.Fatalf("last seq = %d, want 7", loaded.LastSeq)
	}
	if !loaded.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Fatalf("updated at = %v, want %v", loaded.UpdatedAt, saved.UpdatedAt)
	}

	// Saving again overwrites, never duplicates.
	saved.LastSeq = 12
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err = store.Get(ctx, "session-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if loaded.LastSeq != 12 {
		t.Fatalf("last seq = %d, want 12 after upsert", loaded.LastSeq)
	}
}

func TestCheckpointResumesReplay(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, startedEvent("session-1")); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := store.Save(ctx, replay.Checkpoint{SessionID: "session-1", LastSeq: 2, UpdatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var folder aggregate.Folder
	result, err := replay.Replay(ctx, store, store, &folder, "session-1", aggregate.State{}, replay.Options{})
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Applied != 1 {
		t.Fatalf("applied = %d, want 1 event after the checkpoint", result.Applied)
	}
	if result.LastSeq != 3 {
		t.Fatalf("last seq = %d, want 3", result.LastSeq)
	}
}

func TestCloseNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v, want nil", err)
	}
}
