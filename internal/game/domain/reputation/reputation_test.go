package reputation

import (
	"testing"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/event"
)

func TestBandForThresholds(t *testing.T) {
	tests := []struct {
		value int
		want  Band
	}{
		{-40, BandHostile},
		{-25, BandHostile},
		{-24, BandUnfriendly},
		{-10, BandUnfriendly},
		{-9, BandNeutral},
		{0, BandNeutral},
		{9, BandNeutral},
		{10, BandFriendly},
		{24, BandFriendly},
		{25, BandAllied},
		{60, BandAllied},
	}
	for _, tt := range tests {
		if got := BandFor(tt.value); got != tt.want {
			t.Fatalf("BandFor(%d) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestFoldTracksNewValueAndEncounterOrder(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	state := State{}
	var err error

	state, err = Fold(state, ChangedEvent("session-1", "ironveil", -5, -5, "", stamp))
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	state, err = Fold(state, ChangedEvent("session-1", "ashfall", 10, 10, "", stamp))
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	// Replays carry the new total, so the fold overwrites rather than sums.
	state, err = Fold(state, ChangedEvent("session-1", "ironveil", -10, -15, "", stamp))
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}

	if state.Value("ironveil") != -15 {
		t.Fatalf("ironveil = %d, want -15", state.Value("ironveil"))
	}
	if state.Value("ashfall") != 10 {
		t.Fatalf("ashfall = %d, want 10", state.Value("ashfall"))
	}
	if state.Value("meridian") != 0 {
		t.Fatalf("meridian = %d, want 0 for unseen faction", state.Value("meridian"))
	}
	if len(state.Order) != 2 || state.Order[0] != "ironveil" || state.Order[1] != "ashfall" {
		t.Fatalf("order = %v, want [ironveil ashfall]", state.Order)
	}
}

func TestFoldIgnoresOtherEventTypes(t *testing.T) {
	state, err := Fold(State{}, event.Event{Type: "run.started", PayloadJSON: []byte(`{}`)})
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if len(state.Values) != 0 {
		t.Fatalf("values = %v, want empty", state.Values)
	}
}

func TestValidateChangedPayloadRequiresFaction(t *testing.T) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		t.Fatalf("RegisterEvents() error = %v", err)
	}
	_, err := registry.ValidateForAppend(event.Event{
		SessionID:   "session-1",
		Type:        EventTypeChanged,
		Timestamp:   time.Now(),
		PayloadJSON: []byte(`{"delta":5,"new_value":5}`),
	})
	if err == nil {
		t.Fatal("expected faction id validation error")
	}
}
