package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

func TestRecentReturnsOldestFirst(t *testing.T) {
	recorder := NewRecorder(nil, 4)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		recorder.RecordRejection(ctx, "session-1", "quest.accept", fmt.Sprintf("CODE_%d", i), "")
	}
	recent := recorder.Recent()
	if len(recent) != 3 {
		t.Fatalf("recent = %d entries, want 3", len(recent))
	}
	for i, entry := range recent {
		want := fmt.Sprintf("CODE_%d", i)
		if entry.Code != want {
			t.Fatalf("entry %d code = %s, want %s", i, entry.Code, want)
		}
	}
}

func TestRingDropsOldestWhenFull(t *testing.T) {
	recorder := NewRecorder(nil, 2)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		recorder.RecordRejection(ctx, "session-1", "quest.accept", fmt.Sprintf("CODE_%d", i), "")
	}
	recent := recorder.Recent()
	if len(recent) != 2 {
		t.Fatalf("recent = %d entries, want 2", len(recent))
	}
	if recent[0].Code != "CODE_1" || recent[1].Code != "CODE_2" {
		t.Fatalf("codes = [%s %s], want [CODE_1 CODE_2]", recent[0].Code, recent[1].Code)
	}
}

func TestRecordRejectionTagsTaxonomyKind(t *testing.T) {
	recorder := NewRecorder(nil, 4)
	ctx := context.Background()
	recorder.RecordRejection(ctx, "session-1", "quest.accept", "QUEST_NOT_FOUND", "unknown quest")
	recorder.RecordRejection(ctx, "session-1", "battle.resolve", "COMMAND_PHASE_NOT_ALLOWED", "wrong phase")
	recent := recorder.Recent()
	if len(recent) != 2 {
		t.Fatalf("recent = %d entries, want 2", len(recent))
	}
	if recent[0].Kind != apperrors.KindNotFound {
		t.Fatalf("kind = %s, want %s", recent[0].Kind, apperrors.KindNotFound)
	}
	if recent[1].Kind != apperrors.KindBoundary {
		t.Fatalf("kind = %s, want %s", recent[1].Kind, apperrors.KindBoundary)
	}
}

func TestRecordErrorUsesErrorCode(t *testing.T) {
	recorder := NewRecorder(nil, 4)
	recorder.RecordError(context.Background(), "session-1", "run.start", errors.New("journal unavailable"))
	recent := recorder.Recent()
	if len(recent) != 1 {
		t.Fatalf("recent = %d entries, want 1", len(recent))
	}
	if recent[0].Code != "error" || recent[0].Message != "journal unavailable" {
		t.Fatalf("entry = %+v, want error code with message", recent[0])
	}
	if recent[0].Kind != apperrors.KindInternal {
		t.Fatalf("kind = %s, want %s", recent[0].Kind, apperrors.KindInternal)
	}
}

func TestResetClearsHistory(t *testing.T) {
	recorder := NewRecorder(nil, 4)
	recorder.RecordRejection(context.Background(), "session-1", "quest.accept", "QUEST_NOT_FOUND", "")
	recorder.Reset()
	if got := recorder.Recent(); len(got) != 0 {
		t.Fatalf("recent = %v, want empty after reset", got)
	}
}
