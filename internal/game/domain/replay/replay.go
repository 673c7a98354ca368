// Package replay reconstructs aggregate state from the event log.
//
// Replay is gap-checked: sequence numbers must be contiguous from the resume
// point, so a corrupted or partially listed log fails loudly instead of
// folding into a silently wrong state.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverett/driftmark/internal/game/domain/aggregate"
	"github.com/mverett/driftmark/internal/game/domain/event"
	"github.com/mverett/driftmark/internal/game/domain/journal"
)

const defaultPageSize = 200

var (
	// ErrEventLogRequired indicates a missing event log.
	ErrEventLogRequired = errors.New("event log is required")
	// ErrFolderRequired indicates a missing folder.
	ErrFolderRequired = errors.New("folder is required")
	// ErrSessionIDRequired indicates a missing session id.
	ErrSessionIDRequired = errors.New("session id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// CheckpointStore manages replay checkpoints.
type CheckpointStore interface {
	Get(ctx context.Context, sessionID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// Checkpoint captures the last applied sequence for a session.
type Checkpoint struct {
	SessionID string
	LastSeq   uint64
	UpdatedAt time.Time
}

// Options configures replay behavior.
type Options struct {
	// AfterSeq resumes replay after this sequence number.
	AfterSeq uint64
	// UntilSeq stops replay after this sequence number (0 means to the end).
	UntilSeq uint64
	PageSize int
}

// Result captures replay outcomes.
type Result struct {
	State   aggregate.State
	LastSeq uint64
	Applied int
}

// Replay folds a session's events in order into aggregate state. A nil
// checkpoint store replays from Options.AfterSeq without persistence.
func Replay(ctx context.Context, log journal.EventLog, checkpoints CheckpointStore, folder *aggregate.Folder, sessionID string, state aggregate.State, options Options) (Result, error) {
	if log == nil {
		return Result{}, ErrEventLogRequired
	}
	if folder == nil {
		return Result{}, ErrFolderRequired
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Result{}, ErrSessionIDRequired
	}

	lastSeq := options.AfterSeq
	if checkpoints != nil {
		checkpoint, err := checkpoints.Get(ctx, sessionID)
		if err != nil {
			if !errors.Is(err, ErrCheckpointNotFound) {
				return Result{}, err
			}
		} else if checkpoint.LastSeq > lastSeq {
			lastSeq = checkpoint.LastSeq
		}
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: state, LastSeq: lastSeq}
	for {
		events, err := log.ListEvents(ctx, sessionID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq)
			}
			nextState, err := folder.Fold(result.State, evt)
			if err != nil {
				return result, err
			}
			result.State = nextState
			result.LastSeq = evt.Seq
			result.Applied++
			if checkpoints != nil {
				checkpoint := Checkpoint{SessionID: sessionID, LastSeq: result.LastSeq, UpdatedAt: time.Now().UTC()}
				if err := checkpoints.Save(ctx, checkpoint); err != nil {
					return result, err
				}
			}
		}
	}
}

// ReplayAll folds a session's full log from the beginning.
func ReplayAll(ctx context.Context, log journal.EventLog, folder *aggregate.Folder, sessionID string) (Result, error) {
	return Replay(ctx, log, nil, folder, sessionID, aggregate.State{}, Options{})
}

// FoldEvents folds an already listed, ordered batch without paging. Incoming
// events must be sequence-contiguous starting at afterSeq+1.
func FoldEvents(folder *aggregate.Folder, state aggregate.State, afterSeq uint64, events []event.Event) (aggregate.State, error) {
	if folder == nil {
		return state, ErrFolderRequired
	}
	lastSeq := afterSeq
	for _, evt := range events {
		if evt.Seq != lastSeq+1 {
			return state, fmt.Errorf("event sequence gap: expected %d got %d", lastSeq+1, evt.Seq)
		}
		next, err := folder.Fold(state, evt)
		if err != nil {
			return state, err
		}
		state = next
		lastSeq = evt.Seq
	}
	return state, nil
}
