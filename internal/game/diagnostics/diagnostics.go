// Package diagnostics collects recent command failures for operator
// inspection without re-reading the journal.
package diagnostics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/mverett/driftmark/internal/platform/errors"
)

// DefaultCapacity bounds the retained history per recorder.
const DefaultCapacity = 64

// Entry is one recorded failure.
type Entry struct {
	Time      time.Time
	SessionID string
	Command   string
	// Code is the rejection code, or "error" for infrastructure failures.
	Code string
	// Kind is the taxonomy bucket the code maps to.
	Kind    apperrors.Kind
	Message string
}

// Recorder keeps a bounded ring of recent failures and mirrors them to a
// structured logger. History is per process, reset with the run lifecycle;
// the journal remains the source of truth.
type Recorder struct {
	logger   *slog.Logger
	capacity int

	mu      sync.Mutex
	entries []Entry
	next    int
	filled  bool
}

// NewRecorder creates a recorder with the given logger and capacity.
// Capacity <= 0 uses DefaultCapacity; a nil logger disables mirroring.
func NewRecorder(logger *slog.Logger, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{logger: logger, capacity: capacity, entries: make([]Entry, capacity)}
}

// RecordRejection records a domain rejection.
func (r *Recorder) RecordRejection(ctx context.Context, sessionID, commandType, code, message string) {
	kind := apperrors.Code(code).ErrKind()
	r.record(Entry{
		Time:      time.Now().UTC(),
		SessionID: sessionID,
		Command:   commandType,
		Code:      code,
		Kind:      kind,
		Message:   message,
	})
	if r.logger != nil {
		r.logger.InfoContext(ctx, "command rejected",
			"session_id", sessionID,
			"command", commandType,
			"code", code,
			"kind", string(kind),
		)
	}
}

// RecordError records an infrastructure failure.
func (r *Recorder) RecordError(ctx context.Context, sessionID, commandType string, err error) {
	r.record(Entry{
		Time:      time.Now().UTC(),
		SessionID: sessionID,
		Command:   commandType,
		Code:      "error",
		Kind:      apperrors.KindInternal,
		Message:   err.Error(),
	})
	if r.logger != nil {
		r.logger.ErrorContext(ctx, "command failed",
			"session_id", sessionID,
			"command", commandType,
			"error", err,
		)
	}
}

// Recent returns retained entries oldest first.
func (r *Recorder) Recent() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filled {
		out := make([]Entry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]Entry, 0, r.capacity)
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// Reset clears history, typically at run start.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make([]Entry, r.capacity)
	r.next = 0
	r.filled = false
}

func (r *Recorder) record(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = entry
	r.next++
	if r.next == r.capacity {
		r.next = 0
		r.filled = true
	}
}
