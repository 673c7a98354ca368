package replay

import (
	"context"
	"sync"
)

// MemoryCheckpoints is an in-memory CheckpointStore, safe for concurrent use.
type MemoryCheckpoints struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint
}

// NewMemoryCheckpoints creates an empty in-memory checkpoint store.
func NewMemoryCheckpoints() *MemoryCheckpoints {
	return &MemoryCheckpoints{checkpoints: make(map[string]Checkpoint)}
}

// Get returns the checkpoint for a session.
func (m *MemoryCheckpoints) Get(_ context.Context, sessionID string) (Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	checkpoint, ok := m.checkpoints[sessionID]
	if !ok {
		return Checkpoint{}, ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save stores a checkpoint, replacing any previous one for the session.
func (m *MemoryCheckpoints) Save(_ context.Context, checkpoint Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkpoints == nil {
		m.checkpoints = make(map[string]Checkpoint)
	}
	m.checkpoints[checkpoint.SessionID] = checkpoint
	return nil
}
