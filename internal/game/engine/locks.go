package engine

import "sync"

// sessionLocks serializes command execution per session. Locks are never
// released back; session counts are small and bounded by play, so the map
// only grows by one mutex per session seen.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the session's mutex and returns its unlock function.
func (s *sessionLocks) lock(sessionID string) func() {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
