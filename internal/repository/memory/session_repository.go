package memory

import (
	"sync"
	"time"

	"doc-chat-be/pkg/store"
)

// SessionRepository is the process-wide session store: session id → live
// session state. The store-level lock guards only map access; all state inside
// a session is guarded by that session's own mutex, so operations on different
// sessions never block each other.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*store.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*store.Session),
	}
}

// GetOrCreate returns the live session for the id, creating an index-less one
// with fresh activity if absent. Idempotent for repeated calls before any
// mutation.
func (r *SessionRepository) GetOrCreate(sessionID string) *store.Session {
	r.mu.RLock()
	if s, ok := r.sessions[sessionID]; ok {
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	// Lost the race to another creator? Use theirs.
	if s, ok := r.sessions[sessionID]; ok {
		return s
	}
	s := &store.Session{
		ID:           sessionID,
		LastActivity: time.Now(),
	}
	r.sessions[sessionID] = s
	return s
}

// Get returns the session without creating one.
func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Touch bumps the session's activity clock, creating the session if needed.
func (r *SessionRepository) Touch(sessionID string) *store.Session {
	s := r.GetOrCreate(sessionID)
	s.Mu.Lock()
	s.Touch(time.Now())
	s.Mu.Unlock()
	return s
}

// ReplaceIndex installs a new knowledge base for the session, discarding any
// prior index. Conversation memory is kept: re-uploading documents resets what
// the session knows, not what was said. Concurrent uploads race by
// last-write-wins.
func (r *SessionRepository) ReplaceIndex(sessionID string, index store.Retriever) *store.Session {
	s := r.GetOrCreate(sessionID)
	s.Mu.Lock()
	s.Index = index
	s.Touch(time.Now())
	s.Mu.Unlock()
	return s
}

// SnapshotIdleCandidates lists ids whose last activity is older than
// now−threshold. Read-only; removal decisions are re-checked under the
// session lock by RemoveIfIdle.
func (r *SessionRepository) SnapshotIdleCandidates(threshold time.Duration, now time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []string
	for id, s := range r.sessions {
		s.Mu.Lock()
		idle := now.Sub(s.LastActivity)
		s.Mu.Unlock()
		if idle > threshold {
			candidates = append(candidates, id)
		}
	}
	return candidates
}

// RemoveIfIdle removes the session only if it is still idle under its own
// lock, guarding against a request that touched it after the snapshot. A
// session whose lock cannot be acquired immediately is skipped; the next sweep
// will see it again. Returns how long the session had been idle and whether it
// was removed.
func (r *SessionRepository) RemoveIfIdle(sessionID string, threshold time.Duration, now time.Time) (time.Duration, bool) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return 0, false
	}

	if !s.Mu.TryLock() {
		return 0, false // busy mid-request, never stall the sweep on it
	}
	defer s.Mu.Unlock()

	idle := now.Sub(s.LastActivity)
	if idle <= threshold {
		return 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Only delete the exact entry we checked; a fresh session may have been
	// created under the same id in the meantime.
	if current, ok := r.sessions[sessionID]; ok && current == s {
		delete(r.sessions, sessionID)
		return idle, true
	}
	return 0, false
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
