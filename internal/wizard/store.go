package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle session survives before the sweep
// discards it. Closing the wizard discards immediately; the TTL only covers
// abandoned dialogs.
const DefaultSessionTTL = 2 * time.Hour

// Store keeps live wizard sessions in memory. Sessions are ephemeral:
// nothing is persisted until submit, and a dropped session loses all
// partial progress.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
}

// NewStore creates a session store with the default TTL.
func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      DefaultSessionTTL,
	}
}

// Put registers a session.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get returns a live session or nil.
func (st *Store) Get(id uuid.UUID) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Remove discards a session and all its ephemeral state.
func (st *Store) Remove(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Sweep drops sessions idle past the TTL and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	cutoff := time.Now().Add(-st.ttl)
	removed := 0
	for id, s := range st.sessions {
		if s.TouchedAt().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper periodically sweeps until stop is closed. Meant to run in its
// own goroutine from main.
func (st *Store) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			st.Sweep()
		case <-stop:
			return
		}
	}
}
