package service

import (
	"sync"
	"time"

	"github.com/brocantio/checkout/internal/domain/checkout"
	"github.com/brocantio/checkout/internal/domain/errors"
	"github.com/google/uuid"
)

// SessionRegistry holds the open checkout sessions, keyed by session id.
// Sessions are in-memory only: they are ephemeral, single-owner, and the card
// details they carry must never be persisted.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*checkout.Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*checkout.Session),
	}
}

// Add registers a session.
func (r *SessionRegistry) Add(s *checkout.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the session or ErrSessionNotFound.
func (r *SessionRegistry) Get(id uuid.UUID) (*checkout.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session from the registry.
func (r *SessionRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expire cancels and removes every session idle longer than ttl, returning
// how many were dropped. Terminal sessions still lingering are dropped too.
func (r *SessionRegistry) Expire(ttl time.Duration, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, s := range r.sessions {
		if s.State().IsTerminal() || s.Expired(ttl, now) {
			s.Cancel() // no-op on terminal sessions
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}
