package memory

import (
	"sync"

	"github.com/shopassist/search-chat/internal/domain"
)

// SessionStore is a process-wide in-memory session map. There is no
// persistence and no eviction; sessions live until explicitly deleted.
//
// The map itself is guarded by an RWMutex, but per-session write
// serialization is the dispatcher's job: two concurrent turns against the
// same session id are last-writer-wins.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ChatSession
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.ChatSession),
	}
}

// Create registers a new session under its SessionID.
func (s *SessionStore) Create(session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
	return nil
}

// Get returns the session for the given id, or ErrSessionNotFound.
func (s *SessionStore) Get(sessionID string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session for the given id, or returns ErrSessionNotFound.
func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// List returns all sessions, or only those owned by userID when it is set.
func (s *SessionStore) List(userID string) []*domain.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if userID != "" && session.UserID != userID {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
