package domain

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned for operations on an unknown session id.
var ErrSessionNotFound = errors.New("chat session not found")

// ChatSession is one multi-turn conversation plus its latest search results.
// A session is owned by the store for its lifetime and mutated in place on
// every turn: messages appended, products replaced wholesale, LastUpdated
// refreshed. It is destroyed only by explicit deletion.
type ChatSession struct {
	SessionID   string        `json:"session_id"`
	UserID      string        `json:"user_id,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	CreatedAt   time.Time     `json:"created_at"`
	LastUpdated time.Time     `json:"last_updated"`
	// SearchQuery is the query text the latest product list was searched with,
	// reformulated on every turn after the first.
	SearchQuery string    `json:"search_query,omitempty"`
	Products    []Product `json:"products"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Create(session *ChatSession) error
	Get(sessionID string) (*ChatSession, error)
	Delete(sessionID string) error
	List(userID string) []*ChatSession
	Count() int
}
