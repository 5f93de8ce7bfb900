package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopassist/search-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(userID string) *domain.ChatSession {
	now := time.Now()
	return &domain.ChatSession{
		SessionID:   uuid.New().String(),
		UserID:      userID,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore()
	session := newSession("alice")

	require.NoError(t, store.Create(session))

	got, err := store.Get(session.SessionID)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, 1, store.Count())
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore()
	session := newSession("")
	require.NoError(t, store.Create(session))

	require.NoError(t, store.Delete(session.SessionID))
	assert.Equal(t, 0, store.Count())

	_, err := store.Get(session.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_DeleteUnknownLeavesStoreUnchanged(t *testing.T) {
	store := NewSessionStore()
	require.NoError(t, store.Create(newSession("")))

	err := store.Delete("missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 1, store.Count())
}

func TestSessionStore_ListByUser(t *testing.T) {
	store := NewSessionStore()
	require.NoError(t, store.Create(newSession("alice")))
	require.NoError(t, store.Create(newSession("alice")))
	require.NoError(t, store.Create(newSession("bob")))

	assert.Len(t, store.List(""), 3)
	assert.Len(t, store.List("alice"), 2)
	assert.Len(t, store.List("carol"), 0)
}
