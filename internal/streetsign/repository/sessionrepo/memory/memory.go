// Package memory holds an in-memory session store used by tests.
package memory

import (
	"context"
	"sync"

	"github.com/reemaRaven/streetsign/internal/streetsign/repository/sessionrepo"
)

type SessionsMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]int
}

func New() *SessionsMemoryStore {
	return &SessionsMemoryStore{
		sessions: make(map[string]int),
	}
}

func (ss *SessionsMemoryStore) CreateSession(_ context.Context, sessionID string, userID int) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.sessions[sessionID] = userID

	return nil
}

func (ss *SessionsMemoryStore) GetSession(_ context.Context, sessionID string) (int, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	userID, ok := ss.sessions[sessionID]
	if !ok {
		return 0, sessionrepo.ErrNotFound
	}

	return userID, nil
}

func (ss *SessionsMemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, ok := ss.sessions[sessionID]; !ok {
		return sessionrepo.ErrNotFound
	}

	delete(ss.sessions, sessionID)

	return nil
}
