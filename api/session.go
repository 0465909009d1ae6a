package api

import (
	"sync"

	"github.com/google/uuid"

	"spinemark/pkg/annotation"
)

// Session holds the per-client working state: the selected image folder and
// its annotation store. Sessions replace the process-wide "current folder"
// state of earlier revisions; every request that needs a folder carries a
// session token explicitly.
type Session struct {
	FolderPath string
	Labels     *annotation.Store
}

// SessionStore is a token-keyed set of sessions, safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session and returns its token.
func (s *SessionStore) Create(folderPath string, labels *annotation.Store) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = &Session{FolderPath: folderPath, Labels: labels}
	s.mu.Unlock()
	return token
}

// Get looks up a session by token.
func (s *SessionStore) Get(token string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}
