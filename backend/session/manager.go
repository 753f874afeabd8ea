// Package session tracks per-user interactive state between login and
// logout. Nothing here is persisted; a session dies with logout or process
// end.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ailearn/backend/chains"
	"ailearn/backend/models"
)

// Session is the ephemeral state of one authenticated user: the record
// snapshot captured at login, the provider key held for this session only,
// the current topic and the conversation transcript.
type Session struct {
	ID           string
	Username     string
	User         models.User
	APIKey       string
	Topic        string
	Memory       *chains.Memory
	CreatedAt    time.Time
	LastActivity time.Time
}

// Manager guards the set of live sessions, keyed by session ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create opens a session for the user with the given default topic and
// transcript budget, and returns it.
func (m *Manager) Create(user models.User, topic string, maxTurns int) *Session {
	now := time.Now().UTC()
	sess := &Session{
		ID:           uuid.NewString(),
		Username:     user.Username,
		User:         user,
		Topic:        topic,
		Memory:       chains.NewMemory(maxTurns),
		CreatedAt:    now,
		LastActivity: now,
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess
}

// Get returns the live session for id and bumps its activity timestamp.
// The bump happens under the write lock; concurrent lookups of the same
// token must not race on the field.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if ok {
		sess.LastActivity = time.Now().UTC()
	}
	return sess, ok
}

// Delete ends the session, discarding the snapshot, the ephemeral API key
// and the transcript.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
