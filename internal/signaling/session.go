package signaling

import (
	"sync"

	"github.com/google/uuid"
)

// Session is the server side state of one control-channel connection.
// Role and room are kept here rather than on the transport object.
type Session struct {
	ID   string
	conn Conn

	mu   sync.Mutex
	role Role
	room RoomCode
}

func newSession(conn Conn) *Session {
	return &Session{ID: uuid.NewString(), conn: conn}
}

// Role returns the current role of the session.
func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// RoomCode returns the room the session belongs to, or "" if unassigned.
func (s *Session) RoomCode() RoomCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// assign sets role and room once. A second call fails with ErrRoleAlreadySet.
func (s *Session) assign(role Role, code RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.role != RoleUnassigned {
		return ErrRoleAlreadySet
	}
	s.role = role
	s.room = code
	return nil
}

// SessionTable maps session IDs to live sessions.
type SessionTable struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionTable returns an empty table.
func NewSessionTable() *SessionTable {
	return &SessionTable{sessions: make(map[string]*Session)}
}

// Add stores s under its ID.
func (t *SessionTable) Add(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
}

// get returns the session with the given ID.
func (t *SessionTable) get(id string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Remove deletes the session and reports whether it was present.
func (t *SessionTable) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[id]; !ok {
		return false
	}
	delete(t.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (t *SessionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
