package signaling

import (
	"fmt"
	"sync"
)

// MaxCodeAttempts bounds how many codes Create draws before giving up.
const MaxCodeAttempts = 100

// Registry owns the mapping from room code to Room. It is the single source
// of truth for which rooms exist; all methods are safe for concurrent use.
type Registry struct {
	gen         *CodeGenerator
	maxSegments int

	mu    sync.RWMutex
	rooms map[RoomCode]*Room
}

// NewRegistry returns an empty registry that names rooms with gen and bounds
// each room's segment buffer at maxSegments (DefaultMaxSegments if <= 0).
func NewRegistry(gen *CodeGenerator, maxSegments int) *Registry {
	if gen == nil {
		gen = NewCodeGenerator(DefaultCodeLength, nil)
	}
	if maxSegments <= 0 {
		maxSegments = DefaultMaxSegments
	}
	return &Registry{
		gen:         gen,
		maxSegments: maxSegments,
		rooms:       make(map[RoomCode]*Room),
	}
}

// CodeLength returns the length of the codes this registry hands out.
func (r *Registry) CodeLength() int {
	return r.gen.Length()
}

// Create reserves an unused code and inserts a new room with host already
// admitted. It returns ErrCodeSpaceExhausted if MaxCodeAttempts draws all
// collided, and ErrRoleAlreadySet if host already has a role.
func (r *Registry) Create(host *Session) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.freshCodeLocked()
	if err != nil {
		return nil, err
	}

	room := newRoom(code, r.maxSegments)
	room.mu.Lock()
	err = room.admitLocked(host, RoleHost)
	room.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r.rooms[code] = room
	return room, nil
}

// Lookup returns the room registered under code.
func (r *Registry) Lookup(code RoomCode) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Delete removes the room registered under code. Deleting an unknown code is
// a no-op.
func (r *Registry) Delete(code RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
}

// Count returns the number of registered rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// freshCodeLocked draws codes until one is unused.
// Caller must hold r.mu in write mode.
func (r *Registry) freshCodeLocked() (RoomCode, error) {
	for i := 0; i < MaxCodeAttempts; i++ {
		code, err := r.gen.Generate()
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%d attempts: %w", MaxCodeAttempts, ErrCodeSpaceExhausted)
}

